// Package morph 对分类结果做形态学掩膜：开运算去噪，再膨胀填补
package morph

import (
	"errors"
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"
)

const logTag = "Morph:"

var (
	ErrMorphologyFailed = errors.New("morphology transform failed")
	ErrInvalidKernel    = errors.New("kernel size must be positive")
)

// 膨胀使用的固定3x3结构元
var dilateKernelSize = image.Point{3, 3}

type Options struct {
	GarbageID  int
	WaterID    int
	KernelSize int // 开运算方形结构元边长
	Iterations int // 膨胀次数
}

// 分类值为垃圾或水体的像元记为1，其余为0
func BinaryMask(class *raster.IntGrid, garbageID, waterID int) []byte {
	g, w := int32(garbageID*100), int32(waterID*100)
	buf := make([]byte, len(class.Data))
	for i, v := range class.Data {
		if v == g || v == w {
			buf[i] = 1
		}
	}
	return buf
}

// 开运算+膨胀后的掩膜
func Refine(mask []byte, rows, cols, kernelSize, iterations int) (ret []byte, err error) {
	if kernelSize < 1 {
		err = ErrInvalidKernel
		return
	}
	src, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, mask)
	if err != nil {
		log.Error(logTag+"create mat failed", zap.Error(err))
		err = ErrMorphologyFailed
		return
	}
	defer src.Close()

	openKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{kernelSize, kernelSize})
	defer openKernel.Close()
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(src, &opened, gocv.MorphOpen, openKernel)
	if !valid(opened, rows, cols) {
		log.Error(logTag+"opening produced malformed image", zap.Int("rows", rows), zap.Int("cols", cols))
		err = ErrMorphologyFailed
		return
	}

	dilateKernel := gocv.GetStructuringElement(gocv.MorphRect, dilateKernelSize)
	defer dilateKernel.Close()
	dilated := opened.Clone()
	defer dilated.Close()
	for i := 0; i < iterations; i++ {
		gocv.Dilate(dilated, &dilated, dilateKernel)
	}
	if !valid(dilated, rows, cols) {
		log.Error(logTag+"dilation produced malformed image", zap.Int("iterations", iterations))
		err = ErrMorphologyFailed
		return
	}
	ret = dilated.ToBytes()
	return
}

func valid(m gocv.Mat, rows, cols int) bool {
	return !m.Empty() && m.Rows() == rows && m.Cols() == cols && m.Type() == gocv.MatTypeCV8UC1
}

// 用形态学掩膜过滤分类图与热力图，掩膜外的像元置0；任一步失败则两者都不输出
func Mask(class, heat *raster.IntGrid, opts Options) (maskedClass, maskedHeat *raster.IntGrid, err error) {
	if class == nil || !class.SameShape(heat) {
		err = raster.ErrShapeMismatch
		return
	}
	if class.Rows == 0 || class.Cols == 0 {
		err = raster.ErrEmptyRaster
		return
	}
	mask, err := Refine(BinaryMask(class, opts.GarbageID, opts.WaterID),
		class.Rows, class.Cols, opts.KernelSize, opts.Iterations)
	if err != nil {
		return
	}
	if len(mask) != len(class.Data) {
		err = ErrMorphologyFailed
		return
	}
	maskedClass = raster.NewIntGrid(class.Rows, class.Cols)
	maskedHeat = raster.NewIntGrid(heat.Rows, heat.Cols)
	var kept int
	for i, m := range mask {
		if m == 1 {
			maskedClass.Data[i] = class.Data[i]
			maskedHeat.Data[i] = heat.Data[i]
			kept++
		}
	}
	log.Debug(logTag+"mask applied", zap.Int("kept", kept), zap.Int("total", len(mask)))
	return
}
