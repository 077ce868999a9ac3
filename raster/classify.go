package raster

import (
	"math"

	"go.uber.org/zap"

	"github.com/wgdzlh/wastemap/log"
)

// 已训练好的分类器
type Classifier interface {
	// 类别编码（classId*100），与PredictProba输出的列一一对应
	Classes() []int
	// 每行一个像元的各波段值，返回每行各类别的概率
	PredictProba(rows [][]float64) ([][]float64, error)
}

type ClassifyOptions struct {
	GarbageID          int
	Thresholds         Thresholds
	MaxClassCount      int // 分类器单次调用时每行的类别数上限
	MaxClassValueCount int // 分类器单次调用输出值总数上限
}

// 分块参数：块数=ceil(N*maxClassCount/maxClassValueCount)，块大小=ceil(N/块数)
func ChunkLayout(n, maxClassCount, maxClassValueCount int) (count, size int, err error) {
	if maxClassCount <= 0 || maxClassValueCount <= 0 {
		err = ErrInvalidTilingLimits
		return
	}
	if n == 0 {
		return
	}
	count = int(math.Ceil(float64(n) * float64(maxClassCount) / float64(maxClassValueCount)))
	size = int(math.Ceil(float64(n) / float64(count)))
	return
}

const classifyLogTag = "Classify:"

// 分块调用分类器，生成分类图与垃圾类热力图；含NaN的像元不参与分类
func Classify(r *Raster, clf Classifier, opts ClassifyOptions) (class, heat *IntGrid, err error) {
	if clf == nil {
		err = ErrClassifierUnavailable
		return
	}
	if r == nil || r.BandCount() == 0 {
		err = ErrEmptyRaster
		return
	}
	rows, cols, nBands := r.Rows(), r.Cols(), r.BandCount()
	n := rows * cols
	count, size, err := ChunkLayout(n, opts.MaxClassCount, opts.MaxClassValueCount)
	if err != nil {
		return
	}
	classes := clf.Classes()
	if len(classes) == 0 {
		err = ErrClassifierOutput
		return
	}
	garbage := opts.GarbageID * 100
	ts := opts.Thresholds.List()
	log.Debug(classifyLogTag+"start", zap.Int("rows", rows), zap.Int("cols", cols),
		zap.Int("chunks", count), zap.Int("chunkSize", size))

	class = NewIntGrid(rows, cols)
	heat = NewIntGrid(rows, cols)
	for c := 0; c < count; c++ {
		start := c * size
		end := start + size
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		var (
			batch   [][]float64
			indices []int
		)
		for i := start; i < end; i++ {
			row := make([]float64, nBands)
			valid := true
			for b, band := range r.Bands {
				v := band.Data[i]
				if math.IsNaN(v) {
					valid = false
					break
				}
				row[b] = v
			}
			if valid {
				batch = append(batch, row)
				indices = append(indices, i)
			}
		}
		if len(batch) == 0 {
			continue
		}
		var probs [][]float64
		if probs, err = clf.PredictProba(batch); err != nil {
			log.Error(classifyLogTag+"predict failed", zap.Int("chunk", c), zap.Error(err))
			class, heat = nil, nil
			return
		}
		if len(probs) != len(batch) {
			err = ErrClassifierOutput
			class, heat = nil, nil
			return
		}
		for k, p := range probs {
			if len(p) != len(classes) {
				err = ErrClassifierOutput
				class, heat = nil, nil
				return
			}
			maxInd := argmax(p)
			i := indices[k]
			class.Data[i] = int32(classes[maxInd])
			if classes[maxInd] == garbage {
				heat.Data[i] = bucket(p[maxInd], ts)
			}
		}
	}
	log.Debug(classifyLogTag+"done", zap.Int("pixels", n))
	return
}

// 第一个最大值的下标
func argmax(p []float64) (ind int) {
	for i := 1; i < len(p); i++ {
		if p[i] > p[ind] {
			ind = i
		}
	}
	return
}
