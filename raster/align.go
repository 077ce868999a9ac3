package raster

import "math"

// 像元左上角坐标，按float32比较
type coordKey struct {
	X, Y float32
}

// 每个像元左上角的地理坐标，行优先
type CoordinateGrid struct {
	Rows, Cols int
	X, Y       []float64
}

func NewCoordinateGrid(rows, cols int, gt GeoTransform) *CoordinateGrid {
	cg := &CoordinateGrid{
		Rows: rows,
		Cols: cols,
		X:    make([]float64, rows*cols),
		Y:    make([]float64, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cg.X[i*cols+j], cg.Y[i*cols+j] = gt.PixelToGeo(i, j)
		}
	}
	return cg
}

func (cg *CoordinateGrid) key(i int) coordKey {
	return coordKey{float32(cg.X[i]), float32(cg.Y[i])}
}

func (cg *CoordinateGrid) Len() int {
	return cg.Rows * cg.Cols
}

// 两幅影像的重叠窗口
type Alignment struct {
	LargerIsA  bool  // A的像元数不少于B
	StartA     Pixel // 窗口在A中的起点
	StartB     Pixel // 窗口在B中的起点
	Rows, Cols int   // 窗口大小
	StartX     float64
	StartY     float64
}

// 以窗口起点坐标为原点的仿射参数
func (a *Alignment) GeoTransform(base GeoTransform) GeoTransform {
	return base.WithOrigin(a.StartX, a.StartY)
}

func samePixelSize(a, b GeoTransform) bool {
	for _, i := range []int{1, 2, 4, 5} {
		if float32(a[i]) != float32(b[i]) {
			return false
		}
	}
	return true
}

// 计算两幅同分辨率影像的重叠窗口：
// 以像元数较多者为参照，取其行优先第一个同时出现在另一幅中的坐标为起点，
// 两边同步向右下扩展直到任一幅越界
func Align(aRows, aCols int, aGT GeoTransform, bRows, bCols int, bGT GeoTransform) (ret *Alignment, err error) {
	if aRows*aCols == 0 || bRows*bCols == 0 {
		err = ErrEmptyRaster
		return
	}
	if !samePixelSize(aGT, bGT) {
		err = ErrResolutionMismatch
		return
	}
	a := NewCoordinateGrid(aRows, aCols, aGT)
	b := NewCoordinateGrid(bRows, bCols, bGT)
	larger, smaller := a, b
	largerIsA := a.Len() >= b.Len()
	if !largerIsA {
		larger, smaller = b, a
	}

	firstInSmaller := make(map[coordKey]int, smaller.Len())
	for i := 0; i < smaller.Len(); i++ {
		k := smaller.key(i)
		if _, ok := firstInSmaller[k]; !ok {
			firstInSmaller[k] = i
		}
	}
	li, si := -1, -1
	for i := 0; i < larger.Len(); i++ {
		if j, ok := firstInSmaller[larger.key(i)]; ok {
			li, si = i, j
			break
		}
	}
	if li < 0 {
		err = ErrNoOverlap
		return
	}

	lStart := Pixel{li / larger.Cols, li % larger.Cols}
	sStart := Pixel{si / smaller.Cols, si % smaller.Cols}
	ret = &Alignment{
		LargerIsA: largerIsA,
		Rows:      minInt(larger.Rows-lStart.Row, smaller.Rows-sStart.Row),
		Cols:      minInt(larger.Cols-lStart.Col, smaller.Cols-sStart.Col),
		StartX:    larger.X[li],
		StartY:    larger.Y[li],
	}
	if largerIsA {
		ret.StartA, ret.StartB = lStart, sStart
	} else {
		ret.StartA, ret.StartB = sStart, lStart
	}
	return
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// 两幅影像各自计算指数后，在重叠窗口内求 A-B
func Difference(a, b *Raster, index string, mapping BandMapping) (diff *Grid, al *Alignment, err error) {
	if al, err = Align(a.Rows(), a.Cols(), a.Transform, b.Rows(), b.Cols(), b.Transform); err != nil {
		return
	}
	var ia, ib *Grid
	if ia, err = rasterIndex(a, index, mapping); err != nil {
		return
	}
	if ib, err = rasterIndex(b, index, mapping); err != nil {
		return
	}
	diff = DifferenceWindow(ia, ib, al)
	return
}

// 重叠窗口内的 A-B，任一侧为NaN则为NaN
func DifferenceWindow(ia, ib *Grid, al *Alignment) *Grid {
	out := NewGrid(al.Rows, al.Cols)
	for r := 0; r < al.Rows; r++ {
		for c := 0; c < al.Cols; c++ {
			va := ia.At(al.StartA.Row+r, al.StartA.Col+c)
			vb := ib.At(al.StartB.Row+r, al.StartB.Col+c)
			if math.IsNaN(va) || math.IsNaN(vb) {
				out.Set(r, c, NaN)
				continue
			}
			out.Set(r, c, va-vb)
		}
	}
	return out
}

func rasterIndex(r *Raster, index string, mapping BandMapping) (*Grid, error) {
	ret, err := CalculateRasterIndices([]string{index}, r, mapping)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}
