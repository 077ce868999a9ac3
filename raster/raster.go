package raster

import "math"

// 无效值
var NaN = math.NaN()

// GDAL仿射变换参数：(originX, pixelWidth, rowRot, originY, colRot, pixelHeight)
type GeoTransform [6]float64

// 像元(row,col)左上角的地理坐标
func (gt GeoTransform) PixelToGeo(row, col int) (x, y float64) {
	return gt.PixelToGeoF(float64(row), float64(col))
}

func (gt GeoTransform) PixelToGeoF(row, col float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return
}

// 地理坐标反算像元坐标（浮点）
func (gt GeoTransform) GeoToPixel(x, y float64) (row, col float64, err error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		err = ErrDegenerateGeoTransform
		return
	}
	dx, dy := x-gt[0], y-gt[3]
	col = (gt[5]*dx - gt[2]*dy) / det
	row = (gt[1]*dy - gt[4]*dx) / det
	return
}

func (gt GeoTransform) PixelWidth() float64 {
	return gt[1]
}

func (gt GeoTransform) PixelHeight() float64 {
	return gt[5]
}

// 替换原点
func (gt GeoTransform) WithOrigin(x, y float64) GeoTransform {
	gt[0], gt[3] = x, y
	return gt
}

// 浮点栅格，按行优先存储，NaN表示无效
type Grid struct {
	Rows, Cols int
	Data       []float64
}

func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func NewGridFrom(rows, cols int, data []float64) (*Grid, error) {
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}
	return &Grid{Rows: rows, Cols: cols, Data: data}, nil
}

func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

func (g *Grid) Len() int {
	return len(g.Data)
}

func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}

func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// 整数栅格：分类结果（classId*100，0为背景）或热力图（0..3）
type IntGrid struct {
	Rows, Cols int
	Data       []int32
}

func NewIntGrid(rows, cols int) *IntGrid {
	return &IntGrid{Rows: rows, Cols: cols, Data: make([]int32, rows*cols)}
}

func NewIntGridFrom(rows, cols int, data []int32) (*IntGrid, error) {
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}
	return &IntGrid{Rows: rows, Cols: cols, Data: data}, nil
}

func (g *IntGrid) At(row, col int) int32 {
	return g.Data[row*g.Cols+col]
}

func (g *IntGrid) Set(row, col int, v int32) {
	g.Data[row*g.Cols+col] = v
}

func (g *IntGrid) SameShape(o *IntGrid) bool {
	return o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}

func (g *IntGrid) Clone() *IntGrid {
	c := &IntGrid{Rows: g.Rows, Cols: g.Cols, Data: make([]int32, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

// 统计各值出现次数
func (g *IntGrid) Counts() map[int32]int {
	counts := map[int32]int{}
	for _, v := range g.Data {
		counts[v]++
	}
	return counts
}

func (g *IntGrid) ToGrid() *Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = float64(v)
	}
	return out
}

// 多波段栅格及其地理参考；加载后只读
type Raster struct {
	Bands      []*Grid
	Transform  GeoTransform
	Projection string // WKT
}

func NewRaster(gt GeoTransform, projection string, bands ...*Grid) (r *Raster, err error) {
	if len(bands) == 0 {
		err = ErrEmptyRaster
		return
	}
	for _, b := range bands[1:] {
		if !bands[0].SameShape(b) {
			err = ErrShapeMismatch
			return
		}
	}
	r = &Raster{Bands: bands, Transform: gt, Projection: projection}
	return
}

func (r *Raster) Rows() int {
	if len(r.Bands) == 0 {
		return 0
	}
	return r.Bands[0].Rows
}

func (r *Raster) Cols() int {
	if len(r.Bands) == 0 {
		return 0
	}
	return r.Bands[0].Cols
}

func (r *Raster) BandCount() int {
	return len(r.Bands)
}

func (r *Raster) PixelCount() int {
	return r.Rows() * r.Cols()
}

// 波段标签到波段序号（从1开始）的映射，依卫星类型而定
type BandMapping map[string]int

// 波段标签到波段数据
type BandSet map[string]*Grid

// 按映射取出单个波段：标签未映射时为ErrMissingBand，序号超出影像波段数时为ErrNotEnoughBands
func (r *Raster) Band(m BandMapping, label string) (*Grid, error) {
	idx, ok := m[label]
	if !ok {
		return nil, ErrMissingBand
	}
	if idx < 1 || idx > len(r.Bands) {
		return nil, ErrNotEnoughBands
	}
	return r.Bands[idx-1], nil
}

// 检查所有波段形状一致
func (bs BandSet) Shape() (rows, cols int, err error) {
	first := true
	for _, g := range bs {
		if first {
			rows, cols = g.Rows, g.Cols
			first = false
			continue
		}
		if g.Rows != rows || g.Cols != cols {
			err = ErrShapeMismatch
			return
		}
	}
	if first {
		err = ErrEmptyRaster
	}
	return
}
