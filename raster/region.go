package raster

import "math"

// 已访问标记
const visited int32 = math.MinInt32

// 像元行列号
type Pixel struct {
	Row, Col int
}

// 四连通且值相同（同属搜索值集合）的像元集合
type Region []Pixel

// 像元范围
type BoundingBox struct {
	MinRow, MinCol, MaxRow, MaxCol int
}

// 左上、右上、右下、左下四个角像元
func (b BoundingBox) Corners() [4]Pixel {
	return [4]Pixel{
		{b.MinRow, b.MinCol},
		{b.MinRow, b.MaxCol},
		{b.MaxRow, b.MaxCol},
		{b.MaxRow, b.MinCol},
	}
}

func (b BoundingBox) Height() int {
	return b.MaxRow - b.MinRow + 1
}

func (b BoundingBox) Width() int {
	return b.MaxCol - b.MinCol + 1
}

func (r Region) BoundingBox() (b BoundingBox) {
	if len(r) == 0 {
		return
	}
	b = BoundingBox{r[0].Row, r[0].Col, r[0].Row, r[0].Col}
	for _, p := range r[1:] {
		if p.Row < b.MinRow {
			b.MinRow = p.Row
		}
		if p.Row > b.MaxRow {
			b.MaxRow = p.Row
		}
		if p.Col < b.MinCol {
			b.MinCol = p.Col
		}
		if p.Col > b.MaxCol {
			b.MaxCol = p.Col
		}
	}
	return
}

type valueSet map[int32]struct{}

func newValueSet(values []int32) valueSet {
	s := make(valueSet, len(values))
	for _, v := range values {
		if v != visited {
			s[v] = struct{}{}
		}
	}
	return s
}

func (s valueSet) has(v int32) bool {
	_, ok := s[v]
	return ok
}

// 行优先扫描，找出所有取值在searchValues中的四连通区域；输入不会被修改
func FindRegions(g *IntGrid, searchValues []int32) (regions []Region) {
	set := newValueSet(searchValues)
	if len(set) == 0 {
		return
	}
	work := g.Clone()
	for row := 0; row < work.Rows; row++ {
		for col := 0; col < work.Cols; col++ {
			if set.has(work.At(row, col)) {
				regions = append(regions, floodFill(work, row, col, set))
			}
		}
	}
	return
}

var neighbours = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// 广度优先填充，已访问像元标记为visited
func floodFill(g *IntGrid, row, col int, set valueSet) (region Region) {
	g.Set(row, col, visited)
	queue := []Pixel{{row, col}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		region = append(region, cur)
		for _, d := range neighbours {
			r, c := cur.Row+d[0], cur.Col+d[1]
			if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols {
				continue
			}
			if set.has(g.At(r, c)) {
				g.Set(r, c, visited)
				queue = append(queue, Pixel{r, c})
			}
		}
	}
	return
}

func BoundingBoxes(regions []Region) []BoundingBox {
	ret := make([]BoundingBox, len(regions))
	for i, r := range regions {
		ret[i] = r.BoundingBox()
	}
	return ret
}
