package raster

import (
	"math"
	"sort"
)

// 热力图等级
const (
	HeatmapNone   int32 = 0
	HeatmapLow    int32 = 1
	HeatmapMedium int32 = 2
	HeatmapHigh   int32 = 3
)

// 概率阈值及其对应的热力图值
type Threshold struct {
	Value float64
	Label int32
}

// 低/中/高三级阈值（0~1之间的小数，需递增）
type Thresholds struct {
	Low, Medium, High float64
}

func (t Thresholds) List() []Threshold {
	return []Threshold{
		{Value: t.Low, Label: HeatmapLow},
		{Value: t.Medium, Label: HeatmapMedium},
		{Value: t.High, Label: HeatmapHigh},
	}
}

// 单个概率值对应的热力图等级
func (t Thresholds) Bucket(p float64) int32 {
	return bucket(p, t.List())
}

func bucket(p float64, ts []Threshold) (ret int32) {
	for _, t := range ts {
		if p >= t.Value {
			ret = t.Label
		}
	}
	return
}

// 按阈值生成热力图，后面的阈值覆盖前面的
func CreateHeatmap(probs *Grid, ts []Threshold) *IntGrid {
	out := NewIntGrid(probs.Rows, probs.Cols)
	for i, p := range probs.Data {
		if math.IsNaN(p) {
			continue
		}
		out.Data[i] = bucket(p, ts)
	}
	return out
}

// 忽略NaN的中位数；全为NaN时返回NaN
func NanMedian(data []float64) float64 {
	vals := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	n := len(vals)
	if n == 0 {
		return NaN
	}
	sort.Float64s(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// 差值热力图：以中位数为界分成正负两张图，
// 每张图按最大偏差均分为sections段，最高三段依次记为3/2/1
func DifferenceHeatmaps(diff *Grid, sections int) (pos, neg *IntGrid, err error) {
	if sections < 4 {
		err = ErrInvalidSections
		return
	}
	pos = NewIntGrid(diff.Rows, diff.Cols)
	neg = NewIntGrid(diff.Rows, diff.Cols)
	trivial := true
	for _, v := range diff.Data {
		if !math.IsNaN(v) && v != 0 {
			trivial = false
			break
		}
	}
	if trivial {
		return
	}

	median := NanMedian(diff.Data)
	posDev := NewGrid(diff.Rows, diff.Cols)
	negDev := NewGrid(diff.Rows, diff.Cols)
	for i, v := range diff.Data {
		if math.IsNaN(v) {
			posDev.Data[i], negDev.Data[i] = NaN, NaN
			continue
		}
		if v > median {
			posDev.Data[i] = v - median
		} else {
			negDev.Data[i] = median - v
		}
	}
	sectionBuckets(posDev, pos, sections)
	sectionBuckets(negDev, neg, sections)
	return
}

func sectionBuckets(dev *Grid, out *IntGrid, sections int) {
	_, hi := NanMinMax(dev.Data)
	if math.IsNaN(hi) {
		return
	}
	part := hi / float64(sections)
	n := float64(sections)
	ts := []Threshold{
		{Value: part * (n - 3), Label: HeatmapLow},
		{Value: part * (n - 2), Label: HeatmapMedium},
		{Value: part * (n - 1), Label: HeatmapHigh},
	}
	for i, v := range dev.Data {
		if math.IsNaN(v) {
			continue
		}
		out.Data[i] = bucket(v, ts)
	}
}
