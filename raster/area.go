package raster

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

const (
	AreaModeClassified = "classified"
	AreaModeHeatmap    = "heatmap"

	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// 面积估算条件
type AreaQuery struct {
	Mode    string   // classified 或 heatmap
	ClassID int      // classified模式下的目标类别
	Levels  []string // heatmap模式下的等级：low/medium/high
}

// 热力图等级名称转值
func LevelValue(level string) (int32, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelLow:
		return HeatmapLow, nil
	case LevelMedium:
		return HeatmapMedium, nil
	case LevelHigh:
		return HeatmapHigh, nil
	}
	return 0, ErrInvalidLevel
}

// 按像元计数乘以像元面积估算面积
// classified模式下，目标类别不存在或存在非100整数倍的值时返回0
func EstimateArea(g *IntGrid, q AreaQuery, pixelSizeX, pixelSizeY float64) (area float64, err error) {
	pixelArea := math.Abs(pixelSizeX * pixelSizeY)
	var count int
	switch strings.ToLower(q.Mode) {
	case AreaModeClassified:
		target := int32(q.ClassID * 100)
		counts := g.Counts()
		if counts[target] == 0 {
			return
		}
		for v := range counts {
			if v%100 != 0 {
				return
			}
		}
		count = counts[target]
	case AreaModeHeatmap:
		if len(q.Levels) == 0 {
			err = ErrInvalidLevel
			return
		}
		wanted := make([]int32, 0, len(q.Levels))
		for _, l := range q.Levels {
			var v int32
			if v, err = LevelValue(l); err != nil {
				return
			}
			wanted = append(wanted, v)
		}
		set := newValueSet(wanted)
		for _, v := range g.Data {
			if set.has(v) {
				count++
			}
		}
	default:
		err = ErrInvalidAreaMode
		return
	}
	area = float64(count) * pixelArea
	return
}

// 最新估算值相对此前估算均值的变化百分比；均值为0时ok为false
func CompareToMean(latest float64, previous []float64) (percent float64, ok bool) {
	if len(previous) == 0 {
		return
	}
	mean := stat.Mean(previous, nil)
	if mean == 0 {
		return
	}
	percent = math.Round((latest/mean-1)*100*100) / 100
	ok = true
	return
}
