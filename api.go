package wastemap

import "github.com/paulmach/orb"

// 带标签的区域多边形
type Speckle struct {
	Geom      orb.Polygon
	ClassName string
}

// 浮游垃圾检测输出
type FloatingResult struct {
	Indices          string            // 波段/指数tif
	Classified       string            // 分类tif
	Heatmap          string            // 热力图tif
	MaskedClassified string            // 掩膜后分类tif
	MaskedHeatmap    string            // 掩膜后热力图tif
	GeoJSON          map[string]string // classified/low/medium/high -> 合并区域GeoJSON
	Regions          string            // 逐区域外框GeoJSON
	Shapefile        string            // 可选的区域shp
	Area             float64           // 垃圾面积（平方米）
}

// 冲上岸垃圾检测输出
type WashedUpResult struct {
	Before string // 中位数以上的差值热力图
	After  string // 中位数及以下的差值热力图
	Rows   int
	Cols   int
}

// 一期面积估算
type Estimation struct {
	Date string  `json:"date"`
	Area float64 `json:"area"`
}
