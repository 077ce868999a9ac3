package raster

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 单个像元外框的闭合环
func PixelRing(gt GeoTransform, row, col int) orb.Ring {
	return BoundingBox{row, col, row, col}.Ring(gt)
}

// 像元范围转地理坐标闭合环，右、下边界各外扩一个像元
func (b BoundingBox) Ring(gt GeoTransform) orb.Ring {
	c := b.Corners()
	ulx, uly := gt.PixelToGeo(c[0].Row, c[0].Col)
	urx, ury := gt.PixelToGeo(c[1].Row, c[1].Col)
	brx, bry := gt.PixelToGeo(c[2].Row, c[2].Col)
	blx, bly := gt.PixelToGeo(c[3].Row, c[3].Col)
	ul := orb.Point{ulx, uly}
	return orb.Ring{
		ul,
		{urx + gt[1], ury},
		{brx + gt[1], bry + gt[5]},
		{blx, bly + gt[5]},
		ul,
	}
}

func RegionsToPolygons(regions []Region, gt GeoTransform) []orb.Polygon {
	ret := make([]orb.Polygon, len(regions))
	for i, r := range regions {
		ret[i] = orb.Polygon{r.BoundingBox().Ring(gt)}
	}
	return ret
}

// 每个取值为value的像元生成一个外框多边形
func PixelPolygons(g *IntGrid, value int32, gt GeoTransform) (ret []orb.Polygon) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if g.At(row, col) == value {
				ret = append(ret, orb.Polygon{PixelRing(gt, row, col)})
			}
		}
	}
	return
}

// 多边形转FeatureCollection，id属性从"1"开始递增
func PolygonsToGeoJSON(polys []orb.Polygon) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range polys {
		f := geojson.NewFeature(p)
		f.Properties["id"] = strconv.Itoa(i + 1)
		fc.Append(f)
	}
	return fc
}
