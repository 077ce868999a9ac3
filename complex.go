package wastemap

import (
	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"
	"github.com/wgdzlh/wastemap/utils"

	"github.com/lukeroth/gdal"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// 输出坐标系声明
func outputCRS() map[string]any {
	return map[string]any{
		"type":       "name",
		"properties": map[string]any{"name": OUTPUT_CRS_NAME},
	}
}

// 合并所有取值为value的像元，转到EPSG:3857后输出为单个要素的FeatureCollection；
// 无匹配像元时输出空的FeatureCollection
func (g *GdalToolbox) DissolveToGeoJSON(grid *raster.IntGrid, value int32, gt raster.GeoTransform, projection string) (fc *geojson.FeatureCollection, err error) {
	fc = geojson.NewFeatureCollection()
	polys := raster.PixelPolygons(grid, value, gt)
	if len(polys) == 0 {
		return
	}
	log.Info(g.logTag+"start dissolve pixels", zap.Int32("value", value), zap.Int("pixels", len(polys)))
	ref, err := g.sourceRef(projection)
	if err != nil {
		return
	}
	tRef, err := g.getSridRef(OUTPUT_SRID)
	if err != nil {
		return
	}
	unionGeo, err := g.unionPolygons(polys, ref)
	if err != nil {
		return
	}
	defer unionGeo.Destroy()
	if projection != "" {
		if err = unionGeo.TransformTo(tRef); err != nil {
			log.Error(g.logTag+"geo transform failed", zap.Error(err))
			return
		}
	}
	geometry, err := geojson.UnmarshalGeometry(utils.S2B(unionGeo.ToJSON()))
	if err != nil {
		log.Error(g.logTag+"parse union geojson failed", zap.Error(err))
		err = ErrGdalWrongGeoType
		return
	}
	f := geojson.NewFeature(geometry.Coordinates)
	f.ID = "0"
	f.BBox = geojson.NewBBox(geometry.Coordinates.Bound())
	fc.Append(f)
	fc.BBox = f.BBox
	fc.ExtraMembers = geojson.Properties{"crs": outputCRS()}
	log.Info(g.logTag+"dissolve done", zap.Int32("value", value), zap.String("type", geometry.Coordinates.GeoJSONType()))
	return
}

// 影像无投影信息时按EPSG:3857处理
func (g *GdalToolbox) sourceRef(projection string) (ref gdal.SpatialReference, err error) {
	if projection == "" {
		return g.getSridRef(OUTPUT_SRID)
	}
	return g.getWktRef(projection)
}

// 读取单波段分类图/热力图，写出合并区域GeoJSON
func (g *GdalToolbox) WriteDissolvedGeoJSON(in, out string, value int32) (err error) {
	grid, meta, err := g.ReadIntRaster(in)
	if err != nil {
		return
	}
	fc, err := g.DissolveToGeoJSON(grid, value, meta.Transform, meta.Projection)
	if err != nil {
		return
	}
	if err = WriteGeoJSON(out, fc); err != nil {
		log.Error(g.logTag+"write geojson failed", zap.String("out", out), zap.Error(err))
		return
	}
	log.Info(g.logTag+"dissolved geojson written", zap.String("in", in), zap.String("out", out), zap.Int("features", len(fc.Features)))
	return
}

// 读取单波段影像，写出各连通区域外框的GeoJSON
func (g *GdalToolbox) WriteRegionsGeoJSON(in, out string, searchValues []int32) (n int, err error) {
	grid, meta, err := g.ReadIntRaster(in)
	if err != nil {
		return
	}
	fc, err := g.regionsGeoJSON(grid, searchValues, meta)
	if err != nil {
		return
	}
	n = len(fc.Features)
	if err = WriteGeoJSON(out, fc); err != nil {
		log.Error(g.logTag+"write geojson failed", zap.String("out", out), zap.Error(err))
		return
	}
	log.Info(g.logTag+"regions geojson written", zap.String("in", in), zap.String("out", out), zap.Int("regions", n))
	return
}

// 连通区域外框的FeatureCollection，按配置转到目标坐标系并附带整体范围
func (g *GdalToolbox) regionsGeoJSON(grid *raster.IntGrid, searchValues []int32, meta *raster.Raster) (fc *geojson.FeatureCollection, err error) {
	polys := raster.RegionsToPolygons(raster.FindRegions(grid, searchValues), meta.Transform)
	if srid := g.cfg.Output.RegionsSRID; srid > 0 && len(polys) > 0 {
		if polys, err = g.ReprojectPolygons(polys, meta.Projection, srid); err != nil {
			return
		}
	}
	fc = raster.PolygonsToGeoJSON(polys)
	if span, ok := PolygonsSpan(polys); ok {
		fc.BBox = geojson.BBox{span[0], span[2], span[1], span[3]}
		log.Debug(g.logTag+"regions span", zap.Int("regions", len(polys)), zap.Float64s("span", span[:]))
	}
	return
}
