package wastemap

import (
	"sync"

	"github.com/wgdzlh/wastemap/config"
	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"
	"github.com/wgdzlh/wastemap/utils"

	"github.com/lukeroth/gdal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type GdalToolbox struct {
	cfg    *config.Config
	clf    raster.Classifier
	refMap map[int]gdal.SpatialReference
	wktMap map[string]gdal.SpatialReference
	rLock  sync.Mutex
	tmpDir string
	logTag string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

// 初始化GDAL工具箱，tmpDir为可选的临时目录路径（未提供的话为工作目录）
func NewGdalToolbox(cfg *config.Config, tmpDir ...string) *GdalToolbox {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	g := &GdalToolbox{
		cfg:    cfg,
		refMap: map[int]gdal.SpatialReference{},
		wktMap: map[string]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
	if len(tmpDir) > 0 && tmpDir[0] != "" {
		g.tmpDir = tmpDir[0]
	}
	return g
}

// 设置分类器（由调用方持有）
func (g *GdalToolbox) SetClassifier(clf raster.Classifier) {
	g.clf = clf
}

func (g *GdalToolbox) Config() *config.Config {
	return g.cfg
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil { // 设定坐标系ID
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 固定为(经度,纬度)/(东,北)的传统GIS坐标序，避免转换坐标系或转GeoJSON时次序倒置
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

// 获取影像投影WKT对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getWktRef(wkt string) (ref gdal.SpatialReference, err error) {
	if wkt == "" {
		err = ErrInvalidProjection
		return
	}
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.wktMap[wkt]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromWKT(wkt); err != nil {
		log.Error(g.logTag+"parse projection wkt failed", zap.Error(err))
		ref.Destroy()
		err = ErrInvalidProjection
		return
	}
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.wktMap[wkt] = ref
	return
}

func (g *GdalToolbox) parseWKT(wkt string, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	ret, err = gdal.CreateFromWKT(wkt, ref)
	if err != nil {
		log.Error(g.logTag+"parse wkt failed", zap.Error(err))
		err = ErrInvalidWKT
	}
	return
}

// 多边形从影像坐标系转到tSrid
func (g *GdalToolbox) ReprojectPolygons(polys []orb.Polygon, projection string, tSrid int) (ret []orb.Polygon, err error) {
	ref, err := g.sourceRef(projection)
	if err != nil {
		return
	}
	tRef, err := g.getSridRef(tSrid)
	if err != nil {
		return
	}
	ret = make([]orb.Polygon, len(polys))
	for i, p := range polys {
		if ret[i], err = g.reprojectPolygon(p, ref, tRef); err != nil {
			ret = nil
			return
		}
	}
	return
}

func (g *GdalToolbox) reprojectPolygon(p orb.Polygon, ref, tRef gdal.SpatialReference) (ret orb.Polygon, err error) {
	geo, err := g.parseWKT(PolygonToWkt(p), ref)
	if err != nil {
		return
	}
	defer geo.Destroy()
	if err = geo.TransformTo(tRef); err != nil {
		log.Error(g.logTag+"geo transform failed", zap.Error(err))
		return
	}
	return g.toOrbPolygon(geo)
}

// OGR几何经GeoJSON转为orb多边形
func (g *GdalToolbox) toOrbPolygon(geo gdal.Geometry) (ret orb.Polygon, err error) {
	gj, err := geojson.UnmarshalGeometry(utils.S2B(geo.ToJSON()))
	if err != nil {
		log.Error(g.logTag+"parse geojson of geo failed", zap.Error(err))
		err = ErrGdalWrongGeoType
		return
	}
	ret, ok := gj.Coordinates.(orb.Polygon)
	if !ok {
		err = ErrGdalWrongGeoType
	}
	return
}

// 合并多个多边形（坐标系为ref），返回的几何对象需由调用方回收
func (g *GdalToolbox) unionPolygons(polys []orb.Polygon, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	var (
		geo   gdal.Geometry
		multi = gdal.Create(gdal.GT_MultiPolygon)
	)
	defer multi.Destroy()
	for _, p := range polys {
		if geo, err = g.parseWKT(PolygonToWkt(p), ref); err != nil {
			return
		}
		if err = multi.AddGeometryDirectly(geo); err != nil {
			log.Error(g.logTag+"add polygon to collection failed", zap.Error(err))
			geo.Destroy()
			return
		}
	}
	ret = multi.UnionCascaded()
	ret.SetSpatialReference(ref)
	return
}
