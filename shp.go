package wastemap

import (
	"fmt"

	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

func (g *GdalToolbox) getShpDriver(shp, projection string) (ds gdal.DataSource, ref gdal.SpatialReference, layer gdal.Layer, err error) {
	log.Info(g.logTag+"output shp files", zap.String("shp", shp))
	if ref, err = g.sourceRef(projection); err != nil {
		return
	}
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Create(shp, nil)
	if !ok {
		err = ErrGdalDriverCreate
		return
	}
	layer = ds.CreateLayer("regions", ref, gdal.GT_Polygon, []string{ENCODING_OPTION})
	return
}

func (g *GdalToolbox) initShpLayer(layer gdal.Layer) (err error) {
	fid := gdal.CreateFieldDefinition(SHP_FIELD_ID, gdal.FT_Integer)
	defer fid.Destroy()
	if err = layer.CreateField(fid, false); err != nil {
		return
	}
	label := gdal.CreateFieldDefinition(SHP_FIELD_LABEL, gdal.FT_String)
	defer label.Destroy()
	label.SetWidth(SHP_LABEL_WIDTH)
	err = layer.CreateField(label, false)
	return
}

// 将带标签的区域多边形写入shp，id从1开始
func (g *GdalToolbox) WriteRegionShapefile(shp, projection string, speckles ...Speckle) (err error) {
	ds, ref, layer, err := g.getShpDriver(shp, projection)
	if err != nil {
		return
	}
	defer ds.Destroy() // 生成shp文件 + 释放资源
	if err = g.initShpLayer(layer); err != nil {
		return
	}
	var (
		def      = layer.Definition()
		idIdx    = def.FieldIndex(SHP_FIELD_ID)
		labelIdx = def.FieldIndex(SHP_FIELD_LABEL)
		feature  gdal.Feature
		geo      gdal.Geometry
		cnt      int
		e        error
		gc       = make([]destroyable, len(speckles))
	)
	for i, vec := range speckles {
		feature = def.Create()
		gc[i] = feature
		if e = feature.SetFID(int64(i)); e != nil {
			log.Error(g.logTag+"err in set feature fid", zap.Error(e))
			continue
		}
		feature.SetFieldInteger(idIdx, i+1)
		feature.SetFieldString(labelIdx, vec.ClassName)
		if geo, e = g.parseWKT(PolygonToWkt(vec.Geom), ref); e != nil {
			continue
		}
		if e = feature.SetGeometryDirectly(geo); e != nil {
			log.Error(g.logTag+"err in set geom of feature", zap.Error(e))
			continue
		}
		if e = layer.Create(feature); e != nil {
			log.Error(g.logTag+"err in create feature of layer", zap.Error(e))
			continue
		}
		cnt++
	}
	for _, v := range gc {
		v.Destroy()
	}
	log.Info(g.logTag+"shp files created", zap.String("shp", shp), zap.Int("total", len(speckles)), zap.Int("valid", cnt))
	return
}

// 连通区域外框转为带标签的多边形，标签为区域的像元值
func RegionSpeckles(grid *raster.IntGrid, searchValues []int32, gt raster.GeoTransform) (ret []Speckle) {
	regions := raster.FindRegions(grid, searchValues)
	polys := raster.RegionsToPolygons(regions, gt)
	ret = make([]Speckle, len(regions))
	for i, r := range regions {
		ret[i] = Speckle{
			Geom:      polys[i],
			ClassName: fmt.Sprint(grid.At(r[0].Row, r[0].Col)),
		}
	}
	return
}
