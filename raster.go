package wastemap

import (
	"math"

	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"
	"github.com/wgdzlh/wastemap/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 读取影像全部波段
func (g *GdalToolbox) ReadRaster(tif string) (ret *raster.Raster, err error) {
	ds, err := gdal.Open(tif, gdal.ReadOnly)
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", tif), zap.Error(err))
		err = ErrInvalidTif
		return
	}
	defer ds.Close()
	x, y, bc := ds.RasterXSize(), ds.RasterYSize(), ds.RasterCount()
	if x == 0 || y == 0 || bc == 0 {
		err = ErrEmptyTif
		return
	}
	log.Info(g.logTag+"start read tif", zap.String("tif", tif), zap.Int("bands", bc), zap.Int("width", x), zap.Int("height", y))
	bands := make([]*raster.Grid, bc)
	for i := 0; i < bc; i++ {
		bands[i] = raster.NewGrid(y, x)
		band := ds.RasterBand(i + 1)
		if err = band.IO(gdal.Read, 0, 0, x, y, bands[i].Data, x, y, 0, 0); err != nil {
			log.Error(g.logTag+"read tif band failed", zap.Int("band", i+1), zap.Error(err))
			err = ErrTifReadFailed
			return
		}
		g.applyNoData(band, bands[i])
	}
	ret, err = raster.NewRaster(raster.GeoTransform(ds.GeoTransform()), ds.Projection(), bands...)
	return
}

// 将无效值替换为NaN
func (g *GdalToolbox) applyNoData(band gdal.RasterBand, grid *raster.Grid) {
	nd, ok := band.NoDataValue()
	if !ok || math.IsNaN(nd) {
		return
	}
	for i, v := range grid.Data {
		if v == nd {
			grid.Data[i] = raster.NaN
		}
	}
}

// 读取单波段影像为整数栅格（分类图/热力图），NaN记为0
func (g *GdalToolbox) ReadIntRaster(tif string) (ret *raster.IntGrid, meta *raster.Raster, err error) {
	meta, err = g.ReadRaster(tif)
	if err != nil {
		return
	}
	if meta.BandCount() != 1 {
		log.Error(g.logTag+"tif must have one band", zap.String("tif", tif), zap.Int("bands", meta.BandCount()))
		err = ErrNotSingleBand
		return
	}
	band := meta.Bands[0]
	ret = raster.NewIntGrid(band.Rows, band.Cols)
	for i, v := range band.Data {
		if !math.IsNaN(v) {
			ret.Data[i] = int32(math.Round(v))
		}
	}
	return
}

// 以Float32写出多波段tif，NaN为无效值；gt为空时沿用ref的仿射参数
func (g *GdalToolbox) WriteRaster(out string, ref *raster.Raster, bands []*raster.Grid, gt ...raster.GeoTransform) (err error) {
	if len(bands) == 0 {
		err = ErrEmptyTif
		return
	}
	rows, cols := bands[0].Rows, bands[0].Cols
	for _, b := range bands[1:] {
		if !bands[0].SameShape(b) {
			err = raster.ErrShapeMismatch
			return
		}
	}
	if err = utils.EnsureParentDir(out); err != nil {
		return
	}
	driver, err := gdal.GetDriverByName(TIF_DRIVER_NAME)
	if err != nil {
		log.Error(g.logTag+"get tif driver failed", zap.Error(err))
		err = ErrGdalDriverCreate
		return
	}
	ds := driver.Create(out, cols, rows, len(bands), gdal.Float32, nil)
	defer ds.Close()
	transform := ref.Transform
	if len(gt) > 0 {
		transform = gt[0]
	}
	if err = ds.SetGeoTransform(transform); err != nil {
		log.Error(g.logTag+"set geotransform failed", zap.Error(err))
		return
	}
	if ref.Projection != "" {
		if err = ds.SetProjection(ref.Projection); err != nil {
			log.Error(g.logTag+"set projection failed", zap.Error(err))
			return
		}
	}
	buf := make([]float32, rows*cols)
	for i, b := range bands {
		for j, v := range b.Data {
			buf[j] = float32(v)
		}
		band := ds.RasterBand(i + 1)
		if err = band.IO(gdal.Write, 0, 0, cols, rows, buf, cols, rows, 0, 0); err != nil {
			log.Error(g.logTag+"write tif band failed", zap.Int("band", i+1), zap.Error(err))
			err = ErrTifWriteFailed
			return
		}
		if err = band.SetNoDataValue(math.NaN()); err != nil {
			return
		}
		band.FlushCache()
	}
	ds.FlushCache()
	log.Info(g.logTag+"tif written", zap.String("tif", out), zap.Int("bands", len(bands)), zap.Int("width", cols), zap.Int("height", rows))
	return
}

// 写出整数栅格（分类图/热力图）
func (g *GdalToolbox) WriteIntRaster(out string, ref *raster.Raster, grid *raster.IntGrid, gt ...raster.GeoTransform) error {
	return g.WriteRaster(out, ref, []*raster.Grid{grid.ToGrid()}, gt...)
}
