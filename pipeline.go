package wastemap

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/wgdzlh/wastemap/classifier"
	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/morph"
	"github.com/wgdzlh/wastemap/raster"
	"github.com/wgdzlh/wastemap/utils"

	"github.com/mdobak/go-xerrors"
	"go.uber.org/zap"
)

// 按配置加载k近邻分类器
func (g *GdalToolbox) LoadClassifier() (err error) {
	clf, err := classifier.Load(g.cfg.Classifier.Path, g.cfg.Classifier.Neighbours)
	if err != nil {
		log.Error(g.logTag+"load classifier failed", zap.String("path", g.cfg.Classifier.Path), zap.Error(err))
		return
	}
	features := raster.ResolveBandsIndices(g.cfg.Classifier.Bands)
	if err = checkClassifierBands(clf.Bands(), features); err != nil {
		log.Error(g.logTag+"classifier bands mismatch", zap.Strings("model", clf.Bands()), zap.Strings("features", features))
		return
	}
	g.clf = clf
	return
}

// 指数影像的波段按规范顺序排列，模型声明的波段须与之逐一对应；未声明时不检查
func checkClassifierBands(model, features []string) error {
	if len(model) == 0 {
		return nil
	}
	lower := make([]string, len(model))
	for i, b := range model {
		lower[i] = strings.ToLower(strings.TrimSpace(b))
	}
	if !slices.Equal(lower, features) {
		return ErrClassifierBands
	}
	return nil
}

func (g *GdalToolbox) outputPath(inputs []string, postfix, ext string) string {
	if ext == "" {
		ext = g.cfg.Output.FileExtension
	}
	return utils.OutputPath(inputs, postfix, ext, g.cfg.Output.WorkingDir)
}

func (g *GdalToolbox) bandMapping() (raster.BandMapping, error) {
	s, err := g.cfg.Sensor()
	if err != nil {
		return nil, err
	}
	return s.Bands, nil
}

// 计算并保存指定的波段/指数（如"all"、"nir-red-pi"），out为空时按配置生成输出路径
func (g *GdalToolbox) SaveBandsIndices(input, token, out string) (ret string, err error) {
	names := raster.ResolveBandsIndices(token)
	if len(names) == 0 {
		err = ErrNoBandsRequested
		return
	}
	mapping, err := g.bandMapping()
	if err != nil {
		return
	}
	r, err := g.ReadRaster(input)
	if err != nil {
		return
	}
	grids, err := raster.CalculateRasterIndices(names, r, mapping)
	if err != nil {
		log.Error(g.logTag+"calculate indices failed", zap.String("tif", input), zap.Int("bands", r.BandCount()),
			zap.Strings("names", names), zap.Error(err))
		return
	}
	if out == "" {
		out = g.outputPath([]string{input}, g.cfg.Output.Postfix.Indices, "")
	}
	if err = g.WriteRaster(out, r, grids); err != nil {
		return
	}
	ret = out
	log.Info(g.logTag+"bands and indices saved", zap.String("out", out), zap.Strings("names", names))
	return
}

// 对指数影像分类，输出分类图与热力图
func (g *GdalToolbox) ClassifyFile(input, classifiedOut, heatmapOut string) (err error) {
	if g.clf == nil {
		err = raster.ErrClassifierUnavailable
		return
	}
	r, err := g.ReadRaster(input)
	if err != nil {
		return
	}
	class, heat, err := raster.Classify(r, g.clf, g.cfg.ClassifyOptions())
	if err != nil {
		log.Error(g.logTag+"classify failed", zap.String("tif", input), zap.Error(err))
		return
	}
	if err = g.WriteIntRaster(classifiedOut, r, class); err != nil {
		return
	}
	err = g.WriteIntRaster(heatmapOut, r, heat)
	return
}

// 形态学掩膜分类图与热力图
func (g *GdalToolbox) MaskFiles(classifiedIn, heatmapIn, classifiedOut, heatmapOut string) (err error) {
	class, meta, err := g.ReadIntRaster(classifiedIn)
	if err != nil {
		return
	}
	heat, _, err := g.ReadIntRaster(heatmapIn)
	if err != nil {
		return
	}
	mc, mh, err := morph.Mask(class, heat, morph.Options{
		GarbageID:  g.cfg.Classes.Garbage,
		WaterID:    g.cfg.Classes.Water,
		KernelSize: g.cfg.Morphology.KernelSize,
		Iterations: g.cfg.Morphology.Iterations,
	})
	if err != nil {
		log.Error(g.logTag+"mask failed", zap.String("classified", classifiedIn), zap.Error(err))
		return
	}
	if err = g.WriteIntRaster(classifiedOut, meta, mc); err != nil {
		return
	}
	err = g.WriteIntRaster(heatmapOut, meta, mh)
	return
}

// 中间结果目录：保留时为工作目录，否则为临时子目录
func (g *GdalToolbox) intermediateDir() (dir string, cleanup func(), err error) {
	cleanup = func() {}
	if g.cfg.Output.KeepIntermediate {
		dir = g.cfg.Output.WorkingDir
		return
	}
	parent := g.tmpDir
	if parent == "" {
		parent = filepath.Join(g.cfg.Output.WorkingDir, TMP_DIR_NAME)
	}
	if dir, err = utils.GetUniqSubDir(parent); err != nil {
		return
	}
	cleanup = func() {
		if e := os.RemoveAll(dir); e != nil {
			log.Warn(g.logTag+"remove tmp dir failed", zap.String("dir", dir), zap.Error(e))
		}
	}
	return
}

// 浮游垃圾检测：指数 -> 分类+热力图 -> 形态学掩膜 -> 区域GeoJSON -> 面积估算
func (g *GdalToolbox) DetectFloatingWaste(input string) (res *FloatingResult, err error) {
	defer func() {
		if err != nil {
			res = nil
			err = xerrors.New(err)
			log.Error(g.logTag+"floating waste detection failed", zap.String("input", input), zap.Error(err))
		}
	}()
	if g.clf == nil {
		err = raster.ErrClassifierUnavailable
		return
	}
	var (
		cfg  = g.cfg
		post = cfg.Output.Postfix
		ext  = cfg.Output.FileExtension
		in   = []string{input}
	)
	tmp, cleanup, err := g.intermediateDir()
	if err != nil {
		return
	}
	defer cleanup()
	log.Info(g.logTag+"start floating waste detection", zap.String("input", input), zap.String("tmp", tmp))

	res = &FloatingResult{GeoJSON: map[string]string{}}
	res.Indices = utils.OutputPath(in, post.Indices, ext, tmp)
	res.Classified = utils.OutputPath(in, post.Classified, ext, tmp)
	res.Heatmap = utils.OutputPath(in, post.Heatmap, ext, tmp)
	res.MaskedClassified = g.outputPath(in, post.MaskedClassified, "")
	res.MaskedHeatmap = g.outputPath(in, post.MaskedHeatmap, "")

	if _, err = g.SaveBandsIndices(input, cfg.Classifier.Bands, res.Indices); err != nil {
		return
	}
	if err = g.ClassifyFile(res.Indices, res.Classified, res.Heatmap); err != nil {
		return
	}
	if err = g.MaskFiles(res.Classified, res.Heatmap, res.MaskedClassified, res.MaskedHeatmap); err != nil {
		return
	}

	class, meta, err := g.ReadIntRaster(res.MaskedClassified)
	if err != nil {
		return
	}
	heat, _, err := g.ReadIntRaster(res.MaskedHeatmap)
	if err != nil {
		return
	}
	garbage := int32(cfg.Classes.Garbage * 100)
	if err = g.writeDissolved(input, res, GEOJSON_CLASSIFIED, class, garbage, meta); err != nil {
		return
	}
	for _, level := range cfg.Output.HeatmapLevels {
		var v int32
		if v, err = raster.LevelValue(level); err != nil {
			return
		}
		if err = g.writeDissolved(input, res, level, heat, v, meta); err != nil {
			return
		}
	}

	res.Regions = g.outputPath(in, post.Regions, FILE_EXT_GEOJSON)
	regions, err := g.regionsGeoJSON(class, []int32{garbage}, meta)
	if err != nil {
		return
	}
	if err = WriteGeoJSON(res.Regions, regions); err != nil {
		return
	}
	if cfg.Output.Shapefile {
		res.Shapefile = g.outputPath(in, post.Regions, FILE_EXT_SHP)
		speckles := RegionSpeckles(class, []int32{garbage}, meta.Transform)
		if err = g.WriteRegionShapefile(res.Shapefile, meta.Projection, speckles...); err != nil {
			return
		}
	}

	sensor, err := cfg.Sensor()
	if err != nil {
		return
	}
	res.Area, err = raster.EstimateArea(class, raster.AreaQuery{
		Mode:    raster.AreaModeClassified,
		ClassID: cfg.Classes.Garbage,
	}, sensor.PixelSize, sensor.PixelSize)
	if err != nil {
		return
	}
	if !cfg.Output.KeepIntermediate {
		res.Indices, res.Classified, res.Heatmap = "", "", ""
	}
	log.Info(g.logTag+"floating waste detection done", zap.String("input", input), zap.Float64("area", res.Area))
	return
}

func (g *GdalToolbox) writeDissolved(input string, res *FloatingResult, name string, grid *raster.IntGrid, value int32, meta *raster.Raster) (err error) {
	out := g.outputPath([]string{input}, g.cfg.Output.Postfix.Dissolved+"_"+name, FILE_EXT_GEOJSON)
	fc, err := g.DissolveToGeoJSON(grid, value, meta.Transform, meta.Projection)
	if err != nil {
		return
	}
	if err = WriteGeoJSON(out, fc); err != nil {
		return
	}
	res.GeoJSON[name] = out
	return
}

// 冲上岸垃圾检测：两期影像重叠区的PI差值，以中位数分为前后两张热力图
func (g *GdalToolbox) DetectWashedUp(input1, input2 string) (res *WashedUpResult, err error) {
	mapping, err := g.bandMapping()
	if err != nil {
		return
	}
	a, err := g.ReadRaster(input1)
	if err != nil {
		return
	}
	b, err := g.ReadRaster(input2)
	if err != nil {
		return
	}
	diff, al, err := raster.Difference(a, b, raster.PI, mapping)
	if err != nil {
		if IsAlignmentFailure(err) {
			log.Warn(g.logTag+"images can not be aligned", zap.String("input1", input1), zap.String("input2", input2), zap.Error(err))
			return
		}
		err = xerrors.New(err)
		log.Error(g.logTag+"pi difference failed", zap.Error(err))
		return
	}
	pos, neg, err := raster.DifferenceHeatmaps(diff, g.cfg.WashedUpSections)
	if err != nil {
		return
	}
	post := g.cfg.Output.Postfix
	in := []string{input1, input2}
	gt := al.GeoTransform(a.Transform)
	res = &WashedUpResult{
		Before: g.outputPath(in, post.WashedUpBefore, ""),
		After:  g.outputPath(in, post.WashedUpAfter, ""),
		Rows:   al.Rows,
		Cols:   al.Cols,
	}
	if err = g.WriteIntRaster(res.Before, a, pos, gt); err != nil {
		return
	}
	if err = g.WriteIntRaster(res.After, a, neg, gt); err != nil {
		return
	}
	log.Info(g.logTag+"washed up detection done", zap.String("before", res.Before), zap.String("after", res.After),
		zap.Int("rows", al.Rows), zap.Int("cols", al.Cols))
	return
}

// 两幅影像无法对齐（无重叠或分辨率不同），批处理中应跳过而非中止
func IsAlignmentFailure(err error) bool {
	return errors.Is(err, raster.ErrNoOverlap) || errors.Is(err, raster.ErrResolutionMismatch)
}

// 按单波段分类图或热力图估算面积（平方米）
func (g *GdalToolbox) EstimateArea(input string, q raster.AreaQuery) (area float64, err error) {
	sensor, err := g.cfg.Sensor()
	if err != nil {
		return
	}
	if q.Mode == raster.AreaModeClassified && q.ClassID == 0 {
		q.ClassID = g.cfg.Classes.Garbage
	}
	grid, _, err := g.ReadIntRaster(input)
	if err != nil {
		return
	}
	if area, err = raster.EstimateArea(grid, q, sensor.PixelSize, sensor.PixelSize); err != nil {
		return
	}
	log.Info(g.logTag+"area estimated", zap.String("input", input), zap.String("mode", q.Mode), zap.Float64("area", area))
	return
}

// 最新一期估算值与此前若干期均值比较，观察窗口由配置决定
func (g *GdalToolbox) AnalyzeEstimations(feature string, es []Estimation) (percent float64, ok bool) {
	if len(es) == 0 {
		return
	}
	sorted := append([]Estimation(nil), es...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if span := g.cfg.ObservationSpan; span > 0 && len(sorted) > span {
		sorted = sorted[:span]
	}
	previous := make([]float64, 0, len(sorted)-1)
	for _, e := range sorted[1:] {
		previous = append(previous, e.Area)
	}
	latest := sorted[0]
	if percent, ok = raster.CompareToMean(latest.Area, previous); !ok {
		log.Warn(g.logTag+"not enough data to analyze", zap.String("feature", feature))
		return
	}
	log.Info(g.logTag+"estimation trend", zap.String("feature", feature), zap.String("date", latest.Date),
		zap.Float64("latest", latest.Area), zap.Int("previous", len(previous)),
		zap.String("change", strconv.FormatFloat(percent, 'f', 2, 64)+"%"))
	return
}
