package raster

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// 波段与指数名称
const (
	Blue  = "blue"
	Green = "green"
	Red   = "red"
	Nir   = "nir"
	Swir  = "swir"
	PI    = "pi"
	NDWI  = "ndwi"
	NDVI  = "ndvi"
	RNDVI = "rndvi"
	SR    = "sr"
	APWI  = "apwi"
	MNDBI = "mndbi"
	API   = "api"
)

var (
	canonicalOrder = []string{Blue, Green, Red, Nir, Swir, PI, NDWI, NDVI, RNDVI, SR, APWI, MNDBI, API}

	allList       = []string{Blue, Green, Red, Nir, PI, NDWI, NDVI, RNDVI, SR, APWI}
	allNoBlueList = []string{Green, Red, Nir, PI, NDWI, NDVI, RNDVI, SR}
	bandsList     = []string{Blue, Green, Red, Nir}
	indicesList   = []string{PI, NDWI, NDVI, RNDVI, SR}
)

// 解析波段/指数字符串，如"all"、"bands"、"nir-red-pi"
func ResolveBandsIndices(token string) []string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(token)), "-")
	has := make(map[string]bool, len(parts))
	for _, p := range parts {
		has[strings.TrimSpace(p)] = true
	}
	switch {
	case has["all"]:
		return append([]string(nil), allList...)
	case has["all_no_blue"]:
		return append([]string(nil), allNoBlueList...)
	case has["bands"]:
		return append([]string(nil), bandsList...)
	case has["indices"]:
		return append([]string(nil), indicesList...)
	}
	var ret []string
	for _, name := range canonicalOrder {
		if has[name] {
			ret = append(ret, name)
		}
	}
	return ret
}

// 是否是原始波段名
func IsBand(name string) bool {
	switch name {
	case Blue, Green, Red, Nir, Swir:
		return true
	}
	return false
}

// 按规则计算比值指数：
// 任一输入为NaN或0/0得NaN；分母为0时按分子符号取分子的最大/最小值（忽略NaN）
func CalculateIndex(numerator, denominator *Grid) (*Grid, error) {
	if !numerator.SameShape(denominator) {
		return nil, ErrShapeMismatch
	}
	nMin, nMax := NanMinMax(numerator.Data)
	out := NewGrid(numerator.Rows, numerator.Cols)
	for i, n := range numerator.Data {
		d := denominator.Data[i]
		switch {
		case math.IsNaN(n) || math.IsNaN(d):
			out.Data[i] = NaN
		case d == 0 && n == 0:
			out.Data[i] = NaN
		case d == 0 && n > 0:
			out.Data[i] = nMax
		case d == 0:
			out.Data[i] = nMin
		default:
			out.Data[i] = n / d
		}
	}
	return out, nil
}

// 忽略NaN的最小/最大值；全为NaN时返回NaN
func NanMinMax(data []float64) (lo, hi float64) {
	lo, hi = NaN, NaN
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return
}

func add(a, b *Grid) *Grid {
	out := NewGrid(a.Rows, a.Cols)
	floats.AddTo(out.Data, a.Data, b.Data)
	return out
}

func sub(a, b *Grid) *Grid {
	out := NewGrid(a.Rows, a.Cols)
	floats.SubTo(out.Data, a.Data, b.Data)
	return out
}

// 计算指数，中间结果缓存在cache中；原始波段经lookup按需取用
type indexCalc struct {
	lookup func(name string) (*Grid, error)
	cache  map[string]*Grid
}

func (c *indexCalc) band(name string) (*Grid, error) {
	g, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrMissingBand
	}
	return g, nil
}

func (c *indexCalc) bandPair(n1, n2 string) (a, b *Grid, err error) {
	if a, err = c.band(n1); err != nil {
		return
	}
	if b, err = c.band(n2); err != nil {
		return
	}
	if !a.SameShape(b) {
		err = ErrShapeMismatch
	}
	return
}

// (a-b)/(a+b)
func (c *indexCalc) normalizedDiff(n1, n2 string) (*Grid, error) {
	a, b, err := c.bandPair(n1, n2)
	if err != nil {
		return nil, err
	}
	return CalculateIndex(sub(a, b), add(a, b))
}

func (c *indexCalc) get(name string) (ret *Grid, err error) {
	if g, ok := c.cache[name]; ok {
		return g, nil
	}
	switch name {
	case Blue, Green, Red, Nir, Swir:
		ret, err = c.band(name)
	case PI:
		var nir, red *Grid
		if nir, red, err = c.bandPair(Nir, Red); err != nil {
			return
		}
		ret, err = CalculateIndex(nir, add(nir, red))
	case NDWI:
		ret, err = c.normalizedDiff(Green, Nir)
	case NDVI:
		ret, err = c.normalizedDiff(Nir, Red)
	case RNDVI:
		ret, err = c.normalizedDiff(Red, Nir)
	case SR:
		var nir, red *Grid
		if nir, red, err = c.bandPair(Nir, Red); err != nil {
			return
		}
		ret, err = CalculateIndex(nir, red)
	case APWI:
		ret, err = c.apwi()
	case MNDBI:
		ret, err = c.normalizedDiff(Swir, Nir)
	case API:
		ret, err = c.api()
	default:
		err = ErrUnknownIndex
	}
	if err == nil {
		c.cache[name] = ret
	}
	return
}

// BLUE / (1 - (RED+GREEN+NIR)/3)
func (c *indexCalc) apwi() (ret *Grid, err error) {
	var blue, red, green, nir *Grid
	if blue, red, err = c.bandPair(Blue, Red); err != nil {
		return
	}
	if green, nir, err = c.bandPair(Green, Nir); err != nil {
		return
	}
	if !blue.SameShape(green) {
		err = ErrShapeMismatch
		return
	}
	den := NewGrid(blue.Rows, blue.Cols)
	for i := range den.Data {
		den.Data[i] = 1 - (red.Data[i]+green.Data[i]+nir.Data[i])/3
	}
	return CalculateIndex(blue, den)
}

// PI，减去为正的NDVI，再减去为正的MNDBI
func (c *indexCalc) api() (ret *Grid, err error) {
	var pi, ndvi, mndbi *Grid
	if pi, err = c.get(PI); err != nil {
		return
	}
	if ndvi, err = c.get(NDVI); err != nil {
		return
	}
	if mndbi, err = c.get(MNDBI); err != nil {
		return
	}
	ret = pi.Clone()
	for i := range ret.Data {
		if ndvi.Data[i] > 0 {
			ret.Data[i] -= ndvi.Data[i]
		}
		if mndbi.Data[i] > 0 {
			ret.Data[i] -= mndbi.Data[i]
		}
	}
	return
}

// 按请求顺序计算波段/指数
func CalculateIndices(names []string, bands BandSet) (ret []*Grid, err error) {
	if _, _, err = bands.Shape(); err != nil {
		return
	}
	calc := &indexCalc{
		lookup: func(name string) (*Grid, error) {
			g, ok := bands[name]
			if !ok {
				return nil, ErrMissingBand
			}
			return g, nil
		},
		cache: map[string]*Grid{},
	}
	return calc.run(names)
}

// 直接从多波段影像计算，波段按映射按需读取
func CalculateRasterIndices(names []string, r *Raster, m BandMapping) ([]*Grid, error) {
	if r.BandCount() == 0 {
		return nil, ErrEmptyRaster
	}
	calc := &indexCalc{
		lookup: func(name string) (*Grid, error) { return r.Band(m, name) },
		cache:  map[string]*Grid{},
	}
	return calc.run(names)
}

func (c *indexCalc) run(names []string) (ret []*Grid, err error) {
	ret = make([]*Grid, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(name)
		var g *Grid
		if g, err = c.get(name); err != nil {
			ret = nil
			return
		}
		if IsBand(name) {
			g = g.Clone()
		}
		ret = append(ret, g)
	}
	return
}

// 计算单个指数
func CalculateNamedIndex(name string, bands BandSet) (*Grid, error) {
	ret, err := CalculateIndices([]string{name}, bands)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}
