package raster

import (
	"math"
	"reflect"
	"testing"
)

func fill3x3(f func(i, j int) float64) *Grid {
	g := NewGrid(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			g.Set(i, j, f(i, j))
		}
	}
	return g
}

func TestCalculateIndex(t *testing.T) {
	seq := func(i, j int) float64 { return float64(i + j + 1) }
	neg := func(i, j int) float64 { return -float64(i + j + 1) }
	zero := func(i, j int) float64 { return 0 }
	nan := func(i, j int) float64 { return math.NaN() }

	cases := []struct {
		name     string
		num, den func(i, j int) float64
		check    func(v float64) bool
	}{
		{"all nan", nan, nan, math.IsNaN},
		{"equal values", seq, seq, func(v float64) bool { return v == 1 }},
		{"negative over zero", neg, zero, func(v float64) bool { return v == -5 }},
		{"positive over zero", seq, zero, func(v float64) bool { return v == 5 }},
		{"zero over zero", zero, zero, math.IsNaN},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ret, err := CalculateIndex(fill3x3(c.num), fill3x3(c.den))
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range ret.Data {
				if !c.check(v) {
					t.Fatalf("cell %d: unexpected %v", i, v)
				}
			}
		})
	}
}

func TestCalculateIndexMixed(t *testing.T) {
	num, _ := NewGridFrom(1, 4, []float64{2, math.NaN(), 0, 6})
	den, _ := NewGridFrom(1, 4, []float64{4, 1, 0, 0})
	ret, err := CalculateIndex(num, den)
	if err != nil {
		t.Fatal(err)
	}
	if ret.Data[0] != 0.5 || !math.IsNaN(ret.Data[1]) || !math.IsNaN(ret.Data[2]) || ret.Data[3] != 6 {
		t.Fatalf("unexpected %v", ret.Data)
	}
	if _, err = CalculateIndex(num, NewGrid(2, 2)); err != ErrShapeMismatch {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestResolveBandsIndices(t *testing.T) {
	cases := map[string][]string{
		"all":          allList,
		"ALL":          allList,
		"all_no_blue":  allNoBlueList,
		"bands":        bandsList,
		"indices":      indicesList,
		"pi-nir-red":   {Red, Nir, PI},
		"ndvi-foo-sr":  {NDVI, SR},
		"api-mndbi-pi": {PI, MNDBI, API},
	}
	for token, want := range cases {
		if got := ResolveBandsIndices(token); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %v, want %v", token, got, want)
		}
	}
	if got := ResolveBandsIndices("foo"); len(got) != 0 {
		t.Errorf("unexpected %v", got)
	}
}

func testBands(rows, cols int, blue, green, red, nir, swir float64) BandSet {
	mk := func(v float64) *Grid {
		g := NewGrid(rows, cols)
		g.Fill(v)
		return g
	}
	return BandSet{Blue: mk(blue), Green: mk(green), Red: mk(red), Nir: mk(nir), Swir: mk(swir)}
}

func TestCalculateIndices(t *testing.T) {
	bs := testBands(2, 2, 0.1, 0.2, 0.2, 0.6, 0.9)
	ret, err := CalculateIndices([]string{"pi", "NDVI", "red", "sr", "mndbi", "api"}, bs)
	if err != nil {
		t.Fatal(err)
	}
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	pi, ndvi, mndbi := 0.75, 0.5, 0.2
	want := []float64{pi, ndvi, 0.2, 3, mndbi, pi - ndvi - mndbi}
	for k, g := range ret {
		for _, v := range g.Data {
			if !near(v, want[k]) {
				t.Fatalf("output %d: got %v, want %v", k, v, want[k])
			}
		}
	}
	ret[2].Data[0] = 42
	if bs[Red].Data[0] != 0.2 {
		t.Fatal("band output aliases input")
	}
}

func TestCalculateIndicesAPIKeepsNegativeTerms(t *testing.T) {
	// ndvi < 0 且 mndbi < 0 时 api == pi
	bs := testBands(1, 2, 0.1, 0.2, 0.6, 0.2, 0.1)
	ret, err := CalculateIndices([]string{PI, API}, bs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ret[0].Data, ret[1].Data) {
		t.Fatalf("api %v != pi %v", ret[1].Data, ret[0].Data)
	}
}

func TestCalculateIndicesMissingBand(t *testing.T) {
	bs := testBands(1, 1, 0.1, 0.2, 0.3, 0.4, 0.5)
	delete(bs, Swir)
	if _, err := CalculateIndices([]string{MNDBI}, bs); err != ErrMissingBand {
		t.Fatalf("expected missing band, got %v", err)
	}
	if _, err := CalculateIndices([]string{"evi"}, bs); err != ErrUnknownIndex {
		t.Fatalf("expected unknown index, got %v", err)
	}
}

func TestRasterBand(t *testing.T) {
	r, err := NewRaster(GeoTransform{0, 1, 0, 0, 0, -1}, "", NewGrid(2, 2), NewGrid(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	m := BandMapping{Blue: 1, Green: 2, Nir: 4}
	if g, err := r.Band(m, Green); err != nil || g != r.Bands[1] {
		t.Fatalf("green: %v", err)
	}
	if _, err = r.Band(m, Nir); err != ErrNotEnoughBands {
		t.Fatalf("expected not enough bands, got %v", err)
	}
	if _, err = r.Band(m, Red); err != ErrMissingBand {
		t.Fatalf("expected missing band, got %v", err)
	}
	if _, err = NewRaster(GeoTransform{}, "", NewGrid(2, 2), NewGrid(3, 2)); err != ErrShapeMismatch {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

// 四波段影像配上含swir的映射：只要请求的指数不用swir就能计算
func TestCalculateRasterIndicesOptionalBand(t *testing.T) {
	bs := testBands(2, 2, 0.1, 0.2, 0.2, 0.6, 0)
	r, err := NewRaster(GeoTransform{0, 1, 0, 0, 0, -1}, "", bs[Blue], bs[Green], bs[Red], bs[Nir])
	if err != nil {
		t.Fatal(err)
	}
	m := BandMapping{Blue: 1, Green: 2, Red: 3, Nir: 4, Swir: 5}
	ret, err := CalculateRasterIndices(ResolveBandsIndices("all"), r, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 10 {
		t.Fatalf("want 10 outputs, got %d", len(ret))
	}
	if v := ret[4].Data[0]; math.Abs(v-0.75) > 1e-9 {
		t.Fatalf("pi: %v", v)
	}
	diff, _, err := Difference(r, r, PI, m)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range diff.Data {
		if v != 0 {
			t.Fatalf("self difference: %v", diff.Data)
		}
	}
	if _, err = CalculateRasterIndices([]string{MNDBI}, r, m); err != ErrNotEnoughBands {
		t.Fatalf("expected not enough bands for swir, got %v", err)
	}
}
