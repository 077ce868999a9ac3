package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/wastemap/raster"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	s, err := cfg.Sensor()
	if err != nil || s.PixelSize != 3 || s.Bands[raster.Nir] != 4 {
		t.Fatalf("unexpected sensor %+v %v", s, err)
	}
	th := cfg.Thresholds()
	if th.Low != 0.5 || th.Medium != 0.7 || th.High != 0.9 {
		t.Fatalf("thresholds %+v", th)
	}
}

// 默认Sentinel-2映射对应四波段产品，可直接计算全部常用指数
func TestSentinel2DefaultFitsFourBandProduct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SatelliteType = Sentinel2
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	s, err := cfg.Sensor()
	if err != nil {
		t.Fatal(err)
	}
	if s.PixelSize != 10 {
		t.Fatalf("pixel size %v", s.PixelSize)
	}
	bands := make([]*raster.Grid, 4)
	for i := range bands {
		bands[i] = raster.NewGrid(2, 2)
		bands[i].Fill(0.1 * float64(i+1))
	}
	r, err := raster.NewRaster(raster.GeoTransform{0, 10, 0, 0, 0, -10}, "", bands...)
	if err != nil {
		t.Fatal(err)
	}
	for idx, label := range []string{raster.Blue, raster.Green, raster.Red, raster.Nir} {
		if s.Bands[label] != idx+1 {
			t.Fatalf("%s mapped to %d", label, s.Bands[label])
		}
	}
	if _, err = raster.CalculateRasterIndices(raster.ResolveBandsIndices(cfg.Classifier.Bands), r, s.Bands); err != nil {
		t.Fatalf("indices on four-band product: %v", err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SatelliteType != PlanetScope {
		t.Fatalf("satellite %s", cfg.SatelliteType)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "wastemap.yaml")
	cfg := DefaultConfig()
	cfg.SatelliteType = "sentinel-2"
	cfg.Morphology.KernelSize = 5
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "debug")
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := got.Sensor()
	if err != nil || s.PixelSize != 10 {
		t.Fatalf("sensor %+v %v", s, err)
	}
	if got.Morphology.KernelSize != 5 || got.LogLevel != "debug" {
		t.Fatalf("loaded %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("heatmap:\n  low: 40\n  medium: 60\n  high: 80\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Heatmap.Low != 40 || cfg.Classes.Garbage != 1 || cfg.WashedUpSections != 10 {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"unknown satellite", func(c *Config) { c.SatelliteType = "Landsat" }, ErrUnknownSatellite},
		{"thresholds not ascending", func(c *Config) { c.Heatmap.Medium = 95 }, ErrInvalidThresholds},
		{"threshold above 100", func(c *Config) { c.Heatmap.High = 120 }, ErrInvalidThresholds},
		{"same class ids", func(c *Config) { c.Classes.Water = 1 }, ErrInvalidClassIDs},
		{"zero kernel", func(c *Config) { c.Morphology.KernelSize = 0 }, ErrInvalidMorphology},
		{"few sections", func(c *Config) { c.WashedUpSections = 3 }, ErrInvalidSections},
		{"zero tiling", func(c *Config) { c.Tiling.MaxClassValueCount = 0 }, ErrInvalidTilingLimits},
		{"negative srid", func(c *Config) { c.Output.RegionsSRID = -1 }, ErrInvalidRegionsSRID},
		{"bad level", func(c *Config) { c.Output.HeatmapLevels = []string{"extreme"} }, raster.ErrInvalidLevel},
		{"missing nir", func(c *Config) {
			c.Sensors[PlanetScope] = Sensor{Bands: raster.BandMapping{raster.Blue: 1}, PixelSize: 3}
		}, ErrIncompleteBandLayout},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, c.want) {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}
