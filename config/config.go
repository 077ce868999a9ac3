// Package config 加载、保存并校验 wastemap 的 YAML 配置
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wgdzlh/wastemap/raster"
)

const (
	PlanetScope = "PlanetScope"
	Sentinel2   = "Sentinel-2"

	EnvConfigPath = "WASTEMAP_CONFIG"
	EnvLogLevel   = "WASTEMAP_LOG_LEVEL"

	DefaultPath = "wastemap.yaml"
)

var (
	ErrUnknownSatellite     = errors.New("unknown satellite type")
	ErrInvalidThresholds    = errors.New("heatmap thresholds must be strictly ascending within (0,100]")
	ErrInvalidClassIDs      = errors.New("garbage and water class ids must be positive and distinct")
	ErrInvalidMorphology    = errors.New("morphology kernel size must be >= 1 and iterations >= 0")
	ErrInvalidSections      = errors.New("washed-up heatmap sections must be at least 4")
	ErrInvalidTilingLimits  = errors.New("tiling limits must be positive")
	ErrInvalidPixelSize     = errors.New("ground sample distance must be positive")
	ErrInvalidRegionsSRID   = errors.New("regions srid must not be negative")
	ErrIncompleteBandLayout = errors.New("band mapping needs blue, green, red and nir")
)

// 卫星传感器参数
type Sensor struct {
	// 波段标签 -> 波段序号（从1开始）
	Bands raster.BandMapping `yaml:"bands"`
	// 地面分辨率（米）
	PixelSize float64 `yaml:"pixelSize"`
}

type Config struct {
	SatelliteType string            `yaml:"satelliteType"`
	Sensors       map[string]Sensor `yaml:"sensors"`

	Classes struct {
		Garbage int `yaml:"garbage"`
		Water   int `yaml:"water"`
	} `yaml:"classes"`

	Morphology struct {
		KernelSize int `yaml:"kernelSize"`
		Iterations int `yaml:"iterations"`
	} `yaml:"morphology"`

	// 百分比
	Heatmap struct {
		Low    float64 `yaml:"low"`
		Medium float64 `yaml:"medium"`
		High   float64 `yaml:"high"`
	} `yaml:"heatmap"`

	WashedUpSections int `yaml:"washedUpSections"`

	Tiling struct {
		MaxClassCount      int `yaml:"maxClassCount"`
		MaxClassValueCount int `yaml:"maxClassValueCount"`
	} `yaml:"tiling"`

	Classifier struct {
		Path       string `yaml:"path"`
		Neighbours int    `yaml:"neighbours"`
		Bands      string `yaml:"bands"` // 分类特征，如 all_no_blue
	} `yaml:"classifier"`

	Output struct {
		WorkingDir       string   `yaml:"workingDir"`
		FileExtension    string   `yaml:"fileExtension"`
		Postfix          Postfix  `yaml:"postfix"`
		Shapefile        bool     `yaml:"shapefile"`
		KeepIntermediate bool     `yaml:"keepIntermediate"` // 否则指数、原始分类图与热力图写入临时目录，结束后删除
		HeatmapLevels    []string `yaml:"heatmapLevels"`    // 浮游垃圾流程输出的热力图等级
		RegionsSRID      int      `yaml:"regionsSrid"`      // 区域外框GeoJSON的目标坐标系，0为沿用影像坐标系
	} `yaml:"output"`

	// 估算历史的观察窗口（期数）
	ObservationSpan int `yaml:"observationSpan"`

	LogLevel string `yaml:"logLevel"`
}

type Postfix struct {
	Indices          string `yaml:"indices"`
	Classified       string `yaml:"classified"`
	Heatmap          string `yaml:"heatmap"`
	MaskedClassified string `yaml:"maskedClassified"`
	MaskedHeatmap    string `yaml:"maskedHeatmap"`
	WashedUpBefore   string `yaml:"washedUpBefore"`
	WashedUpAfter    string `yaml:"washedUpAfter"`
	Regions          string `yaml:"regions"`
	Dissolved        string `yaml:"dissolved"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SatelliteType = PlanetScope
	cfg.Sensors = map[string]Sensor{
		PlanetScope: {
			Bands:     raster.BandMapping{raster.Blue: 1, raster.Green: 2, raster.Red: 3, raster.Nir: 4},
			PixelSize: 3,
		},
		// B02/B03/B04/B08四波段产品；含B11的影像可在配置中补充swir
		Sentinel2: {
			Bands:     raster.BandMapping{raster.Blue: 1, raster.Green: 2, raster.Red: 3, raster.Nir: 4},
			PixelSize: 10,
		},
	}

	cfg.Classes.Garbage = 1
	cfg.Classes.Water = 2

	cfg.Morphology.KernelSize = 3
	cfg.Morphology.Iterations = 1

	cfg.Heatmap.Low = 50
	cfg.Heatmap.Medium = 70
	cfg.Heatmap.High = 90

	cfg.WashedUpSections = 10

	cfg.Tiling.MaxClassCount = 10
	cfg.Tiling.MaxClassValueCount = 50_000_000

	cfg.Classifier.Path = "model/prototypes.json"
	cfg.Classifier.Neighbours = 5
	cfg.Classifier.Bands = "all"

	cfg.Output.WorkingDir = "output"
	cfg.Output.FileExtension = "tif"
	cfg.Output.Postfix = Postfix{
		Indices:          "_indices",
		Classified:       "_classified",
		Heatmap:          "_heatmap",
		MaskedClassified: "_masked_classified",
		MaskedHeatmap:    "_masked_heatmap",
		WashedUpBefore:   "_washed_up_before",
		WashedUpAfter:    "_washed_up_after",
		Regions:          "_regions",
		Dissolved:        "_dissolved",
	}
	cfg.Output.HeatmapLevels = []string{raster.LevelLow, raster.LevelMedium, raster.LevelHigh}
	cfg.Output.KeepIntermediate = true

	cfg.ObservationSpan = 5
	cfg.LogLevel = "info"
	return cfg
}

// 加载配置，文件不存在时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 路径为空时依次尝试环境变量 WASTEMAP_CONFIG 与默认路径
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath == "" {
		configPath = DefaultPath
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// 当前卫星类型的传感器参数，名称不区分大小写
func (c *Config) Sensor() (Sensor, error) {
	for name, s := range c.Sensors {
		if strings.EqualFold(name, c.SatelliteType) {
			return s, nil
		}
	}
	return Sensor{}, fmt.Errorf("%w: %s", ErrUnknownSatellite, c.SatelliteType)
}

// 阈值转为0~1的小数
func (c *Config) Thresholds() raster.Thresholds {
	return raster.Thresholds{
		Low:    c.Heatmap.Low / 100,
		Medium: c.Heatmap.Medium / 100,
		High:   c.Heatmap.High / 100,
	}
}

func (c *Config) ClassifyOptions() raster.ClassifyOptions {
	return raster.ClassifyOptions{
		GarbageID:          c.Classes.Garbage,
		Thresholds:         c.Thresholds(),
		MaxClassCount:      c.Tiling.MaxClassCount,
		MaxClassValueCount: c.Tiling.MaxClassValueCount,
	}
}

func (c *Config) Validate() error {
	s, err := c.Sensor()
	if err != nil {
		return err
	}
	for _, b := range []string{raster.Blue, raster.Green, raster.Red, raster.Nir} {
		if s.Bands[b] < 1 {
			return fmt.Errorf("%w: %s", ErrIncompleteBandLayout, c.SatelliteType)
		}
	}
	if s.PixelSize <= 0 {
		return ErrInvalidPixelSize
	}
	h := c.Heatmap
	if !(0 < h.Low && h.Low < h.Medium && h.Medium < h.High && h.High <= 100) {
		return ErrInvalidThresholds
	}
	if c.Classes.Garbage <= 0 || c.Classes.Water <= 0 || c.Classes.Garbage == c.Classes.Water {
		return ErrInvalidClassIDs
	}
	if c.Morphology.KernelSize < 1 || c.Morphology.Iterations < 0 {
		return ErrInvalidMorphology
	}
	if c.WashedUpSections < 4 {
		return ErrInvalidSections
	}
	if c.Tiling.MaxClassCount <= 0 || c.Tiling.MaxClassValueCount <= 0 {
		return ErrInvalidTilingLimits
	}
	if c.Output.RegionsSRID < 0 {
		return ErrInvalidRegionsSRID
	}
	for _, l := range c.Output.HeatmapLevels {
		if _, err := raster.LevelValue(l); err != nil {
			return err
		}
	}
	return nil
}
