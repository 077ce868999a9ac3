package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wgdzlh/wastemap"
	"github.com/wgdzlh/wastemap/config"
	"github.com/wgdzlh/wastemap/log"
	"github.com/wgdzlh/wastemap/raster"
	"github.com/wgdzlh/wastemap/utils"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `usage: wastemap [-config path] <command> [flags]

commands:
  indices    save bands/indices of an image as a multi-band tif
  detect     floating waste detection (indices, classify, mask, geojson, area)
  washed-up  washed-up waste detection between two images
  area       estimate area from a classified or heatmap tif
  regions    write region bounding boxes of a single-band tif as geojson
  trend      compare the latest estimation against earlier ones
`

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config failed:", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	defer log.Sync()

	g := wastemap.NewGdalToolbox(cfg)
	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "indices":
		err = runIndices(g, args)
	case "detect":
		err = runDetect(g, args)
	case "washed-up":
		err = runWashedUp(g, args)
	case "area":
		err = runArea(g, args)
	case "regions":
		err = runRegions(g, args)
	case "trend":
		err = runTrend(g, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("wastemap: "+cmd+" failed", zap.Error(err))
		os.Exit(1)
	}
}

func runIndices(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("indices", flag.ExitOnError)
	input := fs.String("input", "", "input image")
	token := fs.String("bands", "all", "all, all_no_blue, bands, indices or dash-joined names like nir-red-pi")
	out := fs.String("output", "", "output tif (default derived from config)")
	fs.Parse(args)
	if *input == "" {
		fs.Usage()
		os.Exit(2)
	}
	ret, err := g.SaveBandsIndices(*input, *token, *out)
	if err == nil {
		fmt.Println(ret)
	}
	return
}

func runDetect(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: wastemap detect <image>...")
		os.Exit(2)
	}
	if err = g.LoadClassifier(); err != nil {
		return
	}
	var failed int
	for _, input := range fs.Args() {
		res, e := g.DetectFloatingWaste(input)
		if e != nil {
			// 单幅影像失败时跳过，继续处理其余影像
			failed++
			continue
		}
		fmt.Printf("%s\tarea=%.2f\t%s\n", input, res.Area, res.MaskedClassified)
	}
	if failed == fs.NArg() {
		err = fmt.Errorf("all %d images failed", failed)
	}
	return
}

func runWashedUp(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("washed-up", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: wastemap washed-up <image1> <image2>")
		os.Exit(2)
	}
	res, err := g.DetectWashedUp(fs.Arg(0), fs.Arg(1))
	if wastemap.IsAlignmentFailure(err) {
		fmt.Println("images can not be aligned, skipped:", err)
		return nil
	}
	if err == nil {
		fmt.Println(res.Before)
		fmt.Println(res.After)
	}
	return
}

func runArea(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("area", flag.ExitOnError)
	input := fs.String("input", "", "single-band classified or heatmap tif")
	mode := fs.String("mode", raster.AreaModeClassified, "classified or heatmap")
	class := fs.Int("class", 0, "target class id in classified mode (default garbage id)")
	levels := fs.String("levels", raster.LevelHigh, "comma separated heatmap levels: low,medium,high")
	fs.Parse(args)
	if *input == "" {
		fs.Usage()
		os.Exit(2)
	}
	area, err := g.EstimateArea(*input, raster.AreaQuery{
		Mode:    *mode,
		ClassID: *class,
		Levels:  utils.StrToLowerList(*levels, ","),
	})
	if err == nil {
		fmt.Printf("%.2f\n", area)
	}
	return
}

func runRegions(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	input := fs.String("input", "", "single-band tif")
	out := fs.String("output", "", "output geojson (default derived from config)")
	values := fs.String("values", "", "comma separated search values, e.g. 100,200")
	union := fs.Bool("union", false, "dissolve all pixels of the first search value into one feature")
	fs.Parse(args)
	searchValues := utils.StrToInt32s(*values, ",")
	if *input == "" || len(searchValues) == 0 {
		fs.Usage()
		os.Exit(2)
	}
	if *out == "" {
		cfg := g.Config()
		*out = utils.OutputPath([]string{*input}, cfg.Output.Postfix.Regions, wastemap.FILE_EXT_GEOJSON, cfg.Output.WorkingDir)
	}
	if *union {
		err = g.WriteDissolvedGeoJSON(*input, *out, searchValues[0])
	} else {
		_, err = g.WriteRegionsGeoJSON(*input, *out, searchValues)
	}
	if err == nil {
		fmt.Println(*out)
	}
	return
}

func runTrend(g *wastemap.GdalToolbox, args []string) (err error) {
	fs := flag.NewFlagSet("trend", flag.ExitOnError)
	input := fs.String("input", "", `json file: [{"date":"2023-05-01","area":120.5},...]`)
	feature := fs.String("feature", "", "name of the observed feature")
	fs.Parse(args)
	if *input == "" {
		fs.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		return
	}
	var es []wastemap.Estimation
	if err = json.Unmarshal(data, &es); err != nil {
		return
	}
	if percent, ok := g.AnalyzeEstimations(*feature, es); ok {
		fmt.Printf("%+.2f%%\n", percent)
	} else {
		fmt.Println("not enough data")
	}
	return
}
