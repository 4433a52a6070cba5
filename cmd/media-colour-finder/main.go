package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mediacolourfinder "github.com/jemayn/Our.Community.MediaColourFinder"
	"github.com/jemayn/Our.Community.MediaColourFinder/internal/config"
	"github.com/jemayn/Our.Community.MediaColourFinder/internal/server"
	"github.com/jemayn/Our.Community.MediaColourFinder/internal/utils"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/extractor"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/focus"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/ollama"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/processing"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/sampler"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

func main() {
	var in, outDir, regionStr, cfgPath, serveAddr string
	var model, url string
	var ext string
	var quality int
	var lossless bool
	var suggest, useModel, overlay bool

	flag.StringVar(&in, "in", "", "input image path, URL, or directory (jpg/png/gif/webp)")
	flag.StringVar(&outDir, "out", "", "output directory for overlay images (default from config)")
	flag.StringVar(&regionStr, "region", "", "focus region as x,y,w,h in pixels (default: full image)")
	flag.BoolVar(&suggest, "suggest", false, "suggest the focus region with the local saliency heuristic")
	flag.BoolVar(&useModel, "model-suggest", false, "suggest the focus region with a vision model")
	flag.StringVar(&model, "model", "", "vision model name (with -model-suggest)")
	flag.StringVar(&url, "url", "", "Ollama server URL (default http://localhost:11434)")
	flag.BoolVar(&overlay, "overlay", false, "write a debug overlay image next to the result")
	flag.StringVar(&ext, "ext", "", "overlay output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP overlay quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP overlay lossless mode")
	flag.StringVar(&cfgPath, "config", "", "path to a JSON config file")
	flag.StringVar(&serveAddr, "serve", "", "run the HTTP API on this address instead of processing files")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	applyOverrides(cfg, ext, quality, lossless, model, url, outDir)

	if serveAddr != "" {
		runServer(serveAddr, cfg)
		return
	}

	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL|dir [-region x,y,w,h] [-suggest] [-overlay] [-serve :8080]",
			filepath.Base(os.Args[0]))
	}

	finder := mediacolourfinder.NewWithConfig(
		sampler.Config{
			SampleWidth:  cfg.Sampler.SampleWidth,
			SampleHeight: cfg.Sampler.SampleHeight,
		},
		focus.Config{
			AnalysisSize:     cfg.Focus.AnalysisSize,
			WindowRatio:      cfg.Focus.WindowRatio,
			ContrastWeight:   cfg.Focus.ContrastWeight,
			BrightnessWeight: cfg.Focus.BrightnessWeight,
		},
	)

	inputs, err := collectInputs(in)
	if err != nil {
		log.Fatal(err)
	}

	if overlay {
		if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
			log.Fatal(err)
		}
	}

	for _, source := range inputs {
		if err := processOne(finder, cfg, source, regionStr, suggest, useModel, overlay); err != nil {
			log.Fatalf("%s: %v", source, err)
		}
	}
}

// applyOverrides layers explicitly set flag values over the loaded
// config. Zero-valued flags leave the config untouched.
func applyOverrides(cfg *config.Config, ext string, quality int, lossless bool, model, url, outDir string) {
	if ext != "" {
		cfg.Output.Format = ext
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	cfg.Output.Lossless = cfg.Output.Lossless || lossless
	if model != "" {
		cfg.Model.Model = model
	}
	if url != "" {
		cfg.Model.URL = url
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
}

// collectInputs expands a directory argument into its image files.
func collectInputs(in string) ([]string, error) {
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return []string{in}, nil
	}
	if utils.DirExists(in) {
		files, err := utils.ListImageFiles(in)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no image files found in %s", in)
		}
		return files, nil
	}
	if !utils.FileExists(in) {
		return nil, fmt.Errorf("input file %s does not exist", in)
	}
	return []string{in}, nil
}

func processOne(finder *mediacolourfinder.ColourFinder, cfg *config.Config, source, regionStr string, suggest, useModel, overlay bool) error {
	img, err := finder.LoadImageSmart(source)
	if err != nil {
		return err
	}

	region := extractor.FullRegion(img)
	switch {
	case regionStr != "":
		region, err = parseRegion(regionStr)
		if err != nil {
			return err
		}
	case useModel:
		c, err := ollama.NewClient(cfg.Model.URL)
		if err != nil {
			return err
		}
		region, err = finder.SuggestRegionWithModel(context.Background(), c, focus.ModelConfig{
			Model:       cfg.Model.Model,
			SendFormat:  cfg.Model.SendFormat,
			SendMaxDim:  cfg.Model.SendMaxDim,
			SendQuality: cfg.Model.SendQuality,
		}, img)
		if err != nil {
			return err
		}
	case suggest:
		region = finder.SuggestRegion(img)
	}

	result, err := finder.ExtractFromImage(img, region)
	if err != nil {
		return err
	}

	out := struct {
		Source string             `json:"source"`
		Region types.FocusRegion  `json:"region"`
		Result types.ColourResult `json:"result"`
	}{Source: source, Region: region, Result: result}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if overlay {
		overlayImg, err := finder.RenderOverlay(img, region, result)
		if err != nil {
			return err
		}
		path := utils.GenerateOutputFilename(source, cfg.Output.Dir, "_colours", cfg.Output.Format)
		if err := finder.SaveImage(overlayImg, path, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
			return err
		}
		log.Printf("overlay written to %s", path)
	}

	return nil
}

func parseRegion(s string) (types.FocusRegion, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return types.FocusRegion{}, fmt.Errorf("invalid region %q, want x,y,w,h", s)
	}

	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return types.FocusRegion{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		values[i] = v
	}

	return types.FocusRegion{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}

func runServer(addr string, cfg *config.Config) {
	svc := extractor.NewWithSampler(sampler.NewWithConfig(sampler.Config{
		SampleWidth:  cfg.Sampler.SampleWidth,
		SampleHeight: cfg.Sampler.SampleHeight,
	}))
	srv := server.New(processing.NewProcessor(), svc)

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatal(err)
	}
}
