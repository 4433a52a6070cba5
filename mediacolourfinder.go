// Package mediacolourfinder extracts representative colour metadata from a
// region of an image: the average colour, the brightest pixel colour, the
// inverse of the average, and a readable text colour chosen for contrast
// against the average.
//
// It targets focal-point cropping workflows where a caller supplies a
// source image plus a rectangular region of interest, e.g. picking an
// overlay text colour for a thumbnail.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		mediacolourfinder "github.com/jemayn/Our.Community.MediaColourFinder"
//		"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
//	)
//
//	func main() {
//		finder := mediacolourfinder.New()
//
//		img, err := finder.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := finder.ExtractFromImage(img, types.FocusRegion{X: 100, Y: 50, Width: 400, Height: 300})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("average %s, text colour %s\n", result.Average, result.TextColour)
//	}
//
// The package consists of four main components:
//
//  1. Colour (pkg/colour): pure colour arithmetic
//  2. Sampler (pkg/sampler): region cropping and downsampling
//  3. Extractor (pkg/extractor): the colour extraction service
//  4. Focus (pkg/focus): focal region suggestion for images without a
//     stored focal point, either via a local saliency heuristic or a
//     vision model
//
// The extraction pipeline crops the focus region, reduces it to a small
// fixed-size pixel grid, and runs the colour arithmetic on that grid.
// Every operation is a pure function over its inputs; a finder can be
// shared freely between goroutines.
package mediacolourfinder

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/client"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/extractor"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/focus"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/processing"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/sampler"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// Version of the media colour finder library
const Version = "1.0.0"

// ColourFinder provides a high-level interface for extracting
// representative colours from media.
type ColourFinder struct {
	processor *processing.Processor
	service   *extractor.Service
	suggester *focus.Suggester
}

// New creates a ColourFinder with default configuration.
func New() *ColourFinder {
	return &ColourFinder{
		processor: processing.NewProcessor(),
		service:   extractor.New(),
		suggester: focus.New(),
	}
}

// NewWithConfig creates a ColourFinder with custom sampler and focus
// configuration.
func NewWithConfig(samplerConfig sampler.Config, focusConfig focus.Config) *ColourFinder {
	return &ColourFinder{
		processor: processing.NewProcessor(),
		service:   extractor.NewWithSampler(sampler.NewWithConfig(samplerConfig)),
		suggester: focus.NewWithConfig(focusConfig),
	}
}

// LoadImage loads an image from a file path. PNG, JPEG, GIF, and WebP are
// supported.
func (f *ColourFinder) LoadImage(path string) (image.Image, error) {
	return f.processor.LoadImage(path)
}

// LoadImageFromReader decodes an image from a stream.
func (f *ColourFinder) LoadImageFromReader(r io.Reader) (image.Image, error) {
	return f.processor.DecodeReader(r)
}

// LoadImageSmart loads an image from either a file path or an http(s) URL.
func (f *ColourFinder) LoadImageSmart(source string) (image.Image, error) {
	return f.processor.LoadImageSmart(source)
}

// ExtractFromImage extracts the representative colours of one focus
// region of a decoded image.
func (f *ColourFinder) ExtractFromImage(img image.Image, region types.FocusRegion) (types.ColourResult, error) {
	return f.service.ExtractOne(extractor.Input{Image: img, Region: region})
}

// ExtractFull extracts the representative colours of the whole image.
func (f *ColourFinder) ExtractFull(img image.Image) (types.ColourResult, error) {
	return f.ExtractFromImage(img, extractor.FullRegion(img))
}

// ExtractFromFile loads an image from a file and extracts the colours of
// the given region.
func (f *ColourFinder) ExtractFromFile(path string, region types.FocusRegion) (types.ColourResult, error) {
	img, err := f.LoadImage(path)
	if err != nil {
		return types.ColourResult{}, fmt.Errorf("failed to load image: %w", err)
	}
	return f.ExtractFromImage(img, region)
}

// ExtractMany extracts colours for several inputs, preserving input
// order. The batch is all-or-nothing: the first failure aborts it.
func (f *ColourFinder) ExtractMany(ins []extractor.Input) ([]types.ColourResult, error) {
	return f.service.ExtractMany(ins)
}

// SuggestRegion returns a focus region for an image without a stored
// focal point, using the local saliency heuristic.
func (f *ColourFinder) SuggestRegion(img image.Image) types.FocusRegion {
	return f.suggester.Suggest(img)
}

// SuggestRegionWithModel returns a focus region chosen by a vision model.
func (f *ColourFinder) SuggestRegionWithModel(ctx context.Context, c client.FocusClient, config focus.ModelConfig, img image.Image) (types.FocusRegion, error) {
	return focus.NewModelSuggester(c, config).Suggest(ctx, img)
}

// RenderOverlay produces a debug image showing the focus region and the
// extracted colours.
func (f *ColourFinder) RenderOverlay(img image.Image, region types.FocusRegion, result types.ColourResult) (*image.NRGBA, error) {
	return f.processor.RenderOverlay(img, region, result)
}

// SaveImage saves an image with the given format ("png", "jpg", "webp"),
// quality, and WebP lossless flag.
func (f *ColourFinder) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	return f.processor.SaveImage(img, path, format, quality, lossless)
}

// ProcessFile is a convenience that loads an image, extracts the colours
// of the given region (or the whole image when region is the zero value),
// and optionally writes a debug overlay next to the result.
func (f *ColourFinder) ProcessFile(path string, region types.FocusRegion, overlayPath, overlayFormat string, quality int) (types.ColourResult, error) {
	img, err := f.LoadImage(path)
	if err != nil {
		return types.ColourResult{}, fmt.Errorf("failed to load image: %w", err)
	}

	if region == (types.FocusRegion{}) {
		region = extractor.FullRegion(img)
	}

	result, err := f.ExtractFromImage(img, region)
	if err != nil {
		return types.ColourResult{}, err
	}

	if overlayPath != "" {
		overlay, err := f.RenderOverlay(img, region, result)
		if err != nil {
			return types.ColourResult{}, fmt.Errorf("failed to render overlay: %w", err)
		}
		if err := f.SaveImage(overlay, overlayPath, overlayFormat, quality, false); err != nil {
			return types.ColourResult{}, fmt.Errorf("failed to save overlay: %w", err)
		}
	}

	return result, nil
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
