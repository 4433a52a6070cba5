// Package sampler reduces a region of a source image to a small fixed-size
// pixel grid suitable for colour analysis.
package sampler

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// ErrRegionOutOfBounds is returned when a focus region does not lie fully
// within the source image.
var ErrRegionOutOfBounds = errors.New("focus region out of bounds")

// DefaultSampleSize is the side length of the sample grid the colour
// analysis runs on.
const DefaultSampleSize = 16

// Sampler crops a focus region out of a source image and downsamples it to
// a small grid. It holds no per-call state and is safe for concurrent use.
type Sampler struct {
	config Config
}

// Config holds configuration for the sampler.
type Config struct {
	// SampleWidth and SampleHeight are the dimensions of the produced grid.
	SampleWidth  int
	SampleHeight int
	// Filter is the resampling filter used when reducing the cropped
	// region. The box filter approximates area-weighted colour averaging,
	// which is what the downstream analysis wants.
	Filter imaging.ResampleFilter
}

// New creates a Sampler producing the default 16x16 grid with a box filter.
func New() *Sampler {
	return &Sampler{
		config: Config{
			SampleWidth:  DefaultSampleSize,
			SampleHeight: DefaultSampleSize,
			Filter:       imaging.Box,
		},
	}
}

// NewWithConfig creates a Sampler with custom configuration. Non-positive
// dimensions fall back to the default sample size.
func NewWithConfig(config Config) *Sampler {
	if config.SampleWidth <= 0 {
		config.SampleWidth = DefaultSampleSize
	}
	if config.SampleHeight <= 0 {
		config.SampleHeight = DefaultSampleSize
	}
	if config.Filter.Kernel == nil {
		config.Filter = imaging.Box
	}
	return &Sampler{config: config}
}

// CropAndResample crops the source image to the focus region and reduces
// the result to the configured sample grid. The source image is never
// mutated; a new grid is returned per call.
//
// Returns ErrRegionOutOfBounds if the region has non-positive dimensions
// or extends past the source image.
func (s *Sampler) CropAndResample(img image.Image, region types.FocusRegion) (*image.NRGBA, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if region.Width <= 0 || region.Height <= 0 ||
		region.X < 0 || region.Y < 0 ||
		region.X+region.Width > width || region.Y+region.Height > height {
		return nil, fmt.Errorf("%w: region (%d,%d %dx%d) does not fit image %dx%d",
			ErrRegionOutOfBounds, region.X, region.Y, region.Width, region.Height, width, height)
	}

	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height).
		Add(bounds.Min)
	cropped := imaging.Crop(img, rect)

	return imaging.Resize(cropped, s.config.SampleWidth, s.config.SampleHeight, s.config.Filter), nil
}
