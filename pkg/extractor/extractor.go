// Package extractor composes the sampler and the colour arithmetic into
// the colour extraction service: one focus region in, one set of
// representative colours out.
package extractor

import (
	"fmt"
	"image"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/colour"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/sampler"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// Input pairs a decoded source image with the focus region to analyse.
type Input struct {
	Image  image.Image
	Region types.FocusRegion
}

// Service extracts representative colours from focus regions. It holds no
// per-call state and is safe for concurrent use.
type Service struct {
	sampler *sampler.Sampler
}

// New creates a Service with a default sampler.
func New() *Service {
	return &Service{sampler: sampler.New()}
}

// NewWithSampler creates a Service using a custom sampler, e.g. with a
// different sample grid size.
func NewWithSampler(s *sampler.Sampler) *Service {
	return &Service{sampler: s}
}

// ExtractOne computes the representative colours for a single input:
// the average colour of the sampled region, the brightest sampled pixel,
// the inverse of the average, and a readable text colour for the average.
// Sampler errors propagate unchanged.
func (s *Service) ExtractOne(in Input) (types.ColourResult, error) {
	grid, err := s.sampler.CropAndResample(in.Image, in.Region)
	if err != nil {
		return types.ColourResult{}, err
	}

	average := colour.Average(grid)

	return types.ColourResult{
		Average:    average.Hex(),
		Brightest:  colour.Brightest(grid).Hex(),
		Opposite:   colour.Invert(average).Hex(),
		TextColour: colour.ContrastText(average).Hex(),
	}, nil
}

// ExtractMany applies ExtractOne to each input independently, preserving
// input order. The batch is all-or-nothing: the first failure aborts and
// is returned, annotated with the failing index.
func (s *Service) ExtractMany(ins []Input) ([]types.ColourResult, error) {
	results := make([]types.ColourResult, 0, len(ins))

	for i, in := range ins {
		result, err := s.ExtractOne(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// FullRegion returns the focus region covering the whole image, for
// callers that have no stored focal point.
func FullRegion(img image.Image) types.FocusRegion {
	bounds := img.Bounds()
	return types.FocusRegion{Width: bounds.Dx(), Height: bounds.Dy()}
}
