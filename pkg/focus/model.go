package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/client"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/processing"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// DefaultPrompt asks a vision model for the focal point of an image.
const DefaultPrompt = `You are an image focal point locator.

Return JSON only:
{
  "label": "string",
  "confidence": 0.0,
  "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
  "cx": 0.0,
  "cy": 0.0
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box should tightly include the visually dominant subject (prefer
  people/vehicles/animals; else the most central salient object).
- cx and cy are the centre of that box.
- If no subject is found, return:
  {"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.50,"h":0.50},"cx":0.5,"cy":0.5}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ModelConfig holds configuration for the vision-model suggester.
type ModelConfig struct {
	// Model is the vision model name, e.g. "llava" or "minicpm-v".
	Model string
	// SendFormat is the encoding used for the image sent to the model
	// ("jpg" or "png").
	SendFormat string
	// SendMaxDim limits the long side of the sent image in pixels
	// (0 keeps the original size).
	SendMaxDim int
	// SendQuality is the JPEG quality for the sent image.
	SendQuality int
}

// DefaultModelConfig returns the configuration used when none is given.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:       "llava",
		SendFormat:  "jpg",
		SendMaxDim:  1536,
		SendQuality: 85,
	}
}

// ModelSuggester asks a vision model for the focal point of an image and
// converts the answer to a pixel focus region.
type ModelSuggester struct {
	client    client.FocusClient
	processor *processing.Processor
	config    ModelConfig
}

// NewModelSuggester creates a suggester backed by the given client.
func NewModelSuggester(c client.FocusClient, config ModelConfig) *ModelSuggester {
	def := DefaultModelConfig()
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.SendFormat == "" {
		config.SendFormat = def.SendFormat
	}
	if config.SendQuality <= 0 {
		config.SendQuality = def.SendQuality
	}
	return &ModelSuggester{
		client:    c,
		processor: processing.NewProcessor(),
		config:    config,
	}
}

// Suggest queries the model and returns the suggested focus region in
// source-image pixels. A response the model mangles beyond repair falls
// back to a centred region rather than failing.
func (m *ModelSuggester) Suggest(ctx context.Context, img image.Image) (types.FocusRegion, error) {
	imgB64, err := m.processor.PrepareImageForModel(img, m.config.SendFormat, m.config.SendMaxDim, m.config.SendQuality)
	if err != nil {
		return types.FocusRegion{}, fmt.Errorf("failed to encode image for model: %w", err)
	}

	raw, err := m.client.Query(ctx, m.config.Model, DefaultPrompt, imgB64)
	if err != nil {
		return types.FocusRegion{}, err
	}

	point := ParseFocalPoint(raw)
	return RegionFromFocalPoint(point, img), nil
}

// ParseFocalPoint parses a model response into a focal point. Responses
// that are not valid JSON yield a low-confidence centred fallback.
func ParseFocalPoint(raw string) types.FocalPoint {
	fallback := types.FocalPoint{
		Label:      "none",
		Confidence: 0,
		Box:        types.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
		Cx:         0.5,
		Cy:         0.5,
	}

	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return fallback
	}

	var point types.FocalPoint
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		return fallback
	}

	point.Box = clampBox(point.Box)
	point.Cx = clamp01(point.Cx)
	point.Cy = clamp01(point.Cy)
	if point.Box.W == 0 || point.Box.H == 0 {
		return fallback
	}
	return point
}

// RegionFromFocalPoint converts a normalized focal point to a pixel focus
// region within the image bounds.
func RegionFromFocalPoint(point types.FocalPoint, img image.Image) types.FocusRegion {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	region := types.FocusRegion{
		X:      int(point.Box.X*float64(w) + 0.5),
		Y:      int(point.Box.Y*float64(h) + 0.5),
		Width:  int(point.Box.W*float64(w) + 0.5),
		Height: int(point.Box.H*float64(h) + 0.5),
	}
	return clampRegion(region, w, h)
}

// sanitizeModelJSON removes code fences, comments, and trailing commas
// that vision models habitually wrap around their JSON.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

func clampBox(b types.Box) types.Box {
	b.X = clamp01(b.X)
	b.Y = clamp01(b.Y)
	b.W = clamp01(b.W)
	b.H = clamp01(b.H)
	if b.X+b.W > 1 {
		b.W = 1 - b.X
	}
	if b.Y+b.H > 1 {
		b.H = 1 - b.Y
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
