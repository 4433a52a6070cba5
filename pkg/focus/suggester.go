// Package focus suggests a focus region for images that have no stored
// focal point. Two strategies are provided: a local saliency heuristic and
// a vision-model backed suggester.
package focus

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// Suggester finds the most visually interesting region of an image using
// a local saliency heuristic: neighbour colour differences combined with
// brightness, scored over a sliding window.
type Suggester struct {
	config Config
}

// Config holds configuration for the saliency suggester.
type Config struct {
	// AnalysisSize bounds the long side of the image the saliency pass
	// runs on. Larger is slower and rarely better.
	AnalysisSize int
	// WindowRatio is the suggested region size as a share of the smaller
	// image dimension, in (0,1].
	WindowRatio float64
	// ContrastWeight and BrightnessWeight balance edge strength against
	// plain brightness when scoring pixels.
	ContrastWeight   float64
	BrightnessWeight float64
}

// New creates a Suggester with default configuration.
func New() *Suggester {
	return &Suggester{
		config: Config{
			AnalysisSize:     256,
			WindowRatio:      0.5,
			ContrastWeight:   0.7,
			BrightnessWeight: 0.3,
		},
	}
}

// NewWithConfig creates a Suggester with custom configuration. Out-of-range
// values fall back to defaults.
func NewWithConfig(config Config) *Suggester {
	def := New().config
	if config.AnalysisSize <= 0 {
		config.AnalysisSize = def.AnalysisSize
	}
	if config.WindowRatio <= 0 || config.WindowRatio > 1 {
		config.WindowRatio = def.WindowRatio
	}
	if config.ContrastWeight <= 0 {
		config.ContrastWeight = def.ContrastWeight
	}
	if config.BrightnessWeight < 0 {
		config.BrightnessWeight = def.BrightnessWeight
	}
	return &Suggester{config: config}
}

// Suggest returns the focus region whose saliency score is highest. The
// region is always a valid rectangle within the image bounds.
func (s *Suggester) Suggest(img image.Image) types.FocusRegion {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return types.FocusRegion{}
	}

	// Run the saliency pass on a bounded copy to keep cost independent of
	// the source resolution.
	work := img
	scale := 1.0
	if long := max(srcW, srcH); long > s.config.AnalysisSize {
		if srcW >= srcH {
			work = imaging.Resize(img, s.config.AnalysisSize, 0, imaging.Lanczos)
		} else {
			work = imaging.Resize(img, 0, s.config.AnalysisSize, imaging.Lanczos)
		}
		scale = float64(srcW) / float64(work.Bounds().Dx())
	}

	saliency := s.saliencyMap(work)
	wb := work.Bounds()
	w, h := wb.Dx(), wb.Dy()

	window := int(s.config.WindowRatio * float64(min(w, h)))
	if window < 1 {
		window = 1
	}

	bestX, bestY := (w-window)/2, (h-window)/2
	bestScore := math.Inf(-1)
	step := max(1, window/8)
	for y := 0; y+window <= h; y += step {
		for x := 0; x+window <= w; x += step {
			score := windowScore(saliency, x, y, window)
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	// Map back to source pixels.
	region := types.FocusRegion{
		X:      int(float64(bestX) * scale),
		Y:      int(float64(bestY) * scale),
		Width:  int(float64(window) * scale),
		Height: int(float64(window) * scale),
	}
	return clampRegion(region, srcW, srcH)
}

// saliencyMap scores each pixel by its colour difference to the four
// direct neighbours, blended with its brightness.
func (s *Suggester) saliencyMap(img image.Image) [][]float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	saliency := make([][]float64, h)
	for i := range saliency {
		saliency[i] = make([]float64, w)
	}

	neighbours := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			r1, g1, b1, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			var edge float64
			for _, off := range neighbours {
				r2, g2, b2, _ := img.At(x+off[0]+bounds.Min.X, y+off[1]+bounds.Min.Y).RGBA()
				dr := float64(r1) - float64(r2)
				dg := float64(g1) - float64(g2)
				db := float64(b1) - float64(b2)
				edge += math.Sqrt(dr*dr + dg*dg + db*db)
			}
			edge /= 4.0 * 65535.0

			bright := (float64(r1) + float64(g1) + float64(b1)) / (3.0 * 65535.0)
			saliency[y][x] = s.config.ContrastWeight*edge + s.config.BrightnessWeight*bright
		}
	}

	return saliency
}

func windowScore(saliency [][]float64, x, y, window int) float64 {
	var total float64
	for wy := y; wy < y+window; wy++ {
		for wx := x; wx < x+window; wx++ {
			total += saliency[wy][wx]
		}
	}
	return total / float64(window*window)
}

func clampRegion(r types.FocusRegion, w, h int) types.FocusRegion {
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	if r.Width > w {
		r.Width = w
	}
	if r.Height > h {
		r.Height = h
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > w {
		r.X = w - r.Width
	}
	if r.Y+r.Height > h {
		r.Y = h - r.Height
	}
	return r
}
