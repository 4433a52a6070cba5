package mediacolourfinder

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/extractor"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/focus"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/sampler"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// uniformImage creates an image where every pixel has the same colour
func uniformImage(width, height int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	finder := New()
	if finder == nil {
		t.Fatal("New() returned nil")
	}
	if finder.processor == nil {
		t.Error("processor component is nil")
	}
	if finder.service == nil {
		t.Error("service component is nil")
	}
	if finder.suggester == nil {
		t.Error("suggester component is nil")
	}
}

func TestExtractFromImage(t *testing.T) {
	finder := New()
	img := uniformImage(64, 64, color.RGBA{30, 60, 90, 255})

	result, err := finder.ExtractFromImage(img, types.FocusRegion{X: 8, Y: 8, Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("ExtractFromImage failed: %v", err)
	}

	if result.Average != "#1E3C5A" {
		t.Errorf("Average = %s, want #1E3C5A", result.Average)
	}
	if result.Opposite != "#E1C3A5" {
		t.Errorf("Opposite = %s, want #E1C3A5", result.Opposite)
	}
	if result.TextColour != "#FFFFFF" {
		t.Errorf("TextColour = %s, want #FFFFFF", result.TextColour)
	}
}

func TestExtractFull(t *testing.T) {
	finder := New()
	img := uniformImage(20, 20, color.RGBA{250, 250, 250, 255})

	result, err := finder.ExtractFull(img)
	if err != nil {
		t.Fatalf("ExtractFull failed: %v", err)
	}
	if result.Average != "#FAFAFA" {
		t.Errorf("Average = %s, want #FAFAFA", result.Average)
	}
	// A near-white background needs black text.
	if result.TextColour != "#000000" {
		t.Errorf("TextColour = %s, want #000000", result.TextColour)
	}
}

func TestExtractFromFileRoundTrip(t *testing.T) {
	finder := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")

	img := uniformImage(16, 16, color.RGBA{0, 128, 255, 255})
	if err := finder.SaveImage(img, path, "png", 90, false); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	result, err := finder.ExtractFromFile(path, types.FocusRegion{X: 0, Y: 0, Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("ExtractFromFile failed: %v", err)
	}
	if result.Average != "#0080FF" {
		t.Errorf("Average = %s, want #0080FF", result.Average)
	}
}

func TestExtractFromFileMissing(t *testing.T) {
	finder := New()
	if _, err := finder.ExtractFromFile("/no/such/file.png", types.FocusRegion{Width: 1, Height: 1}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractMany(t *testing.T) {
	finder := New()
	img := uniformImage(32, 32, color.RGBA{100, 100, 100, 255})

	results, err := finder.ExtractMany([]extractor.Input{
		{Image: img, Region: types.FocusRegion{X: 0, Y: 0, Width: 16, Height: 16}},
		{Image: img, Region: types.FocusRegion{X: 16, Y: 16, Width: 16, Height: 16}},
	})
	if err != nil {
		t.Fatalf("ExtractMany failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSuggestRegion(t *testing.T) {
	finder := New()
	img := uniformImage(100, 100, color.RGBA{50, 50, 50, 255})

	region := finder.SuggestRegion(img)
	if region.Width <= 0 || region.Height <= 0 {
		t.Errorf("suggested region %+v has non-positive dimensions", region)
	}

	// A suggested region must be directly usable for extraction.
	if _, err := finder.ExtractFromImage(img, region); err != nil {
		t.Errorf("suggested region %+v failed extraction: %v", region, err)
	}
}

func TestProcessFileWithOverlay(t *testing.T) {
	finder := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	overlayPath := filepath.Join(dir, "in_colours.webp")

	img := uniformImage(40, 40, color.RGBA{180, 40, 220, 255})
	if err := finder.SaveImage(img, path, "png", 90, false); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	result, err := finder.ProcessFile(path, types.FocusRegion{}, overlayPath, "webp", 90)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result.Average != "#B428DC" {
		t.Errorf("Average = %s, want #B428DC", result.Average)
	}

	overlay, err := finder.LoadImage(overlayPath)
	if err != nil {
		t.Fatalf("failed to load overlay: %v", err)
	}
	if overlay.Bounds().Dy() <= 40 {
		t.Errorf("overlay height = %d, want > 40", overlay.Bounds().Dy())
	}
}

func TestNewWithConfig(t *testing.T) {
	finder := NewWithConfig(
		sampler.Config{SampleWidth: 8, SampleHeight: 8},
		focus.Config{WindowRatio: 0.25},
	)

	img := uniformImage(64, 64, color.RGBA{5, 10, 15, 255})
	result, err := finder.ExtractFull(img)
	if err != nil {
		t.Fatalf("ExtractFull failed: %v", err)
	}
	if result.Average != "#050A0F" {
		t.Errorf("Average = %s, want #050A0F", result.Average)
	}

	region := finder.SuggestRegion(img)
	if region.Width > 17 {
		t.Errorf("suggested region width = %d, want about a quarter of 64", region.Width)
	}
}
