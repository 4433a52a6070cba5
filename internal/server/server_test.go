package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/extractor"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/processing"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

func newTestServer() *Server {
	return New(processing.NewProcessor(), extractor.New())
}

// writeTestImage writes a uniform PNG and returns its path
func writeTestImage(t *testing.T, c color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestExtract(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{200, 100, 50, 255})

	rec := postJSON(t, srv, "/api/v1/colours", extractRequest{Source: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var result types.ColourResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Average != "#C86432" {
		t.Errorf("Average = %s, want #C86432", result.Average)
	}
	if result.TextColour != "#FFFFFF" {
		t.Errorf("TextColour = %s, want #FFFFFF", result.TextColour)
	}
}

func TestExtractWithRegion(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{10, 20, 30, 255})

	rec := postJSON(t, srv, "/api/v1/colours", extractRequest{
		Source: path,
		Region: &types.FocusRegion{X: 4, Y: 4, Width: 8, Height: 8},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var result types.ColourResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Average != "#0A141E" {
		t.Errorf("Average = %s, want #0A141E", result.Average)
	}
}

func TestExtractRegionOutOfBounds(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{1, 2, 3, 255})

	rec := postJSON(t, srv, "/api/v1/colours", extractRequest{
		Source: path,
		Region: &types.FocusRegion{X: 0, Y: 0, Width: 100, Height: 100},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractMissingSource(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv, "/api/v1/colours", extractRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractUnreadableSource(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv, "/api/v1/colours", extractRequest{Source: "/does/not/exist.png"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractBadJSON(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/colours", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractBatch(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{255, 0, 0, 255})

	rec := postJSON(t, srv, "/api/v1/colours/batch", batchRequest{
		Source: path,
		Regions: []types.FocusRegion{
			{X: 0, Y: 0, Width: 16, Height: 16},
			{X: 16, Y: 16, Width: 16, Height: 16},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var results []types.ColourResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, result := range results {
		if result.Average != "#FF0000" {
			t.Errorf("result %d Average = %s, want #FF0000", i, result.Average)
		}
	}
}

func TestExtractBatchAllOrNothing(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{255, 0, 0, 255})

	rec := postJSON(t, srv, "/api/v1/colours/batch", batchRequest{
		Source: path,
		Regions: []types.FocusRegion{
			{X: 0, Y: 0, Width: 16, Height: 16},
			{X: 0, Y: 0, Width: 99, Height: 99},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractBatchEmpty(t *testing.T) {
	srv := newTestServer()
	path := writeTestImage(t, color.RGBA{255, 0, 0, 255})

	rec := postJSON(t, srv, "/api/v1/colours/batch", batchRequest{Source: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var results []types.ColourResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
