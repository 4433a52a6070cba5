// Package server exposes the colour extraction service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/extractor"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/processing"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/sampler"
	"github.com/jemayn/Our.Community.MediaColourFinder/pkg/types"
)

// Server handles HTTP requests for colour extraction.
type Server struct {
	processor *processing.Processor
	service   *extractor.Service
	router    chi.Router
}

// New creates a Server with its routes mounted.
func New(processor *processing.Processor, service *extractor.Service) *Server {
	s := &Server{
		processor: processor,
		service:   service,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/colours", s.handleExtract)
		r.Post("/colours/batch", s.handleExtractBatch)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// extractRequest asks for the colours of one region of a source image.
// Source is a file path or http(s) URL. A nil region means the full image.
type extractRequest struct {
	Source string             `json:"source"`
	Region *types.FocusRegion `json:"region,omitempty"`
}

// batchRequest asks for the colours of several regions of one source image.
type batchRequest struct {
	Source  string              `json:"source"`
	Regions []types.FocusRegion `json:"regions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.Source == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source is required"})
		return
	}

	img, err := s.processor.LoadImageSmart(req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	region := extractor.FullRegion(img)
	if req.Region != nil {
		region = *req.Region
	}

	result, err := s.service.ExtractOne(extractor.Input{Image: img, Region: region})
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.Source == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source is required"})
		return
	}

	img, err := s.processor.LoadImageSmart(req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ins := make([]extractor.Input, 0, len(req.Regions))
	for _, region := range req.Regions {
		ins = append(ins, extractor.Input{Image: img, Region: region})
	}

	results, err := s.service.ExtractMany(ins)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func statusForError(err error) int {
	if errors.Is(err, sampler.ErrRegionOutOfBounds) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
