// Package server exposes the render pipeline over HTTP.
//
// The API surface is small: POST /render produces an SVG, GET /health
// reports whether the renderer and library are usable, and GET /metrics
// returns run counters. Intended for container deployments where the CLI
// is not convenient.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/breckenedge/lego-part-renderer/pkg/blender"
	"github.com/breckenedge/lego-part-renderer/pkg/buildinfo"
	"github.com/breckenedge/lego-part-renderer/pkg/ldraw"
	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

// Renderer is the pipeline surface the server needs. *pipeline.Runner
// satisfies it; tests substitute a stub.
type Renderer interface {
	Execute(ctx context.Context, partRef string, opts pipeline.Options) (*pipeline.Result, error)
}

// Server is the HTTP front end for the render pipeline.
type Server struct {
	renderer Renderer
	library  *ldraw.Library
	blender  *blender.Runner
	logger   *log.Logger
	metrics  *metrics
	defaults pipeline.Options
}

// New assembles a server around the given pipeline runner. The library and
// blender runner are only used for health probes; renders go through the
// renderer.
func New(renderer Renderer, lib *ldraw.Library, b *blender.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		renderer: renderer,
		library:  lib,
		blender:  b,
		logger:   logger,
		metrics:  &metrics{},
		defaults: pipeline.DefaultOptions(),
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/", s.handleRoot)
	r.Post("/render", s.handleRender)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID tags every request with a uuid, echoed in the X-Request-ID
// header and attached to log lines.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", r.Context().Value(requestIDKey))
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "part-renderer",
		"version": buildinfo.Version,
		"endpoints": map[string]string{
			"POST /render": "Render a part as SVG",
			"GET /health":  "Health check",
			"GET /metrics": "Service metrics",
		},
	})
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status           string `json:"status"`
	BlenderAvailable bool   `json:"blender_available"`
	LDrawAvailable   bool   `json:"ldraw_available"`
	TempDirWritable  bool   `json:"temp_dir_writable"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		BlenderAvailable: s.blender != nil && s.blender.CheckAvailable(r.Context()) == nil,
		LDrawAvailable:   s.library != nil && s.library.Check() == nil,
		TempDirWritable:  tempDirWritable(),
	}

	status := http.StatusOK
	resp.Status = "healthy"
	if !resp.BlenderAvailable || !resp.LDrawAvailable || !resp.TempDirWritable {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func tempDirWritable() bool {
	f, err := os.CreateTemp("", "healthcheck-*")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
