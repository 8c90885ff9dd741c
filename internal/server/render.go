package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/freestyle"
	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

// RenderRequest is the POST /render body. Every field except PartNumber is
// optional; omitted fields take the pipeline defaults. Pointers distinguish
// "omitted" from a deliberate zero (opacity 0, latitude 0).
type RenderRequest struct {
	PartNumber  string     `json:"partNumber"`
	Thickness   *float64   `json:"thickness"`
	FillColor   *string    `json:"fillColor"`
	FillOpacity *float64   `json:"fillOpacity"`
	Latitude    *float64   `json:"cameraLatitude"`
	Longitude   *float64   `json:"cameraLongitude"`
	ResolutionX *int       `json:"resolutionX"`
	ResolutionY *int       `json:"resolutionY"`
	Padding     *float64   `json:"padding"`
	CreaseAngle *float64   `json:"creaseAngle"`
	EdgeTypes   *EdgeTypes `json:"edgeTypes"`
	Refresh     bool       `json:"refresh"`
}

// EdgeTypes toggles edge categories individually. Omitted categories keep
// their defaults (silhouette, crease, and border on).
type EdgeTypes struct {
	Silhouette       *bool `json:"silhouette"`
	Crease           *bool `json:"crease"`
	Border           *bool `json:"border"`
	Contour          *bool `json:"contour"`
	ExternalContour  *bool `json:"externalContour"`
	EdgeMark         *bool `json:"edgeMark"`
	MaterialBoundary *bool `json:"materialBoundary"`
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// options merges the request over the server defaults.
func (req *RenderRequest) options(defaults pipeline.Options) pipeline.Options {
	opts := defaults
	if req.Thickness != nil {
		opts.Thickness = *req.Thickness
	}
	if req.FillColor != nil {
		opts.FillColor = *req.FillColor
	}
	if req.FillOpacity != nil {
		opts.FillOpacity = *req.FillOpacity
	}
	if req.Latitude != nil {
		opts.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		opts.Longitude = *req.Longitude
	}
	if req.ResolutionX != nil {
		opts.ResolutionX = *req.ResolutionX
	}
	if req.ResolutionY != nil {
		opts.ResolutionY = *req.ResolutionY
	}
	if req.Padding != nil {
		opts.Padding = *req.Padding
	}
	if req.CreaseAngle != nil {
		opts.CreaseAngle = *req.CreaseAngle
	}
	if req.EdgeTypes != nil {
		opts.Edges = req.EdgeTypes.merge(freestyle.ParseEdgeSet(opts.Edges)).Tokens()
	}
	opts.Refresh = req.Refresh
	return opts
}

func (et *EdgeTypes) merge(set freestyle.EdgeSet) freestyle.EdgeSet {
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&set.Silhouette, et.Silhouette)
	apply(&set.Crease, et.Crease)
	apply(&set.Border, et.Border)
	apply(&set.Contour, et.Contour)
	apply(&set.ExternalContour, et.ExternalContour)
	apply(&set.EdgeMark, et.EdgeMark)
	apply(&set.MaterialBoundary, et.MaterialBoundary)
	return set
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if req.PartNumber == "" {
		s.sendError(w, http.StatusBadRequest, "partNumber is required", "")
		return
	}

	opts := req.options(s.defaults)
	opts.Logger = s.logger

	start := time.Now()
	result, err := s.renderer.Execute(r.Context(), req.PartNumber, opts)
	if err != nil {
		s.metrics.recordError()
		status, message := statusFor(err)
		s.logger.Error("render failed", "part", req.PartNumber, "err", err)
		s.sendError(w, status, message, errors.UserMessage(err))
		return
	}
	s.metrics.recordRender(time.Since(start), result.CacheHit)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Render-Duration", fmt.Sprintf("%.2fs", result.Stats.TotalTime.Seconds()))
	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	}
	_, _ = w.Write(result.SVG)
}

// statusFor maps pipeline error codes to HTTP statuses.
func statusFor(err error) (int, string) {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest, "Invalid request"
	case errors.ErrCodePartNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound, "Part not found"
	case errors.ErrCodeTimeout:
		return http.StatusInternalServerError, "Rendering timed out"
	default:
		return http.StatusInternalServerError, "Rendering failed"
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, ErrorResponse{Error: message, Detail: detail})
}
