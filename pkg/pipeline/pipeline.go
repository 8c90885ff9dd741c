// Package pipeline runs the complete part-to-drawing flow.
//
// This package implements the locate → inspect → frame → render →
// post-process pipeline shared by the CLI and the HTTP server. By
// centralizing this logic, both entry points get identical defaults,
// validation, and caching behavior.
//
// # Architecture
//
// A render proceeds in five stages:
//
//  1. Locate: resolve the part reference inside the LDraw library
//  2. Inspect: import the part headlessly and dump the scene geometry
//  3. Frame: solve the orthographic camera from the geometry's bounds
//  4. Render: run the external renderer with the solved camera and line rules
//  5. Post-process: rewrite the raw SVG into the final portable artifact
//
// Results are cached keyed on the part reference and every option that
// affects the output, so stages 2 through 5 are skipped on a hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, blender.NewRunner(), ldraw.New(""), logger)
//	result, err := runner.Execute(ctx, "3001", pipeline.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.SVG
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/breckenedge/lego-part-renderer/pkg/camera"
	"github.com/breckenedge/lego-part-renderer/pkg/errors"
)

// Defaults for every render option. The CLI seeds its flags from these and
// the server fills in omitted request fields with them, so both entry points
// agree on what an unspecified option means.
const (
	DefaultThickness   = 2.0
	DefaultFillColor   = "white"
	DefaultFillOpacity = 1.0
	DefaultLatitude    = 30.0
	DefaultLongitude   = 45.0
	DefaultResolution  = 1024
	DefaultPadding     = 0.03
	DefaultCreaseAngle = 135.0
	DefaultEdges       = "silhouette,crease,border"
)

// Option ranges. Requests outside these bounds are rejected rather than
// clamped so a typo'd value fails loudly.
const (
	MinThickness, MaxThickness     = 0.5, 20.0
	MinLatitude, MaxLatitude       = -90.0, 90.0
	MinLongitude, MaxLongitude     = -360.0, 360.0
	MinResolution, MaxResolution   = 64, 4096
	MinPadding, MaxPadding         = 0.0, 0.5
	MinCreaseAngle, MaxCreaseAngle = 0.0, 180.0
)

// Options contains all configuration for one render.
// This struct supports JSON serialization for API requests and cache keys.
type Options struct {
	// Line appearance
	Thickness   float64 `json:"thickness"`
	Edges       string  `json:"edges"`
	CreaseAngle float64 `json:"crease_angle"`

	// Surface appearance
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`

	// View
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Padding   float64 `json:"padding"`

	// Output
	ResolutionX int `json:"resolution_x"`
	ResolutionY int `json:"resolution_y"`

	// Refresh bypasses the cache read (the result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Logger is the runtime logger; not part of the render identity.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options every render starts from. Callers
// override individual fields; zero values are NOT re-defaulted later because
// zero is meaningful for several fields (opacity, latitude, padding).
func DefaultOptions() Options {
	return Options{
		Thickness:   DefaultThickness,
		Edges:       DefaultEdges,
		CreaseAngle: DefaultCreaseAngle,
		FillColor:   DefaultFillColor,
		FillOpacity: DefaultFillOpacity,
		Latitude:    DefaultLatitude,
		Longitude:   DefaultLongitude,
		Padding:     DefaultPadding,
		ResolutionX: DefaultResolution,
		ResolutionY: DefaultResolution,
	}
}

// Validate checks every option against its allowed range.
func (o *Options) Validate() error {
	if o.Thickness < MinThickness || o.Thickness > MaxThickness {
		return errors.New(errors.ErrCodeInvalidInput, "thickness %.2f out of range [%.1f, %.1f]", o.Thickness, MinThickness, MaxThickness)
	}
	if o.FillOpacity < 0 || o.FillOpacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "fill_opacity %.2f out of range [0, 1]", o.FillOpacity)
	}
	if o.FillColor == "" {
		return errors.New(errors.ErrCodeInvalidInput, "fill_color must not be empty")
	}
	if o.Latitude < MinLatitude || o.Latitude > MaxLatitude {
		return errors.New(errors.ErrCodeInvalidInput, "latitude %.1f out of range [%.0f, %.0f]", o.Latitude, MinLatitude, MaxLatitude)
	}
	if o.Longitude < MinLongitude || o.Longitude > MaxLongitude {
		return errors.New(errors.ErrCodeInvalidInput, "longitude %.1f out of range [%.0f, %.0f]", o.Longitude, MinLongitude, MaxLongitude)
	}
	if o.ResolutionX < MinResolution || o.ResolutionX > MaxResolution {
		return errors.New(errors.ErrCodeInvalidInput, "resolution_x %d out of range [%d, %d]", o.ResolutionX, MinResolution, MaxResolution)
	}
	if o.ResolutionY < MinResolution || o.ResolutionY > MaxResolution {
		return errors.New(errors.ErrCodeInvalidInput, "resolution_y %d out of range [%d, %d]", o.ResolutionY, MinResolution, MaxResolution)
	}
	if o.Padding < MinPadding || o.Padding > MaxPadding {
		return errors.New(errors.ErrCodeInvalidInput, "padding %.2f out of range [%.1f, %.1f]", o.Padding, MinPadding, MaxPadding)
	}
	if o.CreaseAngle < MinCreaseAngle || o.CreaseAngle > MaxCreaseAngle {
		return errors.New(errors.ErrCodeInvalidInput, "crease_angle %.1f out of range [%.0f, %.0f]", o.CreaseAngle, MinCreaseAngle, MaxCreaseAngle)
	}
	return nil
}

// Aspect returns the output aspect ratio used for camera framing.
func (o *Options) Aspect() float64 {
	return float64(o.ResolutionX) / float64(o.ResolutionY)
}

// Result contains the outputs of one pipeline run.
type Result struct {
	// SVG is the final post-processed artifact.
	SVG []byte

	// PartPath is the resolved part file inside the library.
	PartPath string

	// Camera is the solved framing, nil on a cache hit or when the part
	// produced no geometry.
	Camera *camera.Spec

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ObjectCount int
	InspectTime time.Duration
	RenderTime  time.Duration
	PostTime    time.Duration
	TotalTime   time.Duration
}
