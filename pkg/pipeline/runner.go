package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/breckenedge/lego-part-renderer/pkg/blender"
	"github.com/breckenedge/lego-part-renderer/pkg/cache"
	"github.com/breckenedge/lego-part-renderer/pkg/camera"
	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/freestyle"
	"github.com/breckenedge/lego-part-renderer/pkg/ldraw"
	"github.com/breckenedge/lego-part-renderer/pkg/scene"
	"github.com/breckenedge/lego-part-renderer/pkg/svgpost"
)

// Runner executes the render pipeline with caching.
//
// The Runner is stateless except for its collaborators - it stores no
// per-render results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache   cache.Cache
	Blender *blender.Runner
	Library *ldraw.Library
	Logger  *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// If c is nil, a NullCache is used (caching disabled).
// If b is nil, a default Blender runner is used.
// If lib is nil, the default library location is used.
func NewRunner(c cache.Cache, b *blender.Runner, lib *ldraw.Library, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if b == nil {
		b = blender.NewRunner()
	}
	if lib == nil {
		lib = ldraw.New("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Blender: b,
		Library: lib,
		Logger:  logger,
	}
}

// Execute runs the complete locate → inspect → frame → render → post-process
// pipeline for one part.
func (r *Runner) Execute(ctx context.Context, partRef string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	start := time.Now()

	partPath, err := r.Library.FindPart(partRef)
	if err != nil {
		return nil, err
	}
	result := &Result{PartPath: partPath}

	cacheKey := r.renderKey(partRef, opts)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			logger.Info("serving cached render", "part", partRef)
			result.SVG = data
			result.CacheHit = true
			result.Stats.TotalTime = time.Since(start)
			return result, nil
		}
	}

	// Stage 1: Inspect
	inspectStart := time.Now()
	objects, err := r.Blender.Inspect(ctx, partPath, r.Library.Root)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	result.Stats.InspectTime = time.Since(inspectStart)
	result.Stats.ObjectCount = len(objects)

	logger.Info("inspected scene",
		"part", partRef,
		"objects", len(objects),
		"duration", result.Stats.InspectTime.Round(time.Millisecond))

	// Stage 2: Frame
	spec, err := r.frame(objects, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	result.Camera = spec

	// Stage 3: Render
	renderStart := time.Now()
	lines := freestyle.Configure(freestyle.ParseEdgeSet(opts.Edges), opts.Thickness, opts.CreaseAngle, opts.FillOpacity)

	workDir, err := os.MkdirTemp("", "partrender-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create work directory")
	}
	defer os.RemoveAll(workDir)

	outPath := filepath.Join(workDir, "render.svg")
	params := blender.BuildParams(partPath, outPath, r.Library.Root, opts.FillColor,
		opts.ResolutionX, opts.ResolutionY, spec, lines)
	if err := r.Blender.Render(ctx, params); err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered part",
		"part", partRef,
		"duration", result.Stats.RenderTime.Round(time.Millisecond))

	// Stage 4: Post-process
	postStart := time.Now()
	proc := &svgpost.Processor{
		FillColor:   opts.FillColor,
		FillOpacity: opts.FillOpacity,
		Logger:      logger,
	}
	if err := proc.ProcessFile(outPath); err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	svg, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArtifactMissing, err, "read artifact")
	}
	result.SVG = svg
	result.Stats.PostTime = time.Since(postStart)
	result.Stats.TotalTime = time.Since(start)

	_ = r.Cache.Set(ctx, cacheKey, svg, cache.TTLRender)

	logger.Info("render complete",
		"part", partRef,
		"bytes", len(svg),
		"total", result.Stats.TotalTime.Round(time.Millisecond))

	return result, nil
}

// frame solves the camera from the inspected geometry. A part with no mesh
// geometry is rendered with the external renderer's default camera rather
// than failing the whole run.
func (r *Runner) frame(objects []scene.Object, opts Options, logger *log.Logger) (*camera.Spec, error) {
	corners := scene.WorldCorners(objects)
	spec, err := camera.Frame(corners, camera.Options{
		LatitudeDeg:  opts.Latitude,
		LongitudeDeg: opts.Longitude,
		Padding:      opts.Padding,
		Aspect:       opts.Aspect(),
	})
	if err != nil {
		if err == camera.ErrNoGeometry {
			logger.Warn("no mesh geometry found, keeping default camera")
			return nil, nil
		}
		return nil, err
	}
	return spec, nil
}

// renderKey derives the cache key from the part reference and every option
// that affects the artifact. Refresh and the logger are excluded: they
// change behavior, not output.
func (r *Runner) renderKey(partRef string, opts Options) string {
	opts.Refresh = false
	opts.Logger = nil
	return cache.RenderKey(partRef, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
