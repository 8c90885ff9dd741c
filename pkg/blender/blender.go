// Package blender drives the external Blender/Freestyle renderer.
//
// Blender is treated as a black box reached over os/exec: a driver script
// receives the part path and a JSON parameter file (camera, line rules,
// colors, resolution) and writes the raw SVG; an inspection script dumps the
// imported scene's object list as JSON so the camera can be solved on the Go
// side before the real render.
package blender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/breckenedge/lego-part-renderer/pkg/camera"
	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/freestyle"
)

// Default locations, matching the container image layout.
const (
	DefaultBinary        = "blender"
	DefaultRenderScript  = "/usr/lib/part-renderer/render_part.py"
	DefaultInspectScript = "/usr/lib/part-renderer/inspect_scene.py"
	DefaultTimeout       = 120 * time.Second
)

// Runner invokes Blender with the driver scripts.
type Runner struct {
	Binary        string
	RenderScript  string
	InspectScript string
	Timeout       time.Duration
	Logger        *log.Logger
}

// NewRunner returns a runner with the default binary and script locations.
func NewRunner() *Runner {
	return &Runner{
		Binary:        DefaultBinary,
		RenderScript:  DefaultRenderScript,
		InspectScript: DefaultInspectScript,
		Timeout:       DefaultTimeout,
	}
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// CheckAvailable probes the Blender binary. Used by health checks.
func (r *Runner) CheckAvailable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, r.Binary, "--version").Run(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "blender binary %s not available", r.Binary)
	}
	return nil
}

// Params is the full parameter set the render driver consumes, serialized
// to a JSON file referenced on the Blender command line.
type Params struct {
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	LibraryRoot string        `json:"library_root"`
	FillColor   string        `json:"fill_color"`
	ResolutionX int           `json:"resolution_x"`
	ResolutionY int           `json:"resolution_y"`
	Camera      *CameraParams `json:"camera,omitempty"`
	Lines       LineParams    `json:"lines"`
}

// CameraParams is the wire form of a solved camera. Nil means "no geometry
// was found; keep the renderer's default camera".
type CameraParams struct {
	Position   [3]float64 `json:"position"`
	Right      [3]float64 `json:"right"`
	Up         [3]float64 `json:"up"`
	Back       [3]float64 `json:"back"`
	OrthoScale float64    `json:"ortho_scale"`
	ShiftX     float64    `json:"shift_x"`
	ShiftY     float64    `json:"shift_y"`
	ClipStart  float64    `json:"clip_start"`
	ClipEnd    float64    `json:"clip_end"`
}

// LineParams is the wire form of the line configuration.
type LineParams struct {
	CreaseAngle float64     `json:"crease_angle"`
	Visible     RuleParams  `json:"visible"`
	Hidden      *RuleParams `json:"hidden,omitempty"`
}

// RuleParams is one line-set rule on the wire.
type RuleParams struct {
	Name       string     `json:"name"`
	EdgeTypes  string     `json:"edge_types"`
	Visibility string     `json:"visibility"`
	Thickness  float64    `json:"thickness"`
	Color      [3]float64 `json:"color"`
	Alpha      float64    `json:"alpha"`
}

// BuildParams assembles the driver parameters from the pipeline's solved
// values.
func BuildParams(input, output, libraryRoot, fillColor string, resX, resY int, spec *camera.Spec, lines freestyle.Config) Params {
	p := Params{
		Input:       input,
		Output:      output,
		LibraryRoot: libraryRoot,
		FillColor:   fillColor,
		ResolutionX: resX,
		ResolutionY: resY,
		Lines: LineParams{
			CreaseAngle: lines.CreaseAngle,
			Visible:     ruleParams(lines.Visible),
		},
	}
	if spec != nil {
		p.Camera = &CameraParams{
			Position:   [3]float64{spec.Position.X, spec.Position.Y, spec.Position.Z},
			Right:      [3]float64{spec.Basis.Right.X, spec.Basis.Right.Y, spec.Basis.Right.Z},
			Up:         [3]float64{spec.Basis.Up.X, spec.Basis.Up.Y, spec.Basis.Up.Z},
			Back:       [3]float64{spec.Basis.Back.X, spec.Basis.Back.Y, spec.Basis.Back.Z},
			OrthoScale: spec.OrthoScale,
			ShiftX:     spec.ShiftX,
			ShiftY:     spec.ShiftY,
			ClipStart:  spec.ClipStart,
			ClipEnd:    spec.ClipEnd,
		}
	}
	if lines.Hidden != nil {
		h := ruleParams(*lines.Hidden)
		p.Lines.Hidden = &h
	}
	return p
}

func ruleParams(r freestyle.Rule) RuleParams {
	return RuleParams{
		Name:       r.Name,
		EdgeTypes:  r.Edges.Tokens(),
		Visibility: string(r.Visibility),
		Thickness:  r.Style.Thickness,
		Color:      r.Style.Color,
		Alpha:      r.Style.Alpha,
	}
}

// Render runs the render driver with the given parameters. On success the
// SVG named by params.Output exists; if Blender exits cleanly but the
// artifact is missing, the output directory's contents are included in the
// error as a diagnostic aid.
func (r *Runner) Render(ctx context.Context, params Params) error {
	paramsPath, cleanup, err := writeParams(params)
	if err != nil {
		return err
	}
	defer cleanup()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--background",
		"--python", r.RenderScript,
		"--",
		"--params", paramsPath,
	}
	r.logger().Debug("launching renderer", "binary", r.Binary, "script", r.RenderScript, "part", params.Input)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "render of %s timed out after %s", params.Input, timeout)
		}
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render of %s failed: %s", params.Input, strings.TrimSpace(stderr.String()))
	}
	r.logger().Debug("renderer finished", "duration", time.Since(start).Round(time.Millisecond))

	if _, err := os.Stat(params.Output); err != nil {
		return errors.New(errors.ErrCodeArtifactMissing,
			"renderer produced no artifact at %s (directory contains: %s)",
			params.Output, dirListing(filepath.Dir(params.Output)))
	}
	return nil
}

// writeParams serializes params to a uniquely named temp file and returns
// its path plus a cleanup func.
func writeParams(params Params) (string, func(), error) {
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal render params")
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("render-params-%s.json", uuid.NewString()))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInternal, err, "write render params")
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// dirListing names the entries of dir on one line, for missing-artifact
// diagnostics.
func dirListing(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("unreadable: %v", err)
	}
	if len(entries) == 0 {
		return "nothing"
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return strings.Join(names, ", ")
}
