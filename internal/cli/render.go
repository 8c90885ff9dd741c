package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path; derived from the part reference when empty
	noCache bool   // skip the artifact cache entirely
	refresh bool   // re-render even when a cached artifact exists

	pipeline pipeline.Options
}

// renderCommand creates the render command.
//
// Flag defaults come from the config file when present, otherwise from the
// pipeline's built-in defaults: thickness 2.0, white fill at full opacity,
// camera at 30°/45°, 1024×1024 output, 3% padding, 135° crease angle, and
// the silhouette/crease/border edge categories.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{pipeline: c.Config.Options()}

	cmd := &cobra.Command{
		Use:   "render <part>",
		Short: "Render a part as a technical SVG line drawing",
		Long: `Render an LDraw part as a clean SVG line drawing.

The part may be a bare part number (looked up in the LDraw library) or a
path to a .dat file. The raw renderer output is post-processed for
embedding: fills are recolored, strokes become currentColor, hidden edges
are moved behind visible ones, and an opaque background is injected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <part>.svg)")
	cmd.Flags().Float64Var(&opts.pipeline.Thickness, "thickness", opts.pipeline.Thickness, "line thickness")
	cmd.Flags().StringVar(&opts.pipeline.Edges, "edges", opts.pipeline.Edges, "edge categories to draw (comma-separated, or 'none')")
	cmd.Flags().Float64Var(&opts.pipeline.CreaseAngle, "crease-angle", opts.pipeline.CreaseAngle, "crease detection angle in degrees")
	cmd.Flags().StringVar(&opts.pipeline.FillColor, "fill", opts.pipeline.FillColor, "fill color (any SVG color, including currentColor)")
	cmd.Flags().Float64Var(&opts.pipeline.FillOpacity, "fill-opacity", opts.pipeline.FillOpacity, "fill opacity; below 1 draws hidden edges")
	cmd.Flags().Float64Var(&opts.pipeline.Latitude, "lat", opts.pipeline.Latitude, "camera latitude in degrees")
	cmd.Flags().Float64Var(&opts.pipeline.Longitude, "lon", opts.pipeline.Longitude, "camera longitude in degrees")
	cmd.Flags().Float64Var(&opts.pipeline.Padding, "padding", opts.pipeline.Padding, "frame padding as a fraction of the output size")
	cmd.Flags().IntVar(&opts.pipeline.ResolutionX, "width", opts.pipeline.ResolutionX, "output width in pixels")
	cmd.Flags().IntVar(&opts.pipeline.ResolutionY, "height", opts.pipeline.ResolutionY, "output height in pixels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// runRender executes the pipeline for one part and writes the SVG.
func (c *CLI) runRender(ctx context.Context, partRef string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	opts.pipeline.Refresh = opts.refresh
	opts.pipeline.Logger = logger
	if err := opts.pipeline.Validate(); err != nil {
		return err
	}

	// Resolve and check the destination before spending two minutes in the
	// renderer only to fail on the write.
	outputPath := opts.output
	if outputPath == "" {
		outputPath = outputName(partRef)
	}
	if err := errors.ValidateOutputPath(outputPath); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", partRef))
	spin.Start()
	result, err := runner.Execute(ctx, partRef, opts.pipeline)
	spin.Stop()
	if err != nil {
		if spin.Cancelled() {
			return context.Canceled
		}
		printError("Render failed: %v", err)
		return err
	}

	if err := os.WriteFile(outputPath, result.SVG, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSuccess("Rendered %s", partRef)
	printFile(outputPath)
	printStats(result.Stats.ObjectCount, len(result.SVG), result.CacheHit)
	return nil
}

// outputName derives the output filename from a part reference: the base
// name with the .dat extension replaced by .svg.
func outputName(partRef string) string {
	base := filepath.Base(partRef)
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".dat"), ".DAT")
	return base + ".svg"
}
