// Package cli implements the partrender command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/breckenedge/lego-part-renderer/pkg/blender"
	"github.com/breckenedge/lego-part-renderer/pkg/buildinfo"
	"github.com/breckenedge/lego-part-renderer/pkg/cache"
	"github.com/breckenedge/lego-part-renderer/pkg/ldraw"
	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "partrender"

// LogInfo is the default log level main.go starts the CLI with; --verbose
// switches to debug at runtime.
const LogInfo = log.InfoLevel

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration (or defaults when no config file exists).
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfigOrDefault(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Render LDraw parts as technical SVG line drawings",
		Long:         `partrender drives a headless Blender/Freestyle renderer to turn LDraw part files into clean technical line drawings, then rewrites the SVG output for embedding: recolored fills, currentColor strokes, corrected hidden-edge z-order, and an opaque background.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.newBlender(), c.newLibrary(), c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.RedisAddr != "" {
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{Addr: c.Config.RedisAddr})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newBlender() *blender.Runner {
	b := blender.NewRunner()
	b.Logger = c.Logger
	if c.Config.BlenderBinary != "" {
		b.Binary = c.Config.BlenderBinary
	}
	if c.Config.RenderScript != "" {
		b.RenderScript = c.Config.RenderScript
	}
	if c.Config.InspectScript != "" {
		b.InspectScript = c.Config.InspectScript
	}
	return b
}

func (c *CLI) newLibrary() *ldraw.Library {
	return ldraw.New(c.Config.LibraryPath)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/partrender/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
