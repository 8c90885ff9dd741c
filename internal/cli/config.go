package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

// Config is the on-disk configuration loaded from the TOML config file.
// Every field is optional; zero values fall back to built-in defaults.
type Config struct {
	// Paths
	LibraryPath   string `toml:"library_path"`
	BlenderBinary string `toml:"blender_binary"`
	RenderScript  string `toml:"render_script"`
	InspectScript string `toml:"inspect_script"`

	// Caching
	RedisAddr string `toml:"redis_addr"`

	// Render defaults, applied under explicit flags.
	Render RenderConfig `toml:"render"`
}

// RenderConfig overrides the pipeline's built-in option defaults. Pointers
// distinguish "not set in the file" from a deliberate zero.
type RenderConfig struct {
	Thickness   *float64 `toml:"thickness"`
	Edges       *string  `toml:"edges"`
	CreaseAngle *float64 `toml:"crease_angle"`
	FillColor   *string  `toml:"fill_color"`
	FillOpacity *float64 `toml:"fill_opacity"`
	Latitude    *float64 `toml:"latitude"`
	Longitude   *float64 `toml:"longitude"`
	Padding     *float64 `toml:"padding"`
	ResolutionX *int     `toml:"resolution_x"`
	ResolutionY *int     `toml:"resolution_y"`
}

// ConfigPath returns the config file location
// (~/.config/partrender/config.toml, honoring XDG_CONFIG_HOME).
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads and decodes the config file at path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigOrDefault loads the default config file, returning an empty
// config when the file does not exist or cannot be read. A broken config
// file never blocks the CLI.
func LoadConfigOrDefault() *Config {
	path, err := ConfigPath()
	if err != nil {
		return &Config{}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return &Config{}
	}
	return cfg
}

// Options builds the pipeline option defaults with the config file's render
// overrides applied. Command-line flags are layered on top of this.
func (c *Config) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	r := c.Render
	if r.Thickness != nil {
		opts.Thickness = *r.Thickness
	}
	if r.Edges != nil {
		opts.Edges = *r.Edges
	}
	if r.CreaseAngle != nil {
		opts.CreaseAngle = *r.CreaseAngle
	}
	if r.FillColor != nil {
		opts.FillColor = *r.FillColor
	}
	if r.FillOpacity != nil {
		opts.FillOpacity = *r.FillOpacity
	}
	if r.Latitude != nil {
		opts.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		opts.Longitude = *r.Longitude
	}
	if r.Padding != nil {
		opts.Padding = *r.Padding
	}
	if r.ResolutionX != nil {
		opts.ResolutionX = *r.ResolutionX
	}
	if r.ResolutionY != nil {
		opts.ResolutionY = *r.ResolutionY
	}
	return opts
}
