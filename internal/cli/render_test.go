package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/pipeline"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"3001", "3001.svg"},
		{"3001.dat", "3001.svg"},
		{"3001.DAT", "3001.svg"},
		{"/opt/parts/3001.dat", "3001.svg"},
	}
	for _, tt := range tests {
		if got := outputName(tt.ref); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestRunRenderRejectsBadOutputPath(t *testing.T) {
	c := &CLI{Logger: log.New(io.Discard), Config: &Config{}}
	opts := renderOpts{output: "out\x00put.svg", pipeline: pipeline.DefaultOptions()}

	err := c.runRender(context.Background(), "3001", &opts)
	if err == nil {
		t.Fatal("expected an error for a control character in the output path")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidPath {
		t.Errorf("code = %v, want ErrCodeInvalidPath", errors.GetCode(err))
	}
}

func TestRenderCommandFlagDefaults(t *testing.T) {
	c := &CLI{Logger: log.New(io.Discard), Config: &Config{}}
	cmd := c.renderCommand()

	tests := []struct {
		flag string
		want string
	}{
		{"thickness", "2"},
		{"fill", "white"},
		{"fill-opacity", "1"},
		{"lat", "30"},
		{"lon", "45"},
		{"width", "1024"},
		{"height", "1024"},
		{"padding", "0.03"},
		{"crease-angle", "135"},
		{"edges", "silhouette,crease,border"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("flag %q not registered", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("flag %q default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
}

func TestRenderCommandConfigOverridesDefaults(t *testing.T) {
	thickness := 4.0
	fill := "steelblue"
	c := &CLI{
		Logger: log.New(io.Discard),
		Config: &Config{Render: RenderConfig{Thickness: &thickness, FillColor: &fill}},
	}
	cmd := c.renderCommand()

	if got := cmd.Flags().Lookup("thickness").DefValue; got != "4" {
		t.Errorf("thickness default = %q, want 4", got)
	}
	if got := cmd.Flags().Lookup("fill").DefValue; got != "steelblue" {
		t.Errorf("fill default = %q, want steelblue", got)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c := &CLI{Logger: log.New(io.Discard), Config: &Config{}}
	root := c.RootCommand()

	want := map[string]bool{"render": false, "browse": false, "serve": false, "cache": false, "completion": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if root.Use != appName {
		t.Errorf("root use = %q, want %q", root.Use, appName)
	}
}
