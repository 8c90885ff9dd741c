package freestyle

import "testing"

func TestParseEdgeSet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want EdgeSet
	}{
		{"defaults", "silhouette,crease,border", EdgeSet{Silhouette: true, Crease: true, Border: true}},
		{"none literal", "none", EdgeSet{}},
		{"empty", "", EdgeSet{}},
		{"single", "contour", EdgeSet{Contour: true}},
		{"all", "silhouette,crease,border,contour,external_contour,edge_mark,material_boundary",
			EdgeSet{true, true, true, true, true, true, true}},
		{"unknown tokens ignored", "silhouette,wireframe,crease", EdgeSet{Silhouette: true, Crease: true}},
		{"whitespace tolerated", " silhouette , border ", EdgeSet{Silhouette: true, Border: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseEdgeSet(tt.in); got != tt.want {
				t.Errorf("ParseEdgeSet(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  EdgeSet
		want string
	}{
		{"defaults", DefaultEdgeSet(), "silhouette,crease,border"},
		{"empty is none", EdgeSet{}, "none"},
		{"subset", EdgeSet{EdgeMark: true, MaterialBoundary: true}, "edge_mark,material_boundary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.Tokens()
			if got != tt.want {
				t.Errorf("Tokens() = %q, want %q", got, tt.want)
			}
			if back := ParseEdgeSet(got); back != tt.set {
				t.Errorf("ParseEdgeSet(Tokens()) = %+v, want %+v", back, tt.set)
			}
		})
	}
}

func TestConfigureVisibleRule(t *testing.T) {
	cfg := Configure(DefaultEdgeSet(), 2.5, 135, 1.0)

	v := cfg.Visible
	if v.Name != VisibleRuleName {
		t.Errorf("visible rule name = %q", v.Name)
	}
	if v.Visibility != VisibilityVisible {
		t.Errorf("visible rule visibility = %q", v.Visibility)
	}
	if v.Style.Thickness != 2.5 || v.Style.Alpha != 1.0 {
		t.Errorf("visible style = %+v", v.Style)
	}
	if v.Style.Color != [3]float64{0, 0, 0} {
		t.Errorf("visible color = %v, want black", v.Style.Color)
	}
	if cfg.CreaseAngle != 135 {
		t.Errorf("crease angle = %v", cfg.CreaseAngle)
	}
}

func TestConfigureHiddenRule(t *testing.T) {
	tests := []struct {
		name        string
		fillOpacity float64
		wantHidden  bool
		wantAlpha   float64
	}{
		{"opaque has no hidden rule", 1.0, false, 0},
		{"translucent dims hidden edges", 0.4, true, 0.4},
		{"fully transparent draws hidden at full strength", 0.0, true, 1.0},
		{"nearly opaque still gets a rule", 0.99, true, 0.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Configure(DefaultEdgeSet(), 2.0, 135, tt.fillOpacity)
			if !tt.wantHidden {
				if cfg.Hidden != nil {
					t.Fatalf("unexpected hidden rule: %+v", cfg.Hidden)
				}
				return
			}
			if cfg.Hidden == nil {
				t.Fatal("missing hidden rule")
			}
			h := cfg.Hidden
			if h.Name != HiddenRuleName {
				t.Errorf("hidden rule name = %q", h.Name)
			}
			if h.Visibility != VisibilityHidden {
				t.Errorf("hidden visibility = %q", h.Visibility)
			}
			if h.Style.Alpha != tt.wantAlpha {
				t.Errorf("hidden alpha = %v, want %v", h.Style.Alpha, tt.wantAlpha)
			}
			if h.Edges != cfg.Visible.Edges {
				t.Errorf("hidden categories %+v differ from visible %+v", h.Edges, cfg.Visible.Edges)
			}
		})
	}
}
