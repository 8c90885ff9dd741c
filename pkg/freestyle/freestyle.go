// Package freestyle builds the line-set configuration handed to the external
// renderer's edge tracer: which edge categories become lines, how thick they
// are drawn, and whether occluded edges get a second, dimmed pass.
package freestyle

import "strings"

// EdgeSet selects the edge categories that become visible lines. Each
// category is an explicit boolean so selections are exhaustive and
// compiler-checked rather than a runtime string-membership test.
type EdgeSet struct {
	Silhouette       bool
	Crease           bool
	Border           bool
	Contour          bool
	ExternalContour  bool
	EdgeMark         bool
	MaterialBoundary bool
}

// DefaultEdgeSet selects the categories that produce a clean technical
// drawing: silhouettes, creases, and borders.
func DefaultEdgeSet() EdgeSet {
	return EdgeSet{Silhouette: true, Crease: true, Border: true}
}

// ParseEdgeSet converts a comma-separated category list into an EdgeSet.
// The literal "none" (or an empty string) selects nothing. Unknown tokens
// are ignored, never fatal, so a newer caller can request categories an
// older renderer doesn't know about.
func ParseEdgeSet(s string) EdgeSet {
	var set EdgeSet
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return set
	}
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "silhouette":
			set.Silhouette = true
		case "crease":
			set.Crease = true
		case "border":
			set.Border = true
		case "contour":
			set.Contour = true
		case "external_contour":
			set.ExternalContour = true
		case "edge_mark":
			set.EdgeMark = true
		case "material_boundary":
			set.MaterialBoundary = true
		}
	}
	return set
}

// Tokens returns the enabled categories as the comma-separated list the
// render driver consumes, or "none" when nothing is selected.
func (e EdgeSet) Tokens() string {
	var toks []string
	for _, c := range []struct {
		on   bool
		name string
	}{
		{e.Silhouette, "silhouette"},
		{e.Crease, "crease"},
		{e.Border, "border"},
		{e.Contour, "contour"},
		{e.ExternalContour, "external_contour"},
		{e.EdgeMark, "edge_mark"},
		{e.MaterialBoundary, "material_boundary"},
	} {
		if c.on {
			toks = append(toks, c.name)
		}
	}
	if len(toks) == 0 {
		return "none"
	}
	return strings.Join(toks, ",")
}

// Visibility restricts a rule to unoccluded or occluded edges.
type Visibility string

const (
	// VisibilityVisible selects edges not hidden behind geometry.
	VisibilityVisible Visibility = "VISIBLE"
	// VisibilityHidden selects edges occluded by geometry.
	VisibilityHidden Visibility = "HIDDEN"
)

// LineStyle is the stroke appearance applied to a rule's edges. Color is an
// RGB triple in [0,1]; strokes are anchored centered on the edge.
type LineStyle struct {
	Thickness float64
	Color     [3]float64
	Alpha     float64
}

// Rule is one named line-set: a category selection, a visibility
// restriction, and a stroke style. Categories combine with logical OR and
// inclusive negation.
type Rule struct {
	Name       string
	Edges      EdgeSet
	Visibility Visibility
	Style      LineStyle
}

// Config is the complete line configuration for one render: a visible rule,
// an optional hidden rule, and the crease detection angle in degrees. Hidden
// is nil when the surface is fully opaque and occluded edges cannot show.
type Config struct {
	Visible     Rule
	Hidden      *Rule
	CreaseAngle float64
}

// Group names the renderer derives from the rule names in its SVG output.
// The visible name is deliberately a substring of the hidden name; the SVG
// post-processor relies on this when locating groups.
const (
	VisibleRuleName = "Edges"
	HiddenRuleName  = "HiddenEdges"
)

// Configure builds the line configuration for the given selection.
//
// The visible rule always draws the selected categories in black at full
// alpha. When fillOpacity < 1 a hidden rule is added for occluded edges:
// a translucent surface lets them show through, dimmed in proportion to the
// opacity. A fully transparent surface (opacity 0) obscures nothing, so its
// hidden edges draw at full strength.
func Configure(edges EdgeSet, thickness, creaseAngle, fillOpacity float64) Config {
	cfg := Config{
		Visible: Rule{
			Name:       VisibleRuleName,
			Edges:      edges,
			Visibility: VisibilityVisible,
			Style: LineStyle{
				Thickness: thickness,
				Alpha:     1.0,
			},
		},
		CreaseAngle: creaseAngle,
	}

	if fillOpacity < 1.0 {
		alpha := fillOpacity
		if fillOpacity == 0 {
			alpha = 1.0
		}
		cfg.Hidden = &Rule{
			Name:       HiddenRuleName,
			Edges:      edges,
			Visibility: VisibilityHidden,
			Style: LineStyle{
				Thickness: thickness,
				Alpha:     alpha,
			},
		}
	}

	return cfg
}
