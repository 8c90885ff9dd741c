// Package svgpost rewrites the raw SVG the external renderer emits into the
// final, portable artifact.
//
// The renderer's output is structurally predictable but visually wrong for
// embedding: fills are literal white, strokes literal black, occluded-edge
// groups carry the default full opacity, and hidden edges can paint over
// visible ones. Four ordered stages fix this:
//
//  1. Recolor: white fills become the configured fill color and black
//     strokes become currentColor so they inherit the surrounding text color.
//  2. Opacity stamping: default fill-opacity literals are rewritten to the
//     requested opacity (only when the surface is translucent).
//  3. Z-order correction: the hidden-edge group is moved immediately before
//     the visible-edge group so visible lines paint on top.
//  4. Background injection: an opaque full-canvas rectangle becomes the
//     document's first child so the drawing stays legible on dark pages.
//
// Stages must not be reordered: recoloring operates on the renderer's
// literal tokens, stamping and reordering assume recolored content, and the
// background must end up first in document order.
package svgpost

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"

	"github.com/breckenedge/lego-part-renderer/pkg/freestyle"
)

// Color tokens the renderer emits and the replacements stamped in.
const (
	// CurrentColor makes strokes inherit the surrounding text color.
	CurrentColor = "currentColor"

	// defaultOpacityLiteral is the renderer's full-opacity attribute value.
	defaultOpacityLiteral = "1.0"

	backgroundFill = "white"
)

// whiteFills and blackStrokes are the literal color spellings the renderer
// is known to produce. Anything else is left untouched.
var (
	whiteFills   = map[string]bool{"rgb(255, 255, 255)": true, "rgb(255,255,255)": true, "#ffffff": true, "white": true}
	blackStrokes = map[string]bool{"rgb(0, 0, 0)": true, "rgb(0,0,0)": true, "#000000": true, "black": true}
)

// Processor applies the post-processing stages to one rendered document.
type Processor struct {
	// FillColor is the target fill token; any valid SVG color expression,
	// including currentColor.
	FillColor string
	// FillOpacity is the surface opacity used to drive the render.
	FillOpacity float64
	// Logger receives stage diagnostics. Defaults to log.Default.
	Logger *log.Logger
}

func (p *Processor) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// ProcessFile reads the SVG at path, applies all stages in order, and
// rewrites the file in place.
func (p *Processor) ProcessFile(path string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return fmt.Errorf("read svg %s: %w", path, err)
	}
	if err := p.Process(doc); err != nil {
		return err
	}
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write svg %s: %w", path, err)
	}
	return nil
}

// Process runs the four stages on doc in their required order. It must be
// invoked exactly once per render: background injection is deliberately not
// idempotent.
func (p *Processor) Process(doc *etree.Document) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("svg document has no root element")
	}

	p.Recolor(doc)
	if p.FillOpacity < 1.0 {
		p.StampOpacity(doc)
		p.ReorderHiddenEdges(doc)
	}
	p.InjectBackground(doc)
	return nil
}

// Recolor rewrites every solid-white fill to the target fill color and every
// solid-black stroke to currentColor. All other attributes are untouched.
func (p *Processor) Recolor(doc *etree.Document) {
	walk(doc.Root(), func(el *etree.Element) {
		if a := el.SelectAttr("fill"); a != nil && whiteFills[a.Value] {
			a.Value = p.FillColor
		}
		if a := el.SelectAttr("stroke"); a != nil && blackStrokes[a.Value] {
			a.Value = CurrentColor
		}
	})
}

// StampOpacity rewrites every fill-opacity attribute still at the renderer's
// default full-opacity literal to the requested opacity, formatted to four
// decimal places.
func (p *Processor) StampOpacity(doc *etree.Document) {
	value := fmt.Sprintf("%.4f", p.FillOpacity)
	walk(doc.Root(), func(el *etree.Element) {
		if a := el.SelectAttr("fill-opacity"); a != nil && a.Value == defaultOpacityLiteral {
			a.Value = value
		}
	})
}

// ReorderHiddenEdges moves the hidden-edge group immediately before the
// visible-edge group so that visible lines paint over hidden ones. If either
// group is absent the stage is skipped with a diagnostic; the run continues.
func (p *Processor) ReorderHiddenEdges(doc *etree.Document) {
	root := doc.Root()
	groups := root.SelectElements("g")

	hidden, visible := findEdgeGroups(groups)
	if hidden == nil || visible == nil {
		p.logger().Warn("skipping z-order correction: edge group missing",
			"hidden", hidden != nil, "visible", visible != nil)
		return
	}

	if _, changed := orderHiddenFirst(groups, hidden, visible); !changed {
		return
	}
	// Move only the hidden group; everything else keeps its position.
	root.RemoveChild(hidden)
	root.InsertChildAt(visible.Index(), hidden)
}

// findEdgeGroups locates the hidden and visible edge groups by substring
// containment on their id. The visible name ("Edges") is a substring of the
// hidden name ("HiddenEdges"), so the hidden match must be tested first.
func findEdgeGroups(groups []*etree.Element) (hidden, visible *etree.Element) {
	for _, g := range groups {
		id := g.SelectAttrValue("id", "")
		switch {
		case hidden == nil && strings.Contains(id, freestyle.HiddenRuleName):
			hidden = g
		case visible == nil && strings.Contains(id, freestyle.VisibleRuleName):
			visible = g
		}
	}
	return hidden, visible
}

// orderHiddenFirst is the pure reordering policy: given the document-ordered
// top-level groups, return them with hidden immediately preceding visible.
// changed is false when the input already satisfies the invariant.
func orderHiddenFirst(groups []*etree.Element, hidden, visible *etree.Element) (out []*etree.Element, changed bool) {
	hiddenIdx, visibleIdx := -1, -1
	for i, g := range groups {
		switch g {
		case hidden:
			hiddenIdx = i
		case visible:
			visibleIdx = i
		}
	}
	if hiddenIdx == visibleIdx-1 {
		return groups, false
	}

	out = make([]*etree.Element, 0, len(groups))
	for _, g := range groups {
		if g == hidden {
			continue
		}
		if g == visible {
			out = append(out, hidden)
		}
		out = append(out, g)
	}
	return out, true
}

// InjectBackground inserts an opaque full-canvas rectangle as the very first
// child of the document root. Not idempotent: the orchestrator calls it
// exactly once per render, after the other stages.
func (p *Processor) InjectBackground(doc *etree.Document) {
	root := doc.Root()
	rect := etree.NewElement("rect")
	rect.CreateAttr("id", "background")
	rect.CreateAttr("x", "0")
	rect.CreateAttr("y", "0")
	rect.CreateAttr("width", "100%")
	rect.CreateAttr("height", "100%")
	rect.CreateAttr("fill", backgroundFill)
	root.InsertChildAt(0, rect)
}

// walk applies fn to el and every descendant element in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}
