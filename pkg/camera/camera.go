// Package camera solves for an orthographic camera that tightly frames a set
// of world-space points from a configurable viewing angle.
//
// The solver places the camera along a latitude/longitude direction from the
// geometric center of the points, builds a look-at basis, projects every
// point into the image plane, and derives the orthographic scale and shift
// that center the projection with a symmetric padding margin.
package camera

import (
	"errors"
	"math"

	"github.com/breckenedge/lego-part-renderer/pkg/geom"
)

// ErrNoGeometry is returned by Frame when there are no points to frame.
// Callers should treat it as a degraded condition, not a failure: skip
// framing and let the renderer keep its default camera.
var ErrNoGeometry = errors.New("no geometry to frame")

const (
	// distanceFactor is how many multiples of the bounding extent the
	// camera sits from the center. Orthographic projection makes the exact
	// distance irrelevant to apparent size; it only has to keep all
	// geometry between the clip planes.
	distanceFactor = 5

	// minOrthoScale is the floor applied to the solved scale so that
	// point-like geometry never produces a zero scale (which would divide
	// by zero in the shift computation).
	minOrthoScale = 1e-6

	// Clip planes sized for very small and very large parts alike.
	defaultClipStart = 0.0001
	defaultClipEnd   = 100000
)

// Spec is a complete orthographic camera description, ready for the
// external renderer to consume.
type Spec struct {
	Position   geom.Vec3
	Basis      geom.Basis
	OrthoScale float64 // vertical world-space span of the frame
	ShiftX     float64 // normalized image-space shift
	ShiftY     float64
	ClipStart  float64
	ClipEnd    float64
}

// Options are the framing inputs: viewing direction angles in degrees, the
// symmetric padding fraction (0 <= Padding < 0.5), and the target image
// aspect ratio (width / height).
type Options struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	Padding      float64
	Aspect       float64
}

// ViewDirection converts latitude/longitude viewing angles into a unit
// direction from the subject toward the camera. At lat=0, lon=0 the camera
// sits on the -Y axis; at lat=90 it looks straight down regardless of lon.
func ViewDirection(latDeg, lonDeg float64) geom.Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return geom.Vec3{
		X: math.Cos(lat) * math.Sin(lon),
		Y: -math.Cos(lat) * math.Cos(lon),
		Z: math.Sin(lat),
	}.Normalize()
}

// Frame computes the camera that frames all the given world-space points.
//
// Degenerate inputs are handled explicitly: an empty point set returns
// ErrNoGeometry, and a point-like set (zero projected extent) produces a
// clamped minimum scale rather than zero.
func Frame(points []geom.Vec3, opts Options) (*Spec, error) {
	if len(points) == 0 {
		return nil, ErrNoGeometry
	}

	box := geom.BoxOf(points)
	center := box.Center()
	size := box.MaxExtent()

	dir := ViewDirection(opts.LatitudeDeg, opts.LongitudeDeg)
	position := center.Add(dir.Scale(size * distanceFactor))
	basis := geom.LookAt(position, center)

	minVx, maxVx := math.Inf(1), math.Inf(-1)
	minVy, maxVy := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		vx, vy := basis.ProjectXY(position, p)
		minVx = math.Min(minVx, vx)
		maxVx = math.Max(maxVx, vx)
		minVy = math.Min(minVy, vy)
		maxVy = math.Max(maxVy, vy)
	}

	extX := maxVx - minVx
	extY := maxVy - minVy

	// The orthographic scale is the vertical world-space span of the frame;
	// the horizontal span is scale * aspect. Fit whichever projected extent
	// is binding, then widen by the padding margin.
	scale := math.Max(extX/opts.Aspect, extY) / (1 - 2*opts.Padding)
	if scale < minOrthoScale {
		scale = minOrthoScale
	}

	return &Spec{
		Position:   position,
		Basis:      basis,
		OrthoScale: scale,
		ShiftX:     -(minVx + maxVx) / 2 / (scale * opts.Aspect),
		ShiftY:     -(minVy + maxVy) / 2 / scale,
		ClipStart:  defaultClipStart,
		ClipEnd:    defaultClipEnd,
	}, nil
}
