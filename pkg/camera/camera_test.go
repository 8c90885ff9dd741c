package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/breckenedge/lego-part-renderer/pkg/geom"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func unitCube() []geom.Vec3 {
	var pts []geom.Vec3
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-0.5, 0.5} {
			for _, z := range []float64{-0.5, 0.5} {
				pts = append(pts, geom.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

func TestViewDirection(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     geom.Vec3
	}{
		{"front", 0, 0, geom.Vec3{X: 0, Y: -1, Z: 0}},
		{"top", 90, 0, geom.Vec3{X: 0, Y: 0, Z: 1}},
		{"top ignores longitude", 90, 123, geom.Vec3{X: 0, Y: 0, Z: 1}},
		{"side", 0, 90, geom.Vec3{X: 1, Y: 0, Z: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewDirection(tt.lat, tt.lon)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) || !almostEqual(got.Z, tt.want.Z) {
				t.Errorf("ViewDirection(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
			if !almostEqual(got.Length(), 1) {
				t.Errorf("direction not unit length: %v", got.Length())
			}
		})
	}
}

func TestFrameEmpty(t *testing.T) {
	if _, err := Frame(nil, Options{Aspect: 1}); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
}

func TestFrameUnitCubeIsometric(t *testing.T) {
	opts := Options{LatitudeDeg: 30, LongitudeDeg: 45, Padding: 0.03, Aspect: 1}
	spec, err := Frame(unitCube(), opts)
	if err != nil {
		t.Fatal(err)
	}

	// The cube is centered on every axis, so no shift is needed.
	if !almostEqual(spec.ShiftX, 0) || !almostEqual(spec.ShiftY, 0) {
		t.Errorf("shift = (%v, %v), want (0, 0)", spec.ShiftX, spec.ShiftY)
	}

	// The binding extent is vertical: for a unit cube the projected y
	// extent is |up.X| + |up.Y| + |up.Z| for the camera's up axis.
	up := spec.Basis.Up
	extY := math.Abs(up.X) + math.Abs(up.Y) + math.Abs(up.Z)
	if want := extY / (1 - 2*opts.Padding); !almostEqual(spec.OrthoScale, want) {
		t.Errorf("OrthoScale = %v, want %v", spec.OrthoScale, want)
	}

	// Camera sits five extents away from the center along the view axis.
	if got, want := spec.Position.Length(), 5.0; !almostEqual(got, want) {
		t.Errorf("camera distance = %v, want %v", got, want)
	}
	if spec.ClipStart <= 0 || spec.ClipEnd <= spec.ClipStart {
		t.Errorf("bad clip planes: [%v, %v]", spec.ClipStart, spec.ClipEnd)
	}
}

func TestFrameAsymmetricGeometryShifts(t *testing.T) {
	// A right triangle in the XY plane viewed from lon=45: the projected
	// extent midpoint does not coincide with the bounding-box center, so a
	// horizontal shift is required.
	//
	// With right = (1,1,0)/sqrt2 the projections of the vertices are
	// {0, sqrt2/2, sqrt2/2}; their midpoint sits sqrt2/4 left of the box
	// center's projection, giving shiftX = (sqrt2/4) / orthoScale = 0.5.
	pts := []geom.Vec3{{}, {X: 1}, {Y: 1}}
	spec, err := Frame(pts, Options{LatitudeDeg: 0, LongitudeDeg: 45, Padding: 0, Aspect: 1})
	if err != nil {
		t.Fatal(err)
	}

	if want := math.Sqrt2 / 2; !almostEqual(spec.OrthoScale, want) {
		t.Errorf("OrthoScale = %v, want %v", spec.OrthoScale, want)
	}
	if !almostEqual(spec.ShiftX, 0.5) {
		t.Errorf("ShiftX = %v, want 0.5", spec.ShiftX)
	}
	if !almostEqual(spec.ShiftY, 0) {
		t.Errorf("ShiftY = %v, want 0", spec.ShiftY)
	}
}

func TestFramePaddingMonotonic(t *testing.T) {
	prev := 0.0
	for _, p := range []float64{0, 0.1, 0.25, 0.4, 0.49} {
		spec, err := Frame(unitCube(), Options{LatitudeDeg: 30, LongitudeDeg: 45, Padding: p, Aspect: 1})
		if err != nil {
			t.Fatal(err)
		}
		if spec.OrthoScale <= prev {
			t.Errorf("padding %v: scale %v not greater than %v", p, spec.OrthoScale, prev)
		}
		prev = spec.OrthoScale
	}
}

func TestFramePaddingZeroIsTight(t *testing.T) {
	spec, err := Frame(unitCube(), Options{LatitudeDeg: 30, LongitudeDeg: 45, Padding: 0, Aspect: 1})
	if err != nil {
		t.Fatal(err)
	}
	up := spec.Basis.Up
	extY := math.Abs(up.X) + math.Abs(up.Y) + math.Abs(up.Z)
	if !almostEqual(spec.OrthoScale, extY) {
		t.Errorf("zero padding scale = %v, want exact extent %v", spec.OrthoScale, extY)
	}
}

func TestFrameDegeneratePointClamps(t *testing.T) {
	spec, err := Frame([]geom.Vec3{{X: 1, Y: 2, Z: 3}}, Options{LatitudeDeg: 30, LongitudeDeg: 45, Padding: 0.03, Aspect: 1})
	if err != nil {
		t.Fatal(err)
	}
	if spec.OrthoScale <= 0 {
		t.Fatalf("degenerate geometry produced non-positive scale %v", spec.OrthoScale)
	}
	// Shifts must be finite even though the extent is zero.
	if math.IsNaN(spec.ShiftX) || math.IsInf(spec.ShiftX, 0) ||
		math.IsNaN(spec.ShiftY) || math.IsInf(spec.ShiftY, 0) {
		t.Errorf("shift not finite: (%v, %v)", spec.ShiftX, spec.ShiftY)
	}
}

func TestFramePositiveScaleForAnyGeometry(t *testing.T) {
	shapes := map[string][]geom.Vec3{
		"cube":       unitCube(),
		"flat plate": {{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}},
		"line":       {{X: -2}, {X: 2}},
	}
	for name, pts := range shapes {
		t.Run(name, func(t *testing.T) {
			spec, err := Frame(pts, Options{LatitudeDeg: 45, LongitudeDeg: 30, Padding: 0.1, Aspect: 1.5})
			if err != nil {
				t.Fatal(err)
			}
			if spec.OrthoScale <= 0 {
				t.Errorf("OrthoScale = %v, want > 0", spec.OrthoScale)
			}
		})
	}
}
