// Package scene models the object list reported by the external renderer's
// scene inspector and derives the world-space bounding geometry the camera
// solver consumes.
package scene

import "github.com/breckenedge/lego-part-renderer/pkg/geom"

// Kind identifies the type of a scene object, as reported by the inspector.
type Kind string

// Object kinds that can appear in an inspection dump. Only meshes carry
// bounding geometry; everything else (empties, lights, cameras) is ignored
// when framing.
const (
	KindMesh   Kind = "MESH"
	KindEmpty  Kind = "EMPTY"
	KindCamera Kind = "CAMERA"
	KindLight  Kind = "LIGHT"
)

// Object is one entry in the renderer's scene graph: a name, a kind, the
// object-to-world transform, and the eight corners of the object-local
// axis-aligned bounding box.
type Object struct {
	Name        string
	Kind        Kind
	MatrixWorld geom.Mat4
	BoundBox    [8]geom.Vec3
}

// WorldCorners flattens the bounding corners of every mesh object into world
// space. Non-mesh objects contribute nothing. An empty result is valid and
// means there is no geometry to frame.
func WorldCorners(objects []Object) []geom.Vec3 {
	var corners []geom.Vec3
	for _, obj := range objects {
		if obj.Kind != KindMesh {
			continue
		}
		for _, c := range obj.BoundBox {
			corners = append(corners, obj.MatrixWorld.MulPoint(c))
		}
	}
	return corners
}

// UnitBoxCorners returns the eight corners of the axis-aligned box spanning
// [min, max] on every axis. Useful for constructing test scenes.
func UnitBoxCorners(min, max float64) [8]geom.Vec3 {
	var out [8]geom.Vec3
	i := 0
	for _, x := range [2]float64{min, max} {
		for _, y := range [2]float64{min, max} {
			for _, z := range [2]float64{min, max} {
				out[i] = geom.Vec3{X: x, Y: y, Z: z}
				i++
			}
		}
	}
	return out
}
