package geom

// worldUp is the scene's up axis (Z-up, as Blender uses).
var worldUp = Vec3{0, 0, 1}

// Basis is a right-handed orthonormal camera frame. The camera looks along
// -Back; Right and Up span the image plane.
type Basis struct {
	Right, Up, Back Vec3
}

// LookAt builds the camera basis for a camera at position looking toward
// target, with Up kept as close to the world up axis as possible. When the
// view direction is (anti)parallel to world up, the world Y axis is used as
// the up reference instead.
func LookAt(position, target Vec3) Basis {
	back := position.Sub(target).Normalize()

	ref := worldUp
	right := ref.Cross(back)
	if right.Length() < 1e-9 {
		ref = Vec3{0, 1, 0}
		right = ref.Cross(back)
	}
	right = right.Normalize()

	return Basis{
		Right: right,
		Up:    back.Cross(right),
		Back:  back,
	}
}

// ProjectXY maps world point p into the image plane of a camera with this
// basis at the given position, returning camera-local x and y.
func (b Basis) ProjectXY(position, p Vec3) (float64, float64) {
	d := p.Sub(position)
	return d.Dot(b.Right), d.Dot(b.Up)
}
