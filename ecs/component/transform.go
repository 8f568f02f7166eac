package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is a node's local placement. Rotation is kept as a unit quaternion.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

var TransformComponent = NewComponent[Transform]()

// NewTransform returns an identity transform at pos.
func NewTransform(pos mgl64.Vec3) Transform {
	return Transform{
		Position: pos,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// EulerXYZ builds a rotation from intrinsic X, then Y, then Z angles.
func EulerXYZ(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(x, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(z, mgl64.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz)
}

// RotateOnAxis rotates the transform by angle around axis in its own local space.
func (t *Transform) RotateOnAxis(axis mgl64.Vec3, angle float64) {
	q := mgl64.QuatRotate(angle, axis.Normalize())
	t.Rotation = t.Rotation.Mul(q).Normalize()
}

// Matrix returns the local-to-world matrix T * R * S.
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	rot := t.Rotation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	m := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	m = m.Mul4(rot.Mat4())
	return m.Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
