package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera. Its placement lives in the entity's Transform.
type Camera struct {
	FovY   float64 // degrees
	Near   float64
	Far    float64
	Aspect float64
	Up     mgl64.Vec3
}

var CameraComponent = NewComponent[Camera]()

// UpOrDefault returns the configured world-up vector, or +Y.
func (c Camera) UpOrDefault() mgl64.Vec3 {
	if c.Up == (mgl64.Vec3{}) {
		return mgl64.Vec3{0, 1, 0}
	}
	return c.Up
}

// Projection returns the perspective matrix for the current aspect.
func (c Camera) Projection() mgl64.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 || math.IsNaN(aspect) {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// View returns the world-to-camera matrix for a camera placed at t.
func View(t Transform) mgl64.Mat4 {
	t.Scale = mgl64.Vec3{1, 1, 1}
	return t.Matrix().Inv()
}

// Forward returns the unit direction a camera placed at t looks along (its local -Z).
func Forward(t Transform) mgl64.Vec3 {
	rot := t.Rotation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	return rot.Rotate(mgl64.Vec3{0, 0, -1}).Normalize()
}
