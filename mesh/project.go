package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Viewport maps clip space onto a width x height pixel target with y pointing down.
type Viewport struct {
	ViewProj mgl64.Mat4
	Width    float64
	Height   float64
	Near     float64
}

// ScreenPoint is a projected vertex. W is the view-space depth.
type ScreenPoint struct {
	X, Y float64
	W    float64
}

// Project maps a world position to pixels. ok is false for points at or behind the near plane.
func (vp Viewport) Project(p mgl64.Vec3) (ScreenPoint, bool) {
	c := vp.ViewProj.Mul4x1(p.Vec4(1))
	w := c.W()
	if w <= vp.Near || math.IsNaN(w) {
		return ScreenPoint{}, false
	}
	return ScreenPoint{
		X: (c.X()/w + 1) / 2 * vp.Width,
		Y: (1 - c.Y()/w) / 2 * vp.Height,
		W: w,
	}, true
}

// Offscreen reports whether a triangle lies entirely beyond one edge of the target.
func (vp Viewport) Offscreen(a, b, c ScreenPoint) bool {
	return (a.X < 0 && b.X < 0 && c.X < 0) ||
		(a.Y < 0 && b.Y < 0 && c.Y < 0) ||
		(a.X > vp.Width && b.X > vp.Width && c.X > vp.Width) ||
		(a.Y > vp.Height && b.Y > vp.Height && c.Y > vp.Height)
}

// FrontFacing reports whether a, b, c wind counter-clockwise as seen on screen.
// Screen y points down, so the sign of the area is inverted.
func FrontFacing(a, b, c ScreenPoint) bool {
	area := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	return area < 0
}

// PixelRadius returns the on-screen radius of a sphere of radius r at depth w.
func PixelRadius(r, w, fovY, height float64) float64 {
	if w <= 0 {
		return 0
	}
	return r * (height / 2) / (math.Tan(mgl64.DegToRad(fovY)/2) * w)
}
