package component

import "image/color"

// Point is a small lit sphere drawn as a projected disc.
type Point struct {
	Radius float64
	Color  color.NRGBA
}

var PointComponent = NewComponent[Point]()
