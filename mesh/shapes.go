package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sphere builds a UV sphere centred at the origin. Segment counts are clamped to usable minimums.
func Sphere(radius float64, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)

	g := &Geometry{}
	grid := make([][]uint32, 0, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint32, 0, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			n := mgl64.Vec3{
				-math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				math.Cos(v * math.Pi),
				math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			g.Positions = append(g.Positions, n.Mul(radius))
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl64.Vec2{u, v})
			row = append(row, uint32(len(g.Positions)-1))
		}
		grid = append(grid, row)
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			// The pole rows collapse to a point; skip the degenerate half.
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// Plane builds a width x height quad in the XY plane facing +Z.
func Plane(width, height float64) *Geometry {
	hw, hh := width/2, height/2
	return &Geometry{
		Positions: []mgl64.Vec3{{-hw, hh, 0}, {hw, hh, 0}, {-hw, -hh, 0}, {hw, -hh, 0}},
		Normals:   []mgl64.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Indices:   []uint32{0, 2, 1, 2, 3, 1},
	}
}
