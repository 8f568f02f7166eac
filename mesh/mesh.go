// Package mesh holds indexed triangle geometry and the primitive shapes the scene is built from.
package mesh

import (
	"errors"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrIndexRange = errors.New("mesh: index out of range")

// Geometry is an indexed triangle list. Normals, UVs and Colors are optional but, when
// present, have one entry per position. UVs follow the glTF convention (v grows downwards).
type Geometry struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	UVs       []mgl64.Vec2
	Colors    []color.NRGBA
	Indices   []uint32
}

// Triangles returns the number of triangles.
func (g *Geometry) Triangles() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// Validate checks that every index refers to an existing vertex.
func (g *Geometry) Validate() error {
	if len(g.Indices)%3 != 0 {
		return errors.New("mesh: index count is not a multiple of 3")
	}
	n := uint32(len(g.Positions))
	for _, i := range g.Indices {
		if i >= n {
			return ErrIndexRange
		}
	}
	if len(g.Normals) != 0 && len(g.Normals) != len(g.Positions) {
		return errors.New("mesh: normal count mismatch")
	}
	if len(g.UVs) != 0 && len(g.UVs) != len(g.Positions) {
		return errors.New("mesh: uv count mismatch")
	}
	if len(g.Colors) != 0 && len(g.Colors) != len(g.Positions) {
		return errors.New("mesh: color count mismatch")
	}
	return nil
}

// Append adds other to g with every position transformed by m. An optional
// attribute survives only if both geometries carry it.
func (g *Geometry) Append(other *Geometry, m mgl64.Mat4) {
	first := len(g.Positions) == 0
	base := uint32(len(g.Positions))
	normalMat := m.Mat3().Inv().Transpose()
	hasNormals := len(other.Normals) == len(other.Positions) && (first || len(g.Normals) == len(g.Positions))
	hasUVs := len(other.UVs) == len(other.Positions) && (first || len(g.UVs) == len(g.Positions))
	hasColors := len(other.Colors) == len(other.Positions) && (first || len(g.Colors) == len(g.Positions))

	for i, p := range other.Positions {
		g.Positions = append(g.Positions, mgl64.TransformCoordinate(p, m))
		if hasNormals {
			g.Normals = append(g.Normals, normalMat.Mul3x1(other.Normals[i]).Normalize())
		}
		if hasUVs {
			g.UVs = append(g.UVs, other.UVs[i])
		}
		if hasColors {
			g.Colors = append(g.Colors, other.Colors[i])
		}
	}
	for _, i := range other.Indices {
		g.Indices = append(g.Indices, base+i)
	}
	if !hasNormals {
		g.Normals = nil
	}
	if !hasUVs {
		g.UVs = nil
	}
	if !hasColors {
		g.Colors = nil
	}
}

// Bounds returns the axis-aligned extent of the positions.
func (g *Geometry) Bounds() (lo, hi mgl64.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	lo, hi = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}
