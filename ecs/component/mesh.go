package component

import (
	"image/color"

	"github.com/milk9111/orbitfolio/mesh"
)

// Material describes how a mesh is shaded. Texture is a key into the render image registry.
type Material struct {
	Color       color.NRGBA
	Texture     string
	Unlit       bool
	DoubleSided bool
}

// MeshRenderer draws a geometry with a material at the entity's Transform.
type MeshRenderer struct {
	Geometry *mesh.Geometry
	Material Material
}

var MeshRendererComponent = NewComponent[MeshRenderer]()
