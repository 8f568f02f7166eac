// Package model reads binary glTF assets into flattened scene geometry.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/milk9111/orbitfolio/mesh"
)

var (
	ErrNoMeshes   = errors.New("model: document has no triangle meshes")
	ErrOutOfRange = errors.New("model: index out of range")
)

// Model is a glTF scene baked into one geometry in model space. Texture is the
// first base color texture found, sampled with the geometry's UVs.
type Model struct {
	Name     string
	Geometry *mesh.Geometry
	Texture  image.Image
}

// Read opens and decodes the glTF or GLB file at path. Images referenced by
// relative URI are resolved next to the file.
func Read(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	d := decoder{doc: doc, dir: filepath.Dir(path)}
	m, err := d.decode()
	if err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", path, err)
	}
	m.Name = filepath.Base(path)
	return m, nil
}

// Decode flattens the document's default scene, applying node transforms.
// Only embedded images are decoded.
func Decode(doc *gltf.Document) (*Model, error) {
	d := decoder{doc: doc}
	return d.decode()
}

// maxDepth guards against cyclic node graphs in malformed files.
const maxDepth = 64

type decoder struct {
	doc     *gltf.Document
	dir     string
	geom    *mesh.Geometry
	texture image.Image
	texErr  error
}

func (d *decoder) decode() (*Model, error) {
	d.geom = &mesh.Geometry{}

	roots, err := d.roots()
	if err != nil {
		return nil, err
	}
	if roots == nil {
		for i, m := range d.doc.Meshes {
			if m == nil {
				return nil, fmt.Errorf("model: mesh %d: %w", i, ErrOutOfRange)
			}
			if err := d.appendMesh(m, mgl64.Ident4()); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range roots {
		if err := d.visit(n, mgl64.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	if len(d.geom.Indices) == 0 {
		return nil, ErrNoMeshes
	}
	if err := d.geom.Validate(); err != nil {
		return nil, err
	}
	return &Model{Geometry: d.geom, Texture: d.texture}, nil
}

// roots returns the default scene's root nodes, or nil when the document has no scenes.
func (d *decoder) roots() ([]int, error) {
	if len(d.doc.Scenes) == 0 {
		return nil, nil
	}
	idx := 0
	if d.doc.Scene != nil {
		idx = *d.doc.Scene
	}
	if idx < 0 || idx >= len(d.doc.Scenes) || d.doc.Scenes[idx] == nil {
		return nil, fmt.Errorf("model: scene %d: %w", idx, ErrOutOfRange)
	}
	return append([]int{}, d.doc.Scenes[idx].Nodes...), nil
}

func (d *decoder) node(i int) (*gltf.Node, error) {
	if i < 0 || i >= len(d.doc.Nodes) || d.doc.Nodes[i] == nil {
		return nil, fmt.Errorf("model: node %d: %w", i, ErrOutOfRange)
	}
	return d.doc.Nodes[i], nil
}

func (d *decoder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(d.doc.Accessors) || d.doc.Accessors[i] == nil {
		return nil, fmt.Errorf("model: accessor %d: %w", i, ErrOutOfRange)
	}
	return d.doc.Accessors[i], nil
}

func (d *decoder) visit(idx int, parent mgl64.Mat4, depth int) error {
	if depth > maxDepth {
		return errors.New("model: node hierarchy too deep")
	}
	n, err := d.node(idx)
	if err != nil {
		return err
	}
	world := parent.Mul4(localMatrix(n))
	if n.Mesh != nil {
		mi := *n.Mesh
		if mi < 0 || mi >= len(d.doc.Meshes) || d.doc.Meshes[mi] == nil {
			return fmt.Errorf("model: node %d mesh %d: %w", idx, mi, ErrOutOfRange)
		}
		if err := d.appendMesh(d.doc.Meshes[mi], world); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := d.visit(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix combines the node matrix with its TRS; glTF nodes carry one or the other.
func localMatrix(n *gltf.Node) mgl64.Mat4 {
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()

	trs := mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
	return mgl64.Mat4(n.MatrixOrDefault()).Mul4(trs)
}

func (d *decoder) appendMesh(m *gltf.Mesh, world mgl64.Mat4) error {
	for _, prim := range m.Primitives {
		if prim == nil || prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		part, err := d.readPrimitive(prim)
		if err != nil {
			return fmt.Errorf("model: mesh %q: %w", m.Name, err)
		}
		if part == nil {
			continue
		}
		d.geom.Append(part, world)
	}
	return nil
}

func (d *decoder) readPrimitive(prim *gltf.Primitive) (*mesh.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := d.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(d.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	part := &mesh.Geometry{Positions: make([]mgl64.Vec3, len(positions))}
	for i, p := range positions {
		part.Positions[i] = mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		part.Normals = make([]mgl64.Vec3, len(normals))
		for i, n := range normals {
			part.Normals[i] = mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := d.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		part.UVs = make([]mgl64.Vec2, len(uvs))
		for i, uv := range uvs {
			part.UVs[i] = mgl64.Vec2{float64(uv[0]), float64(uv[1])}
		}
	}

	if prim.Indices != nil {
		acc, err := d.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		part.Indices, err = modeler.ReadIndices(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		part.Indices = make([]uint32, len(positions))
		for i := range part.Indices {
			part.Indices[i] = uint32(i)
		}
	}

	mat, err := d.material(prim)
	if err != nil {
		return nil, err
	}
	base := baseColor(mat)
	part.Colors = make([]color.NRGBA, len(positions))
	for i := range part.Colors {
		part.Colors[i] = base
	}
	if d.texture == nil && len(part.UVs) == len(part.Positions) {
		if err := d.baseTexture(mat); err != nil {
			return nil, err
		}
	}
	return part, part.Validate()
}

func (d *decoder) material(prim *gltf.Primitive) (*gltf.Material, error) {
	if prim.Material == nil {
		return nil, nil
	}
	i := *prim.Material
	if i < 0 || i >= len(d.doc.Materials) {
		return nil, fmt.Errorf("model: material %d: %w", i, ErrOutOfRange)
	}
	return d.doc.Materials[i], nil
}

func baseColor(mat *gltf.Material) color.NRGBA {
	if mat == nil || mat.PBRMetallicRoughness == nil {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	f := mat.PBRMetallicRoughness.BaseColorFactorOrDefault()
	return color.NRGBA{R: unit8(f[0]), G: unit8(f[1]), B: unit8(f[2]), A: unit8(f[3])}
}

// baseTexture decodes the material's base color image into d.texture.
func (d *decoder) baseTexture(mat *gltf.Material) error {
	if mat == nil || mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return nil
	}
	ti := mat.PBRMetallicRoughness.BaseColorTexture.Index
	if ti < 0 || ti >= len(d.doc.Textures) || d.doc.Textures[ti] == nil || d.doc.Textures[ti].Source == nil {
		return fmt.Errorf("model: texture %d: %w", ti, ErrOutOfRange)
	}
	ii := *d.doc.Textures[ti].Source
	if ii < 0 || ii >= len(d.doc.Images) || d.doc.Images[ii] == nil {
		return fmt.Errorf("model: image %d: %w", ii, ErrOutOfRange)
	}

	data, err := d.imageData(d.doc.Images[ii])
	if err != nil {
		return fmt.Errorf("model: image %d: %w", ii, err)
	}
	if data == nil {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("model: decode image %d: %w", ii, err)
	}
	d.texture = img
	return nil
}

// imageData returns the encoded image bytes, or nil for an external image
// when the document was not read from disk.
func (d *decoder) imageData(img *gltf.Image) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		bv := *img.BufferView
		if bv < 0 || bv >= len(d.doc.BufferViews) || d.doc.BufferViews[bv] == nil {
			return nil, fmt.Errorf("buffer view %d: %w", bv, ErrOutOfRange)
		}
		return modeler.ReadBufferView(d.doc, d.doc.BufferViews[bv])
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "" && d.dir != "":
		return os.ReadFile(filepath.Join(d.dir, filepath.FromSlash(img.URI)))
	}
	return nil, nil
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*0xff + 0.5)
	}
}
