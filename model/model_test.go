package model

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/orbitfolio/mesh"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestReadInvalidPath(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestReadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.glb")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatalf("expected error for garbage file")
	}
}

func TestLoaderReportsFailureOnce(t *testing.T) {
	l := NewLoader(t.TempDir(), quietLogger())

	var loaded, failed int
	var got error
	l.Load(context.Background(), "missing.glb", func(*Model) { loaded++ }, func(err error) {
		failed++
		got = err
	})
	l.Wait()

	if loaded != 0 || failed != 1 {
		t.Fatalf("loaded=%d failed=%d, want 0/1", loaded, failed)
	}
	if got == nil {
		t.Fatalf("error callback got nil error")
	}
}

func TestLoaderDeliversModel(t *testing.T) {
	l := NewLoader("assets", quietLogger())
	want := &Model{Name: "cube.glb", Geometry: mesh.Plane(1, 1)}
	var path string
	l.read = func(p string) (*Model, error) {
		path = p
		return want, nil
	}

	results := make(chan *Model, 1)
	l.Load(context.Background(), "cube.glb", func(m *Model) { results <- m }, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})
	l.Wait()

	if got := <-results; got != want {
		t.Fatalf("got model %p, want %p", got, want)
	}
	if path != filepath.Join("assets", "cube.glb") {
		t.Fatalf("resolved path = %q", path)
	}
}

func TestLoaderCancelled(t *testing.T) {
	l := NewLoader("", quietLogger())
	l.read = func(string) (*Model, error) {
		return &Model{Geometry: mesh.Plane(1, 1)}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	l.Load(ctx, "x.glb", func(*Model) { t.Errorf("onLoad called after cancel") }, func(err error) { got = err })
	l.Wait()

	if !errors.Is(got, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", got)
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	if _, err := Decode(&gltf.Document{}); !errors.Is(err, ErrNoMeshes) {
		t.Fatalf("err = %v, want ErrNoMeshes", err)
	}
}

func TestLoaderRecoversDecoderPanic(t *testing.T) {
	l := NewLoader("", quietLogger())
	l.read = func(string) (*Model, error) {
		panic("accessor out of range")
	}

	var got error
	l.Load(context.Background(), "bad.glb", func(*Model) { t.Errorf("onLoad called for panicking read") }, func(err error) { got = err })
	l.Wait()

	if !errors.Is(got, ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", got)
	}
}

// triangleDoc returns a document holding one triangle mesh (mesh 0) and no nodes.
func triangleDoc(indexed bool) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	prim := &gltf.Primitive{Attributes: map[string]int{gltf.POSITION: pos}}
	if indexed {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2}))
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	return doc
}

func TestReadDanglingNode(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Scenes[0].Nodes = []int{3}
	path := filepath.Join(t.TempDir(), "dangling.gltf")
	if err := gltf.Save(doc, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := Read(path); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestDecodeRejectsBadIndices(t *testing.T) {
	cases := []struct {
		name  string
		build func() *gltf.Document
	}{
		{
			name: "default_scene",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Scene = gltf.Index(4)
				return doc
			},
		},
		{
			name: "root_node",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Scenes[0].Nodes = []int{1}
				return doc
			},
		},
		{
			name: "node_mesh",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(2)}}
				doc.Scenes[0].Nodes = []int{0}
				return doc
			},
		},
		{
			name: "child",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Nodes = []*gltf.Node{{Children: []int{7}}}
				doc.Scenes[0].Nodes = []int{0}
				return doc
			},
		},
		{
			name: "position_accessor",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 99
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
				return doc
			},
		},
		{
			name: "index_accessor",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Meshes[0].Primitives[0].Indices = gltf.Index(99)
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
				return doc
			},
		},
		{
			name: "material",
			build: func() *gltf.Document {
				doc := triangleDoc(true)
				doc.Meshes[0].Primitives[0].Material = gltf.Index(5)
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
				return doc
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.build()); !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("err = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name      string
		indexed   bool
		nodes     []*gltf.Node
		roots     []int
		noScenes  bool
		positions []mgl64.Vec3
		indices   []uint32
	}{
		{
			name:      "translated_node",
			indexed:   true,
			nodes:     []*gltf.Node{{Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}}},
			roots:     []int{0},
			positions: []mgl64.Vec3{{10, 0, 0}, {11, 0, 0}, {10, 1, 0}},
			indices:   []uint32{0, 1, 2},
		},
		{
			name:    "child_inherits_parent",
			indexed: true,
			nodes: []*gltf.Node{
				{Children: []int{1}, Scale: [3]float64{2, 2, 2}},
				{Mesh: gltf.Index(0), Translation: [3]float64{1, 0, 0}},
			},
			roots:     []int{0},
			positions: []mgl64.Vec3{{2, 0, 0}, {4, 0, 0}, {2, 2, 0}},
			indices:   []uint32{0, 1, 2},
		},
		{
			name:    "matrix_node",
			indexed: true,
			nodes: []*gltf.Node{{
				Mesh:   gltf.Index(0),
				Matrix: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 5, 0, 1},
			}},
			roots:     []int{0},
			positions: []mgl64.Vec3{{0, 5, 0}, {1, 5, 0}, {0, 6, 0}},
			indices:   []uint32{0, 1, 2},
		},
		{
			name:      "non_indexed",
			nodes:     []*gltf.Node{{Mesh: gltf.Index(0)}},
			roots:     []int{0},
			positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			indices:   []uint32{0, 1, 2},
		},
		{
			name:    "two_instances_offset_indices",
			indexed: true,
			nodes: []*gltf.Node{
				{Mesh: gltf.Index(0)},
				{Mesh: gltf.Index(0), Translation: [3]float64{0, 0, -1}},
			},
			roots: []int{0, 1},
			positions: []mgl64.Vec3{
				{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
				{0, 0, -1}, {1, 0, -1}, {0, 1, -1},
			},
			indices: []uint32{0, 1, 2, 3, 4, 5},
		},
		{
			name:      "no_scenes_uses_meshes",
			indexed:   true,
			noScenes:  true,
			positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			indices:   []uint32{0, 1, 2},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := triangleDoc(tc.indexed)
			doc.Nodes = tc.nodes
			doc.Scenes[0].Nodes = tc.roots
			if tc.noScenes {
				doc.Scenes = nil
				doc.Scene = nil
			}

			m, err := Decode(doc)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			g := m.Geometry
			if len(g.Positions) != len(tc.positions) {
				t.Fatalf("got %d positions, want %d", len(g.Positions), len(tc.positions))
			}
			for i, want := range tc.positions {
				if !approxVec(g.Positions[i], want) {
					t.Fatalf("position %d = %v, want %v", i, g.Positions[i], want)
				}
			}
			if len(g.Indices) != len(tc.indices) {
				t.Fatalf("indices = %v, want %v", g.Indices, tc.indices)
			}
			for i := range tc.indices {
				if g.Indices[i] != tc.indices[i] {
					t.Fatalf("indices = %v, want %v", g.Indices, tc.indices)
				}
			}
			if m.Texture != nil {
				t.Fatalf("unexpected texture")
			}
		})
	}
}

func TestDecodeBaseColor(t *testing.T) {
	doc := triangleDoc(true)
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0, 0, 1}},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	m, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := color.NRGBA{R: 0xff, A: 0xff}
	for i, c := range m.Geometry.Colors {
		if c != want {
			t.Fatalf("color %d = %v, want %v", i, c, want)
		}
	}
}

func TestDecodeBaseColorTexture(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 1, color.NRGBA{B: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	doc := triangleDoc(true)
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	doc.Meshes[0].Primitives[0].Attributes[gltf.TEXCOORD_0] = uv
	img, err := modeler.WriteImage(doc, "tex.png", "image/png", &buf)
	if err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(img)}}
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	m, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Texture == nil {
		t.Fatalf("texture not decoded")
	}
	if b := m.Texture.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("texture bounds = %v", b)
	}
	if _, _, b, _ := m.Texture.At(1, 1).RGBA(); b != 0xffff {
		t.Fatalf("texel (1,1) blue = %#x, want 0xffff", b)
	}
	if len(m.Geometry.UVs) != 3 {
		t.Fatalf("got %d uvs, want 3", len(m.Geometry.UVs))
	}
}

func TestDecodeMissingTextureImage(t *testing.T) {
	doc := triangleDoc(true)
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	doc.Meshes[0].Primitives[0].Attributes[gltf.TEXCOORD_0] = uv
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(3)}}
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	if _, err := Decode(doc); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func approxVec(a, b mgl64.Vec3) bool {
	for k := 0; k < 3; k++ {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			return false
		}
	}
	return true
}
