package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSphere(t *testing.T) {
	cases := []struct {
		name      string
		w, h      int
		wantVerts int
		wantTris  int
	}{
		{"moon", 32, 32, 33 * 33, 32*32*2 - 2*32},
		{"star", 24, 24, 25 * 25, 24*24*2 - 2*24},
		{"clamped", 1, 1, 4 * 3, 3*2*2 - 2*3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := Sphere(3, c.w, c.h)
			if err := g.Validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			if len(g.Positions) != c.wantVerts {
				t.Fatalf("verts = %d, want %d", len(g.Positions), c.wantVerts)
			}
			if g.Triangles() != c.wantTris {
				t.Fatalf("tris = %d, want %d", g.Triangles(), c.wantTris)
			}
			for i, p := range g.Positions {
				if math.Abs(p.Len()-3) > 1e-9 {
					t.Fatalf("vertex %d at distance %v", i, p.Len())
				}
			}
		})
	}
}

func TestPlaneFacesPositiveZ(t *testing.T) {
	g := Plane(15, 9)
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	lo, hi := g.Bounds()
	if lo != (mgl64.Vec3{-7.5, -4.5, 0}) || hi != (mgl64.Vec3{7.5, 4.5, 0}) {
		t.Fatalf("bounds %v..%v", lo, hi)
	}
	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := g.Positions[g.Indices[i]], g.Positions[g.Indices[i+1]], g.Positions[g.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Z() <= 0 {
			t.Fatalf("triangle %d winds away from +Z: %v", i/3, n)
		}
	}
}

func TestValidate(t *testing.T) {
	g := &Geometry{
		Positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	if err := g.Validate(); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("err = %v, want ErrIndexRange", err)
	}
	g.Indices = []uint32{0, 1}
	if err := g.Validate(); err == nil {
		t.Fatalf("expected error for partial triangle")
	}
}

func TestAppendTransformsAndOffsets(t *testing.T) {
	var g Geometry
	g.Append(Plane(2, 2), mgl64.Ident4())
	g.Append(Plane(2, 2), mgl64.Translate3D(0, 0, 5))

	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(g.Positions) != 8 || g.Triangles() != 4 {
		t.Fatalf("verts=%d tris=%d", len(g.Positions), g.Triangles())
	}
	if g.Indices[6] != 4 {
		t.Fatalf("second plane indices not offset: %v", g.Indices[6:])
	}
	if z := g.Positions[5].Z(); z != 5 {
		t.Fatalf("second plane z = %v, want 5", z)
	}
	if len(g.UVs) != 8 || len(g.Normals) != 8 {
		t.Fatalf("attributes dropped: uvs=%d normals=%d", len(g.UVs), len(g.Normals))
	}
	if len(g.Colors) != 0 {
		t.Fatalf("colors should stay empty")
	}
}

func TestAppendDropsPartialAttributes(t *testing.T) {
	var g Geometry
	g.Append(Plane(1, 1), mgl64.Ident4())
	bare := &Geometry{
		Positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	g.Append(bare, mgl64.Ident4())
	if g.UVs != nil || g.Normals != nil {
		t.Fatalf("expected partial attributes to be dropped")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestProject(t *testing.T) {
	proj := mgl64.Perspective(mgl64.DegToRad(90), 1, 0.1, 100)
	vp := Viewport{ViewProj: proj, Width: 200, Height: 100, Near: 0.1}

	cases := []struct {
		name   string
		p      mgl64.Vec3
		ok     bool
		x, y   float64
		wDepth float64
	}{
		{"center", mgl64.Vec3{0, 0, -10}, true, 100, 50, 10},
		{"right_edge", mgl64.Vec3{10, 0, -10}, true, 200, 50, 10},
		{"top_edge", mgl64.Vec3{0, 10, -10}, true, 100, 0, 10},
		{"behind", mgl64.Vec3{0, 0, 10}, false, 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sp, ok := vp.Project(c.p)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if !ok {
				return
			}
			if math.Abs(sp.X-c.x) > 1e-9 || math.Abs(sp.Y-c.y) > 1e-9 || math.Abs(sp.W-c.wDepth) > 1e-9 {
				t.Fatalf("got %+v, want (%v,%v,%v)", sp, c.x, c.y, c.wDepth)
			}
		})
	}
}

func TestFrontFacing(t *testing.T) {
	proj := mgl64.Perspective(mgl64.DegToRad(90), 1, 0.1, 100)
	vp := Viewport{ViewProj: proj, Width: 100, Height: 100, Near: 0.1}
	g := Plane(2, 2)

	project := func(offset mgl64.Vec3, mirror bool) (ScreenPoint, ScreenPoint, ScreenPoint) {
		var pts [3]ScreenPoint
		for i := 0; i < 3; i++ {
			p := g.Positions[g.Indices[i]]
			if mirror {
				p[2] = -p[2]
				p[0] = -p[0]
			}
			pts[i], _ = vp.Project(p.Add(offset))
		}
		return pts[0], pts[1], pts[2]
	}

	if a, b, c := project(mgl64.Vec3{0, 0, -5}, false); !FrontFacing(a, b, c) {
		t.Fatalf("plane facing the camera reported as back facing")
	}
	if a, b, c := project(mgl64.Vec3{0, 0, -5}, true); FrontFacing(a, b, c) {
		t.Fatalf("plane turned away reported as front facing")
	}
}

func TestPixelRadius(t *testing.T) {
	// 90 degree fov: at depth 1 the half-height spans 1 world unit.
	if got := PixelRadius(0.5, 1, 90, 200); math.Abs(got-50) > 1e-9 {
		t.Fatalf("radius = %v, want 50", got)
	}
	if got := PixelRadius(1, 0, 90, 200); got != 0 {
		t.Fatalf("radius behind camera = %v, want 0", got)
	}
}
