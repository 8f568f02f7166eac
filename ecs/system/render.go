package system

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
	"github.com/milk9111/orbitfolio/ecs/render"
	"github.com/milk9111/orbitfolio/mesh"
)

// maxBatchVertices keeps every batch addressable by uint16 indices.
const maxBatchVertices = 1<<16 - 3

// starSides is the polygon used to approximate a star's disc.
const starSides = 6

type triangle struct {
	depth float64
	src   *ebiten.Image
	v     [3]ebiten.Vertex
}

type pointLight struct {
	pos       mgl64.Vec3
	color     [3]float64
	intensity float64
}

type lighting struct {
	ambient [3]float64
	points  []pointLight
}

// RenderSystem projects every mesh and point in the world onto the screen,
// sorted back to front.
type RenderSystem struct {
	images *render.Registry

	white    *ebiten.Image
	whiteSub *ebiten.Image

	tris     []triangle
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewRenderSystem(images *render.Registry) *RenderSystem {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &RenderSystem{
		images:   images,
		white:    white,
		whiteSub: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// Draw renders the world as seen by its first camera.
func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	camEntity, ok := w.First(component.CameraComponent.ID())
	if !ok {
		return
	}
	cam, _ := ecs.Get(w, camEntity, component.CameraComponent)
	camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent)
	if !ok {
		return
	}

	bounds := screen.Bounds()
	vp := mesh.Viewport{
		ViewProj: cam.Projection().Mul4(component.View(camTransform)),
		Width:    float64(bounds.Dx()),
		Height:   float64(bounds.Dy()),
		Near:     cam.Near,
	}

	r.drawBackground(w, screen)

	light := collectLights(w)
	r.tris = r.tris[:0]
	for _, e := range w.Query(component.MeshRendererComponent.ID(), component.TransformComponent.ID()) {
		mr, _ := ecs.Get(w, e, component.MeshRendererComponent)
		t, _ := ecs.Get(w, e, component.TransformComponent)
		r.collectMesh(vp, camTransform.Position, light, mr, t)
	}
	for _, e := range w.Query(component.PointComponent.ID(), component.TransformComponent.ID()) {
		p, _ := ecs.Get(w, e, component.PointComponent)
		t, _ := ecs.Get(w, e, component.TransformComponent)
		r.collectPoint(vp, cam.FovY, light, p, t.Position)
	}

	sort.Slice(r.tris, func(i, j int) bool { return r.tris[i].depth > r.tris[j].depth })
	r.flushSorted(screen)
}

func (r *RenderSystem) drawBackground(w *ecs.World, screen *ebiten.Image) {
	e, ok := w.First(component.BackgroundComponent.ID())
	if !ok {
		return
	}
	bg, _ := ecs.Get(w, e, component.BackgroundComponent)
	img := r.images.Image(bg.Texture)
	if img == nil {
		return
	}
	sb, ib := screen.Bounds(), img.Bounds()
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(sb.Dx())/float64(ib.Dx()), float64(sb.Dy())/float64(ib.Dy()))
	screen.DrawImage(img, op)
}

func collectLights(w *ecs.World) lighting {
	var l lighting
	ecs.ForEach(w, component.LightComponent, func(e ecs.Entity, light component.Light) {
		c := unitRGB(light.Color)
		switch light.Kind {
		case component.LightAmbient:
			for k := range l.ambient {
				l.ambient[k] += c[k] * light.Intensity
			}
		case component.LightPoint:
			t, ok := ecs.Get(w, e, component.TransformComponent)
			if !ok {
				return
			}
			l.points = append(l.points, pointLight{pos: t.Position, color: c, intensity: light.Intensity})
		}
	})
	return l
}

// shade returns the light reaching a surface at pos with normal n. Point lights
// fall off with the inverse square of distance.
func (l lighting) shade(pos, n mgl64.Vec3) [3]float64 {
	out := l.ambient
	for _, p := range l.points {
		d := p.pos.Sub(pos)
		dist2 := d.Dot(d)
		if dist2 == 0 {
			continue
		}
		lambert := n.Dot(d.Normalize())
		if lambert <= 0 {
			continue
		}
		irradiance := p.intensity / dist2 * lambert / math.Pi
		for k := range out {
			out[k] += p.color[k] * irradiance
		}
	}
	return out
}

func (r *RenderSystem) collectMesh(vp mesh.Viewport, eye mgl64.Vec3, light lighting, mr component.MeshRenderer, t component.Transform) {
	g := mr.Geometry
	if g == nil || len(g.Indices) == 0 {
		return
	}

	model := t.Matrix()
	mirrored := model.Mat3().Det() < 0

	src := r.whiteSub
	var texW, texH, texX, texY float64
	if mr.Material.Texture != "" && len(g.UVs) == len(g.Positions) {
		if img := r.images.Image(mr.Material.Texture); img != nil {
			src = img
			b := img.Bounds()
			texW, texH = float64(b.Dx()), float64(b.Dy())
			texX, texY = float64(b.Min.X), float64(b.Min.Y)
		}
	}
	textured := src != r.whiteSub
	base := unitRGBA(mr.Material.Color)

	world := make([]mgl64.Vec3, len(g.Positions))
	screen := make([]mesh.ScreenPoint, len(g.Positions))
	visible := make([]bool, len(g.Positions))
	for i, p := range g.Positions {
		world[i] = mgl64.TransformCoordinate(p, model)
		screen[i], visible[i] = vp.Project(world[i])
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		ia, ib, ic := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if !visible[ia] || !visible[ib] || !visible[ic] {
			continue
		}
		a, b, c := screen[ia], screen[ib], screen[ic]
		if vp.Offscreen(a, b, c) {
			continue
		}

		front := mesh.FrontFacing(a, b, c) != mirrored
		if !front && !mr.Material.DoubleSided {
			continue
		}

		normal := world[ib].Sub(world[ia]).Cross(world[ic].Sub(world[ia]))
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		if mirrored {
			normal = normal.Mul(-1)
		}
		if normal.Dot(eye.Sub(world[ia])) < 0 {
			normal = normal.Mul(-1)
		}

		factor := [3]float64{1, 1, 1}
		if !mr.Material.Unlit {
			centroid := world[ia].Add(world[ib]).Add(world[ic]).Mul(1.0 / 3)
			factor = light.shade(centroid, normal)
		}

		tri := triangle{depth: (a.W + b.W + c.W) / 3, src: src}
		for k, idx := range [3]uint32{ia, ib, ic} {
			sp := screen[idx]
			col := base
			if len(g.Colors) == len(g.Positions) {
				vc := unitRGBA(g.Colors[idx])
				for j := range col {
					col[j] *= vc[j]
				}
			}
			v := ebiten.Vertex{
				DstX:   float32(sp.X),
				DstY:   float32(sp.Y),
				SrcX:   1,
				SrcY:   1,
				ColorR: float32(clamp01(col[0] * factor[0])),
				ColorG: float32(clamp01(col[1] * factor[1])),
				ColorB: float32(clamp01(col[2] * factor[2])),
				ColorA: float32(col[3]),
			}
			if textured {
				uv := g.UVs[idx]
				v.SrcX = float32(texX + uv.X()*texW)
				v.SrcY = float32(texY + uv.Y()*texH)
			}
			tri.v[k] = v
		}
		r.tris = append(r.tris, tri)
	}
}

func (r *RenderSystem) collectPoint(vp mesh.Viewport, fovY float64, light lighting, p component.Point, pos mgl64.Vec3) {
	center, ok := vp.Project(pos)
	if !ok {
		return
	}
	radius := math.Max(mesh.PixelRadius(p.Radius, center.W, fovY, vp.Height), 0.5)
	if center.X+radius < 0 || center.Y+radius < 0 || center.X-radius > vp.Width || center.Y-radius > vp.Height {
		return
	}

	// Shade the side of the star facing the camera.
	factor := light.shade(pos, mgl64.Vec3{0, 0, 1})
	col := unitRGBA(p.Color)
	mk := func(x, y float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(x), DstY: float32(y), SrcX: 1, SrcY: 1,
			ColorR: float32(clamp01(col[0] * factor[0])),
			ColorG: float32(clamp01(col[1] * factor[1])),
			ColorB: float32(clamp01(col[2] * factor[2])),
			ColorA: float32(col[3]),
		}
	}
	mid := mk(center.X, center.Y)
	for s := 0; s < starSides; s++ {
		a0 := 2 * math.Pi * float64(s) / starSides
		a1 := 2 * math.Pi * float64(s+1) / starSides
		r.tris = append(r.tris, triangle{
			depth: center.W,
			src:   r.whiteSub,
			v: [3]ebiten.Vertex{
				mid,
				mk(center.X+radius*math.Cos(a0), center.Y+radius*math.Sin(a0)),
				mk(center.X+radius*math.Cos(a1), center.Y+radius*math.Sin(a1)),
			},
		})
	}
}

// flushSorted draws the sorted triangles, batching consecutive ones that share a source.
func (r *RenderSystem) flushSorted(screen *ebiten.Image) {
	var current *ebiten.Image
	flush := func() {
		if len(r.indices) == 0 {
			return
		}
		op := &ebiten.DrawTrianglesOptions{}
		if current != r.whiteSub {
			op.Filter = ebiten.FilterLinear
		}
		screen.DrawTriangles(r.vertices, r.indices, current, op)
		r.vertices = r.vertices[:0]
		r.indices = r.indices[:0]
	}

	for _, t := range r.tris {
		if t.src != current || len(r.vertices)+3 > maxBatchVertices {
			flush()
			current = t.src
		}
		base := uint16(len(r.vertices))
		r.vertices = append(r.vertices, t.v[0], t.v[1], t.v[2])
		r.indices = append(r.indices, base, base+1, base+2)
	}
	flush()
}

func unitRGB(c color.NRGBA) [3]float64 {
	return [3]float64{float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff}
}

func unitRGBA(c color.NRGBA) [4]float64 {
	return [4]float64{float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff, float64(c.A) / 0xff}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
