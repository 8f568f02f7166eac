package main

import (
	"flag"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
	"github.com/milk9111/orbitfolio/ecs/render"
	"github.com/milk9111/orbitfolio/ecs/system"
	"github.com/milk9111/orbitfolio/model"
)

const viewSize = 512

// viewer spins a single glTF model in front of a fixed camera.
type viewer struct {
	world    *ecs.World
	model    ecs.Entity
	renderer *system.RenderSystem
	spin     float64
}

func (v *viewer) Update() error {
	ecs.Update(v.world, v.model, component.TransformComponent, func(t *component.Transform) {
		t.RotateOnAxis(mgl64.Vec3{0, 1, 0}, v.spin)
	})
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{0x10, 0x10, 0x18, 0xff})
	v.renderer.Draw(v.world, screen)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewSize, viewSize
}

func newViewer(m *model.Model, spin float64) (*viewer, error) {
	w := ecs.NewWorld()

	// Frame the model so its bounding sphere fills most of the view.
	lo, hi := m.Geometry.Bounds()
	center := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		radius = 1
	}
	const fov = 50.0
	dist := radius / math.Sin(mgl64.DegToRad(fov/2)) * 1.1

	cam := ecs.CreateEntity(w)
	if err := ecs.Add(w, cam, component.TransformComponent, component.NewTransform(center.Add(mgl64.Vec3{0, 0, dist}))); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, cam, component.CameraComponent, component.Camera{FovY: fov, Near: dist / 100, Far: dist * 10, Aspect: 1}); err != nil {
		return nil, err
	}

	ambient := ecs.CreateEntity(w)
	if err := ecs.Add(w, ambient, component.LightComponent, component.Light{Kind: component.LightAmbient, Color: color.NRGBA{0x40, 0x40, 0x40, 0xff}, Intensity: 1}); err != nil {
		return nil, err
	}
	key := ecs.CreateEntity(w)
	if err := ecs.Add(w, key, component.TransformComponent, component.NewTransform(center.Add(mgl64.Vec3{dist, dist, dist}))); err != nil {
		return nil, err
	}
	// Unit irradiance at the model centre, which sits sqrt(3)*dist from the key light.
	keyIntensity := math.Pi * 3 * dist * dist
	if err := ecs.Add(w, key, component.LightComponent, component.Light{Kind: component.LightPoint, Color: color.NRGBA{0xff, 0xff, 0xff, 0xff}, Intensity: keyIntensity}); err != nil {
		return nil, err
	}

	images := render.NewRegistry()
	mat := component.Material{Color: color.NRGBA{0xff, 0xff, 0xff, 0xff}}
	if m.Texture != nil {
		images.Register("model", ebiten.NewImageFromImage(m.Texture))
		mat.Texture = "model"
	}

	e := ecs.CreateEntity(w)
	t := component.NewTransform(mgl64.Vec3{})
	if err := ecs.Add(w, e, component.TransformComponent, t); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, e, component.MeshRendererComponent, component.MeshRenderer{
		Geometry: m.Geometry,
		Material: mat,
	}); err != nil {
		return nil, err
	}

	return &viewer{world: w, model: e, renderer: system.NewRenderSystem(images), spin: spin}, nil
}

func main() {
	path := flag.String("model", "public/flying_saucer.glb", "glTF/GLB file to preview")
	spin := flag.Float64("spin", 0.01, "radians per frame about +Y")
	flag.Parse()

	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	entry := log.WithFields(log.Fields{"prefix": "glbview", "model": *path})

	m, err := model.Read(*path)
	if err != nil {
		entry.WithError(err).Fatal("read model")
	}
	lo, hi := m.Geometry.Bounds()
	entry.WithFields(log.Fields{
		"name":      m.Name,
		"vertices":  len(m.Geometry.Positions),
		"triangles": m.Geometry.Triangles(),
		"min":       lo,
		"max":       hi,
		"textured":  m.Texture != nil,
	}).Info("model loaded")

	v, err := newViewer(m, *spin)
	if err != nil {
		entry.WithError(err).Fatal("build viewer")
	}

	ebiten.SetWindowSize(viewSize, viewSize)
	ebiten.SetWindowTitle("glbview - " + m.Name)
	if err := ebiten.RunGame(v); err != nil {
		entry.WithError(err).Fatal("run")
	}
}
