package main

import (
	"image/color"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/orbitfolio/animator"
	"github.com/milk9111/orbitfolio/config"
	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
	"github.com/milk9111/orbitfolio/ecs/render"
	"github.com/milk9111/orbitfolio/mesh"
	"github.com/milk9111/orbitfolio/model"
	"github.com/milk9111/orbitfolio/textpanel"
)

const panelTextureKey = "panel:text"

func modelTextureKey(slot animator.Slot) string {
	return "model:" + slot.String()
}

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// sceneHandles are the entities the animator drives.
type sceneHandles struct {
	camera ecs.Entity
	moon   ecs.Entity
}

type sceneBuilder struct {
	w      *ecs.World
	cfg    *config.Scene
	images *render.Registry
	assets string
	log    logrus.FieldLogger
}

func (b *sceneBuilder) spawn(name string, t component.Transform) ecs.Entity {
	e := ecs.CreateEntity(b.w)
	b.must(ecs.Add(b.w, e, component.NameComponent, component.Name(name)))
	b.must(ecs.Add(b.w, e, component.TransformComponent, t))
	return e
}

// must panics on errors that can only come from a programming mistake, like
// adding to an entity that was just created.
func (b *sceneBuilder) must(err error) {
	if err != nil {
		panic("scene: " + err.Error())
	}
}

func (b *sceneBuilder) build(aspect float64) sceneHandles {
	cfg := b.cfg
	var h sceneHandles

	h.camera = b.spawn("camera", component.NewTransform(mgl64.Vec3{0, 0, cfg.Camera.BaseDepth}))
	b.must(ecs.Add(b.w, h.camera, component.CameraComponent, component.Camera{
		FovY:   cfg.Camera.Fov,
		Near:   cfg.Camera.Near,
		Far:    cfg.Camera.Far,
		Aspect: aspect,
	}))

	if key := b.texture(cfg.Background); key != "" {
		bg := ecs.CreateEntity(b.w)
		b.must(ecs.Add(b.w, bg, component.BackgroundComponent, component.Background{Texture: key}))
	}

	ambient := b.spawn("ambient", component.NewTransform(mgl64.Vec3{}))
	b.must(ecs.Add(b.w, ambient, component.LightComponent, component.Light{
		Kind:      component.LightAmbient,
		Color:     cfg.Ambient.Color.NRGBA(),
		Intensity: cfg.Ambient.Intensity,
	}))

	sun := b.spawn("sun", component.NewTransform(cfg.Sun.Position.Vec()))
	b.must(ecs.Add(b.w, sun, component.LightComponent, component.Light{
		Kind:      component.LightPoint,
		Color:     cfg.Sun.LightColor.NRGBA(),
		Intensity: cfg.Sun.LightIntensity,
	}))
	b.must(ecs.Add(b.w, sun, component.MeshRendererComponent, component.MeshRenderer{
		Geometry: mesh.Sphere(cfg.Sun.Radius, 32, 16),
		Material: component.Material{Color: cfg.Sun.Color.NRGBA(), Unlit: true},
	}))

	b.stars()

	h.moon = b.spawn("moon", component.NewTransform(cfg.Moon.Position.Vec()))
	b.must(ecs.Add(b.w, h.moon, component.MeshRendererComponent, component.MeshRenderer{
		Geometry: mesh.Sphere(cfg.Moon.Radius, 32, 32),
		Material: component.Material{Color: white, Texture: b.texture(cfg.Moon.Texture)},
	}))

	b.panel()
	return h
}

// stars scatters points uniformly in a cube of side Spread around the origin.
func (b *sceneBuilder) stars() {
	s := b.cfg.Stars
	rng := rand.New(rand.NewPCG(uint64(s.Seed), 0))
	spread := func() float64 { return s.Spread * (rng.Float64() - 0.5) }
	for i := 0; i < s.Count; i++ {
		e := ecs.CreateEntity(b.w)
		b.must(ecs.Add(b.w, e, component.TransformComponent, component.NewTransform(mgl64.Vec3{spread(), spread(), spread()})))
		b.must(ecs.Add(b.w, e, component.PointComponent, component.Point{Radius: s.Radius, Color: s.Color.NRGBA()}))
	}
}

func (b *sceneBuilder) panel() {
	p := b.cfg.Panel
	t := component.NewTransform(p.Position.Vec())
	t.Rotation = component.EulerXYZ(0, p.Yaw, 0)
	t.RotateOnAxis(mgl64.Vec3{0, 1, 0}, p.Turn)
	if p.Mirror {
		t.Scale[0] = -1
	}

	mat := component.Material{Color: white, Unlit: true, DoubleSided: true}
	lines := make([]textpanel.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, textpanel.Line{Text: l.Text, Offset: l.Offset})
	}
	img, err := textpanel.Bake(textpanel.Options{
		Width:      p.TextureWidth,
		Height:     p.TextureHeight,
		Background: p.Background.NRGBA(),
		TextColor:  p.TextColor.NRGBA(),
		FontSize:   p.FontSize,
		Lines:      lines,
	})
	if err != nil {
		b.log.WithError(err).Warn("panel text skipped")
	} else {
		b.images.Register(panelTextureKey, img)
		mat.Texture = panelTextureKey
	}

	e := b.spawn("panel", t)
	b.must(ecs.Add(b.w, e, component.MeshRendererComponent, component.MeshRenderer{
		Geometry: mesh.Plane(p.Width, p.Height),
		Material: mat,
	}))
}

// texture loads an image into the registry and returns its key, or "" if it is unavailable.
func (b *sceneBuilder) texture(name string) string {
	if name == "" {
		return ""
	}
	if _, err := b.images.Load(b.assets, name); err != nil {
		b.log.WithError(err).WithField("texture", name).Warn("texture unavailable, using flat color")
		return ""
	}
	return name
}

// spawnModel places a loaded model and returns the follow object for the animator.
// The model's base color texture, if any, is registered under the slot's key.
func spawnModel(w *ecs.World, images *render.Registry, slot animator.Slot, m *model.Model, spec config.ModelSpec) (animator.FollowObject, error) {
	t := component.NewTransform(spec.Position.Vec())
	t.Rotation = component.EulerXYZ(spec.Tilt[0], spec.Tilt[1], spec.Tilt[2])
	if spec.Scale != 0 {
		t.Scale = mgl64.Vec3{spec.Scale, spec.Scale, spec.Scale}
	}

	mat := component.Material{Color: white}
	if m.Texture != nil && images != nil {
		key := modelTextureKey(slot)
		images.Register(key, ebiten.NewImageFromImage(m.Texture))
		mat.Texture = key
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NameComponent, component.Name(slot.String())); err != nil {
		return animator.FollowObject{}, err
	}
	if err := ecs.Add(w, e, component.TransformComponent, t); err != nil {
		return animator.FollowObject{}, err
	}
	if err := ecs.Add(w, e, component.MeshRendererComponent, component.MeshRenderer{
		Geometry: m.Geometry,
		Material: mat,
	}); err != nil {
		return animator.FollowObject{}, err
	}
	return animator.FollowObject{Entity: e, Axis: spec.Axis.Vec()}, nil
}
