// Package animator drives the camera from scroll input and moves the scene's
// animated objects once per frame.
package animator

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
)

var (
	ErrAlreadyLoaded = errors.New("animator: follow object already attached")
	ErrUnknownSlot   = errors.New("animator: unknown slot")
)

// Slot names a model tracked by the animator.
type Slot int

const (
	SlotSaucer Slot = iota
	SlotEarth
	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotSaucer:
		return "saucer"
	case SlotEarth:
		return "earth"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// FollowObject is a loaded model and the local axis it spins around.
type FollowObject struct {
	Entity ecs.Entity
	Axis   mgl64.Vec3
}

// Placement is the camera transform derived from a scroll offset.
type Placement struct {
	Depth float64
	X     float64
	Yaw   float64
}

// Place computes the camera placement for scroll offset s.
func (c Config) Place(s float64) Placement {
	return Placement{
		Depth: c.BaseDepth + s*c.DepthPerScroll,
		X:     s * c.XPerScroll,
		Yaw:   s * c.YawPerScroll,
	}
}

// Animator owns the scroll offset and the follow slots. All methods must be
// called from the goroutine that runs the frame loop.
type Animator struct {
	cfg    Config
	scroll float64

	camera ecs.Entity
	moon   ecs.Entity
	moonAt float64

	follow [slotCount]*FollowObject
	frames uint64

	log logrus.FieldLogger
}

// New creates an animator for the given camera and moon entities. Either may be
// zero, in which case the corresponding updates are skipped.
func New(cfg Config, camera, moon ecs.Entity, log logrus.FieldLogger) *Animator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Animator{cfg: cfg, camera: camera, moon: moon, log: log}
}

func (a *Animator) Config() Config {
	return a.cfg
}

// Configure swaps the constants and re-places the camera for the current offset.
func (a *Animator) Configure(w *ecs.World, cfg Config) {
	a.cfg = cfg
	a.PlaceCamera(w)
}

// ScrollOffset returns the cumulative scroll offset.
func (a *Animator) ScrollOffset() float64 {
	return a.scroll
}

// Scroll accumulates one wheel event and re-places the camera immediately.
func (a *Animator) Scroll(w *ecs.World, delta float64) {
	a.scroll += delta * a.cfg.ScrollScale
	a.PlaceCamera(w)
}

// PlaceCamera overwrites the camera's x, z and yaw from the scroll offset alone.
func (a *Animator) PlaceCamera(w *ecs.World) {
	p := a.cfg.Place(a.scroll)
	ecs.Update(w, a.camera, component.TransformComponent, func(t *component.Transform) {
		t.Position = mgl64.Vec3{p.X, t.Position.Y(), p.Depth}
		t.Rotation = component.EulerXYZ(0, p.Yaw, 0)
	})
}

// Attach records a completed load. A slot moves from unloaded to loaded once.
func (a *Animator) Attach(slot Slot, obj FollowObject) error {
	if slot < 0 || slot >= slotCount {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, int(slot))
	}
	if a.follow[slot] != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, slot)
	}
	axis := obj.Axis
	if axis.Len() == 0 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	a.follow[slot] = &FollowObject{Entity: obj.Entity, Axis: axis.Normalize()}
	a.log.WithField("slot", slot).WithField("entity", obj.Entity).Info("follow object attached")
	return nil
}

// Loaded reports whether slot has been attached.
func (a *Animator) Loaded(slot Slot) bool {
	if slot < 0 || slot >= slotCount {
		return false
	}
	return a.follow[slot] != nil
}

// MoonAngle returns the accumulated moon rotation in radians.
func (a *Animator) MoonAngle() float64 {
	return a.moonAt
}

// Frames returns how many frames have been advanced.
func (a *Animator) Frames() uint64 {
	return a.frames
}

var _ ecs.System = (*Animator)(nil)

// Update advances one animation frame.
func (a *Animator) Update(w *ecs.World) {
	a.frames++

	a.moonAt += a.cfg.MoonSpin
	ecs.Update(w, a.moon, component.TransformComponent, func(t *component.Transform) {
		t.Rotation = component.EulerXYZ(a.moonAt, 0, 0)
	})

	if obj := a.follow[SlotSaucer]; obj != nil {
		a.followCamera(w, obj)
	}

	if obj := a.follow[SlotEarth]; obj != nil {
		ecs.Update(w, obj.Entity, component.TransformComponent, func(t *component.Transform) {
			t.RotateOnAxis(obj.Axis, a.cfg.EarthSpin)
		})
	}
}

func (a *Animator) followCamera(w *ecs.World, obj *FollowObject) {
	cam, ok := ecs.Get(w, a.camera, component.TransformComponent)
	if !ok {
		return
	}
	up := mgl64.Vec3{0, 1, 0}
	if c, ok := ecs.Get(w, a.camera, component.CameraComponent); ok {
		up = c.UpOrDefault()
	}
	pos := FollowPosition(cam, up, a.cfg.FollowDistance, a.cfg.FollowLateral)

	ecs.Update(w, obj.Entity, component.TransformComponent, func(t *component.Transform) {
		t.Position = pos
		t.RotateOnAxis(obj.Axis, a.cfg.SaucerSpin)
	})
}

// FollowPosition returns cam + distance*forward + lateral*right, with
// right = normalize(cross(up, forward)).
func FollowPosition(cam component.Transform, up mgl64.Vec3, distance, lateral float64) mgl64.Vec3 {
	forward := component.Forward(cam)
	right := up.Cross(forward)
	if right.Len() > 0 {
		right = right.Normalize()
	}
	return cam.Position.Add(forward.Mul(distance)).Add(right.Mul(lateral))
}
