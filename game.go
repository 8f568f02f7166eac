package main

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/orbitfolio/animator"
	"github.com/milk9111/orbitfolio/config"
	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
	"github.com/milk9111/orbitfolio/ecs/render"
	"github.com/milk9111/orbitfolio/ecs/system"
	"github.com/milk9111/orbitfolio/model"
	"github.com/milk9111/orbitfolio/postfx"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Options struct {
	ConfigPath string
	AssetsDir  string
	HUD        bool
}

// loadResult carries a finished model load from a loader goroutine to Update.
type loadResult struct {
	slot  animator.Slot
	model *model.Model
}

type Game struct {
	opts Options
	cfg  *config.Scene
	log  logrus.FieldLogger

	world   *ecs.World
	handle  sceneHandles
	anim    *animator.Animator
	systems *ecs.Scheduler
	loop    *animator.Loop

	loader *model.Loader
	loads  chan loadResult
	cancel context.CancelFunc

	watcher *config.Watcher

	images   *render.Registry
	renderer *system.RenderSystem
	composer *postfx.Composer
	bloom    *postfx.BloomPass
	hud      *HUD

	width, height int
}

func NewGame(opts Options, log logrus.FieldLogger) (*Game, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:   opts,
		cfg:    cfg,
		log:    log,
		world:  ecs.NewWorld(),
		loads:  make(chan loadResult, int(animator.SlotEarth)+1),
		width:  baseWidth,
		height: baseHeight,
	}

	g.images = render.NewRegistry()
	b := &sceneBuilder{w: g.world, cfg: cfg, images: g.images, assets: opts.AssetsDir, log: log.WithField("prefix", "scene")}
	g.handle = b.build(float64(baseWidth) / baseHeight)

	g.anim = animator.New(animator.FromScene(cfg), g.handle.camera, g.handle.moon, log.WithField("prefix", "animator"))
	g.anim.PlaceCamera(g.world)
	g.systems = ecs.NewScheduler(g.anim)
	g.loop = animator.NewLoop(g.step)

	g.renderer = system.NewRenderSystem(g.images)
	g.bloom, err = postfx.NewBloomPass(cfg.Bloom.Strength, cfg.Bloom.Radius, cfg.Bloom.Threshold)
	if err != nil {
		return nil, err
	}
	g.composer = postfx.NewComposer(func(dst *ebiten.Image) { g.renderer.Draw(g.world, dst) }, g.bloom)

	if opts.HUD {
		g.hud = NewHUD(g.anim, g.handle.camera)
		g.systems.Add(g.hud)
	}

	g.watch()
	g.startLoads()
	return g, nil
}

func (g *Game) startLoads() {
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.loader = model.NewLoader(g.opts.AssetsDir, g.log.WithField("prefix", "loader"))

	for _, req := range []struct {
		slot animator.Slot
		spec config.ModelSpec
	}{
		{animator.SlotSaucer, g.cfg.Saucer},
		{animator.SlotEarth, g.cfg.Earth},
	} {
		if req.spec.Asset == "" {
			continue
		}
		slot := req.slot
		g.loader.Load(ctx, req.spec.Asset, func(m *model.Model) {
			g.loads <- loadResult{slot: slot, model: m}
		}, nil)
	}
}

func (g *Game) watch() {
	if g.opts.ConfigPath == "" {
		return
	}
	w, err := config.NewWatcher(g.opts.ConfigPath)
	if err != nil {
		g.log.WithError(err).Debug("config hot reload disabled")
		return
	}
	g.watcher = w
}

// Update is the host's per-frame callback.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loop.Stop()
	}
	if !g.loop.Tick() {
		g.shutdown()
		return ebiten.Termination
	}
	return nil
}

func (g *Game) step() {
	g.drainLoads()
	g.reloadConfig()

	if _, dy := ebiten.Wheel(); dy != 0 {
		// Wheel ticks are positive when scrolling up; page deltas are positive scrolling down.
		g.anim.Scroll(g.world, -dy*g.cfg.Scroll.WheelPixels)
	}

	g.systems.Update(g.world)
}

func (g *Game) drainLoads() {
	for {
		select {
		case res := <-g.loads:
			spec := g.cfg.Saucer
			if res.slot == animator.SlotEarth {
				spec = g.cfg.Earth
			}
			obj, err := spawnModel(g.world, g.images, res.slot, res.model, spec)
			if err != nil {
				g.log.WithError(err).WithField("slot", res.slot).Error("spawn model")
				continue
			}
			if err := g.anim.Attach(res.slot, obj); err != nil {
				g.log.WithError(err).Warn("attach model")
			}
		default:
			return
		}
	}
}

func (g *Game) reloadConfig() {
	if g.watcher == nil {
		return
	}
	select {
	case path, ok := <-g.watcher.Events:
		if !ok {
			g.watcher = nil
			return
		}
		cfg, err := config.Load(path)
		if err != nil {
			g.log.WithError(err).Warn("config reload rejected")
			return
		}
		g.applyConfig(cfg)
		g.log.WithField("path", path).Info("config reloaded")
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.log.WithError(err).Warn("config watcher")
		}
	default:
	}
}

// applyConfig takes the tunable constants from cfg. Scene layout changes need a restart.
func (g *Game) applyConfig(cfg *config.Scene) {
	g.cfg = cfg
	ecs.Update(g.world, g.handle.camera, component.CameraComponent, func(c *component.Camera) {
		c.FovY, c.Near, c.Far = cfg.Camera.Fov, cfg.Camera.Near, cfg.Camera.Far
	})
	g.anim.Configure(g.world, animator.FromScene(cfg))
	g.bloom.Strength = cfg.Bloom.Strength
	g.bloom.Radius = cfg.Bloom.Radius
	g.bloom.Threshold = cfg.Bloom.Threshold
}

func (g *Game) shutdown() {
	if g.cancel != nil {
		g.cancel()
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.WithError(err).Debug("close watcher")
		}
		g.watcher = nil
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.composer.Render(screen)
	g.hud.Draw(screen)
}

// Layout renders at the window's size and keeps the camera aspect in step with it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return g.width, g.height
}

func (g *Game) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	g.width, g.height = width, height
	ecs.Update(g.world, g.handle.camera, component.CameraComponent, func(c *component.Camera) {
		c.Aspect = float64(width) / float64(height)
	})
	g.composer.Resize(width, height)
	g.log.WithField("size", fmt.Sprintf("%dx%d", width, height)).Debug("resized")
}
