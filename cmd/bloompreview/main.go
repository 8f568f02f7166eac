package main

import (
	"flag"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/milk9111/orbitfolio/config"
	"github.com/milk9111/orbitfolio/postfx"
)

const (
	screenWidth  = 800
	screenHeight = 600
)

// preview draws a few shapes of different brightness so bloom settings can be
// tuned by eye. Up/Down change strength, Left/Right radius, W/S threshold.
type preview struct {
	bloom    *postfx.BloomPass
	composer *postfx.Composer
}

func newPreview(spec config.BloomSpec) (*preview, error) {
	bloom, err := postfx.NewBloomPass(spec.Strength, spec.Radius, spec.Threshold)
	if err != nil {
		return nil, err
	}
	p := &preview{bloom: bloom}
	p.composer = postfx.NewComposer(drawShapes, bloom)
	return p, nil
}

func drawShapes(dst *ebiten.Image) {
	dst.Fill(color.NRGBA{0x02, 0x02, 0x08, 0xff})
	shapes := []struct {
		x, y, r float32
		c       color.NRGBA
	}{
		{200, 300, 60, color.NRGBA{0xff, 0xff, 0x00, 0xff}},
		{400, 300, 40, color.NRGBA{0x80, 0x80, 0x80, 0xff}},
		{600, 300, 20, color.NRGBA{0xff, 0xff, 0xff, 0xff}},
	}
	for _, s := range shapes {
		vector.DrawFilledCircle(dst, s.x, s.y, s.r, s.c, true)
	}
	vector.DrawFilledRect(dst, 150, 450, 500, 8, color.NRGBA{0xff, 0xcc, 0x33, 0xff}, false)
}

func (p *preview) Update() error {
	step := func(key ebiten.Key, v *float64, delta, lo, hi float64) {
		if inpututil.IsKeyJustPressed(key) {
			*v = min(hi, max(lo, *v+delta))
		}
	}
	step(ebiten.KeyArrowUp, &p.bloom.Strength, 0.1, 0, 5)
	step(ebiten.KeyArrowDown, &p.bloom.Strength, -0.1, 0, 5)
	step(ebiten.KeyArrowRight, &p.bloom.Radius, 0.05, 0, 1)
	step(ebiten.KeyArrowLeft, &p.bloom.Radius, -0.05, 0, 1)
	step(ebiten.KeyW, &p.bloom.Threshold, 0.05, 0, 1)
	step(ebiten.KeyS, &p.bloom.Threshold, -0.05, 0, 1)
	return nil
}

func (p *preview) Draw(screen *ebiten.Image) {
	p.composer.Render(screen)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("strength %.2f  radius %.2f  threshold %.2f",
		p.bloom.Strength, p.bloom.Radius, p.bloom.Threshold), 10, 10)
}

func (p *preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	path := flag.String("config", "", "scene file whose bloom settings to start from")
	flag.Parse()

	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	entry := log.WithField("prefix", "bloompreview")

	scene, err := config.Load(*path)
	if err != nil {
		entry.WithError(err).Fatal("load config")
	}
	p, err := newPreview(scene.Bloom)
	if err != nil {
		entry.WithError(err).Fatal("build preview")
	}
	entry.WithFields(log.Fields{
		"strength":  scene.Bloom.Strength,
		"radius":    scene.Bloom.Radius,
		"threshold": scene.Bloom.Threshold,
	}).Info("starting")

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Bloom Preview")
	if err := ebiten.RunGame(p); err != nil {
		entry.WithError(err).Fatal("run")
	}
}
