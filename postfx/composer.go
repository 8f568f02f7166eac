// Package postfx layers screen-space effects over a rendered scene.
package postfx

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Pass reads from src and writes into dst. Both are sized to the composer.
type Pass interface {
	Apply(dst, src *ebiten.Image)
	Resize(width, height int)
}

// RenderFunc draws the base scene.
type RenderFunc func(dst *ebiten.Image)

// Composer renders the scene offscreen and runs each pass over it.
type Composer struct {
	render RenderFunc
	passes []Pass

	width, height int
	read, write   *ebiten.Image
}

func NewComposer(render RenderFunc, passes ...Pass) *Composer {
	return &Composer{render: render, passes: passes}
}

func (c *Composer) AddPass(p Pass) {
	if p == nil {
		return
	}
	c.passes = append(c.passes, p)
	if c.width > 0 {
		p.Resize(c.width, c.height)
	}
}

// Size returns the current target size.
func (c *Composer) Size() (int, int) {
	return c.width, c.height
}

// Resize reallocates the offscreen targets. Calls with an unchanged size are no-ops.
func (c *Composer) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == c.width && height == c.height) {
		return
	}
	if c.read != nil {
		c.read.Deallocate()
		c.write.Deallocate()
	}
	c.width, c.height = width, height
	c.read = ebiten.NewImage(width, height)
	c.write = ebiten.NewImage(width, height)
	for _, p := range c.passes {
		p.Resize(width, height)
	}
}

// Render draws the scene and all passes into screen.
func (c *Composer) Render(screen *ebiten.Image) {
	b := screen.Bounds()
	c.Resize(b.Dx(), b.Dy())
	if c.read == nil {
		return
	}

	c.read.Clear()
	c.render(c.read)
	for _, p := range c.passes {
		c.write.Clear()
		p.Apply(c.write, c.read)
		c.read, c.write = c.write, c.read
	}
	screen.DrawImage(c.read, nil)
}
