package postfx

import (
	_ "embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed threshold.kage
var thresholdSrc []byte

// bloomFactors weight the mip levels from sharpest to widest.
var bloomFactors = []float64{1.0, 0.8, 0.6, 0.4, 0.2}

// BloomPass brightens the regions of the image whose luminance exceeds Threshold.
// Radius in [0,1] shifts weight from the sharp levels to the wide ones.
type BloomPass struct {
	Strength  float64
	Radius    float64
	Threshold float64

	shader *ebiten.Shader
	bright *ebiten.Image
	mips   []*ebiten.Image
}

func NewBloomPass(strength, radius, threshold float64) (*BloomPass, error) {
	shader, err := ebiten.NewShader(thresholdSrc)
	if err != nil {
		return nil, fmt.Errorf("postfx: compile bloom shader: %w", err)
	}
	return &BloomPass{Strength: strength, Radius: radius, Threshold: threshold, shader: shader}, nil
}

// Weights returns the additive weight of each mip level.
func Weights(strength, radius float64) []float64 {
	out := make([]float64, len(bloomFactors))
	for i, f := range bloomFactors {
		out[i] = strength * (f + (1.2-f-f)*radius)
	}
	return out
}

func (b *BloomPass) Resize(width, height int) {
	if b.bright != nil {
		b.bright.Deallocate()
		for _, m := range b.mips {
			m.Deallocate()
		}
	}
	b.bright = ebiten.NewImage(width, height)
	b.mips = b.mips[:0]
	w, h := width, height
	for range bloomFactors {
		w, h = max(1, w/2), max(1, h/2)
		b.mips = append(b.mips, ebiten.NewImage(w, h))
	}
}

func (b *BloomPass) Apply(dst, src *ebiten.Image) {
	if b.bright == nil {
		sb := src.Bounds()
		b.Resize(sb.Dx(), sb.Dy())
	}

	dst.DrawImage(src, nil)

	b.bright.Clear()
	sb := src.Bounds()
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{
		"Threshold": float32(b.Threshold),
		"Smooth":    float32(0.01),
	}
	b.bright.DrawRectShader(sb.Dx(), sb.Dy(), b.shader, op)

	// Each level is a linear downscale of the previous one, which doubles the blur radius.
	prev := b.bright
	for _, m := range b.mips {
		m.Clear()
		pb, mb := prev.Bounds(), m.Bounds()
		dop := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		dop.GeoM.Scale(float64(mb.Dx())/float64(pb.Dx()), float64(mb.Dy())/float64(pb.Dy()))
		m.DrawImage(prev, dop)
		prev = m
	}

	db := dst.Bounds()
	for i, weight := range Weights(b.Strength, b.Radius) {
		if weight <= 0 {
			continue
		}
		m := b.mips[i]
		mb := m.Bounds()
		cop := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendLighter}
		cop.GeoM.Scale(float64(db.Dx())/float64(mb.Dx()), float64(db.Dy())/float64(mb.Dy()))
		cop.ColorScale.Scale(float32(weight), float32(weight), float32(weight), float32(weight))
		dst.DrawImage(m, cop)
	}
}
