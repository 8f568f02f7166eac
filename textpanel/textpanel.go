// Package textpanel bakes lines of text into an image used as a plane's texture.
package textpanel

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Line is one centred line of text, offset vertically from the image centre.
type Line struct {
	Text   string
	Offset float64
}

type Options struct {
	Width      int
	Height     int
	Background color.Color
	TextColor  color.Color
	FontSize   float64
	Lines      []Line
}

var faceSource *text.GoTextFaceSource

func source() (*text.GoTextFaceSource, error) {
	if faceSource != nil {
		return faceSource, nil
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	faceSource = src
	return src, nil
}

// Bake draws the background and every line into a new image.
func Bake(opts Options) (*ebiten.Image, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("textpanel: bad size %dx%d", opts.Width, opts.Height)
	}
	src, err := source()
	if err != nil {
		return nil, fmt.Errorf("textpanel: load font: %w", err)
	}

	img := ebiten.NewImage(opts.Width, opts.Height)
	if opts.Background != nil {
		img.Fill(opts.Background)
	}

	face := &text.GoTextFace{Source: src, Size: opts.FontSize}
	for _, line := range opts.Lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(opts.Width)/2, float64(opts.Height)/2+line.Offset)
		op.PrimaryAlign = text.AlignCenter
		op.SecondaryAlign = text.AlignCenter
		if opts.TextColor != nil {
			op.ColorScale.ScaleWithColor(opts.TextColor)
		}
		text.Draw(img, line.Text, face, op)
	}
	return img, nil
}
