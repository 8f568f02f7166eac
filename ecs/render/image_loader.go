package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// Load decodes an image from dir (or the working directory) and caches it under key.
func (r *Registry) Load(dir, key string) (*ebiten.Image, error) {
	if key == "" {
		return nil, fmt.Errorf("render: empty image key")
	}
	if img := r.Image(key); img != nil {
		return img, nil
	}
	img, err := decodeFromFS(dir, key)
	if err != nil {
		return nil, err
	}
	r.Register(key, img)
	return img, nil
}

func decodeFromFS(dir, path string) (*ebiten.Image, error) {
	tried := []string{filepath.Join(dir, path), path, filepath.Join(dir, filepath.Base(path))}
	var lastErr error
	for _, p := range tried {
		b, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		im, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("render: decode %s: %w", p, err)
		}
		return ebiten.NewImageFromImage(im), nil
	}
	return nil, fmt.Errorf("render: load image %s: %w", path, lastErr)
}
