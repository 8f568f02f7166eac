package render

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Registry caches images by key. Textures referenced by materials are looked up here.
type Registry struct {
	mu     sync.RWMutex
	images map[string]*ebiten.Image
}

func NewRegistry() *Registry {
	return &Registry{images: make(map[string]*ebiten.Image)}
}

// Register stores an image by key, replacing any previous one.
func (r *Registry) Register(key string, img *ebiten.Image) {
	if key == "" || img == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[key] = img
}

// Image returns a cached image by key.
func (r *Registry) Image(key string) *ebiten.Image {
	if key == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.images[key]
}
