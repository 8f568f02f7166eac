// Package config loads the scene description and animation constants from YAML.
package config

import (
	"embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

//go:embed scene.yaml
var defaultFS embed.FS

const defaultName = "scene.yaml"

var ErrInvalid = errors.New("config: invalid scene")

type Scene struct {
	Scroll     ScrollSpec `yaml:"scroll"`
	Camera     CameraSpec `yaml:"camera"`
	Background string     `yaml:"background"`
	Ambient    LightSpec  `yaml:"ambient"`
	Sun        SunSpec    `yaml:"sun"`
	Stars      StarsSpec  `yaml:"stars"`
	Moon       MoonSpec   `yaml:"moon"`
	Saucer     ModelSpec  `yaml:"saucer"`
	Earth      ModelSpec  `yaml:"earth"`
	Panel      PanelSpec  `yaml:"panel"`
	Bloom      BloomSpec  `yaml:"bloom"`
}

type ScrollSpec struct {
	Scale       float64 `yaml:"scale"`
	WheelPixels float64 `yaml:"wheel_pixels"`
}

type CameraSpec struct {
	Fov            float64 `yaml:"fov"`
	Near           float64 `yaml:"near"`
	Far            float64 `yaml:"far"`
	BaseDepth      float64 `yaml:"base_depth"`
	DepthPerScroll float64 `yaml:"depth_per_scroll"`
	XPerScroll     float64 `yaml:"x_per_scroll"`
	YawPerScroll   float64 `yaml:"yaw_per_scroll"`
}

type LightSpec struct {
	Color     Color   `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
}

type SunSpec struct {
	Position       Vec3    `yaml:"position"`
	Radius         float64 `yaml:"radius"`
	Color          Color   `yaml:"color"`
	LightColor     Color   `yaml:"light_color"`
	LightIntensity float64 `yaml:"light_intensity"`
}

type StarsSpec struct {
	Count  int     `yaml:"count"`
	Spread float64 `yaml:"spread"`
	Radius float64 `yaml:"radius"`
	Seed   int64   `yaml:"seed"`
	Color  Color   `yaml:"color"`
}

type MoonSpec struct {
	Position Vec3    `yaml:"position"`
	Radius   float64 `yaml:"radius"`
	Texture  string  `yaml:"texture"`
	Spin     float64 `yaml:"spin"`
}

// ModelSpec places an asynchronously loaded glTF model. Follow fields only apply
// to models that track the camera.
type ModelSpec struct {
	Asset          string  `yaml:"asset"`
	Scale          float64 `yaml:"scale"`
	Tilt           Vec3    `yaml:"tilt"`
	Position       Vec3    `yaml:"position"`
	Axis           Vec3    `yaml:"axis"`
	Spin           float64 `yaml:"spin"`
	FollowDistance float64 `yaml:"follow_distance"`
	FollowLateral  float64 `yaml:"follow_lateral"`
}

type PanelLine struct {
	Text   string  `yaml:"text"`
	Offset float64 `yaml:"offset"`
}

type PanelSpec struct {
	Width         float64     `yaml:"width"`
	Height        float64     `yaml:"height"`
	Position      Vec3        `yaml:"position"`
	Yaw           float64     `yaml:"yaw"`
	Turn          float64     `yaml:"turn"`
	Mirror        bool        `yaml:"mirror"`
	TextureWidth  int         `yaml:"texture_width"`
	TextureHeight int         `yaml:"texture_height"`
	Background    Color       `yaml:"background"`
	TextColor     Color       `yaml:"text_color"`
	FontSize      float64     `yaml:"font_size"`
	Lines         []PanelLine `yaml:"lines"`
}

type BloomSpec struct {
	Strength  float64 `yaml:"strength"`
	Radius    float64 `yaml:"radius"`
	Threshold float64 `yaml:"threshold"`
}

// Default returns the embedded scene.
func Default() (*Scene, error) {
	data, err := defaultFS.ReadFile(defaultName)
	if err != nil {
		return nil, fmt.Errorf("config: read embedded %s: %w", defaultName, err)
	}
	return Parse(data)
}

// Load reads the scene at path layered over the embedded defaults. An empty path,
// or a path that does not exist, yields the defaults.
func Load(path string) (*Scene, error) {
	scene, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return scene, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return scene, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return scene, nil
}

// Parse decodes a complete scene document.
func Parse(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// Validate rejects values the renderer cannot work with.
func (s *Scene) Validate() error {
	switch {
	case s.Camera.Fov <= 0 || s.Camera.Fov >= 180:
		return fmt.Errorf("%w: camera.fov %v", ErrInvalid, s.Camera.Fov)
	case s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near:
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalid, s.Camera.Near, s.Camera.Far)
	case s.Stars.Count < 0:
		return fmt.Errorf("%w: stars.count %d", ErrInvalid, s.Stars.Count)
	case s.Panel.TextureWidth <= 0 || s.Panel.TextureHeight <= 0:
		return fmt.Errorf("%w: panel texture %dx%d", ErrInvalid, s.Panel.TextureWidth, s.Panel.TextureHeight)
	case s.Bloom.Radius < 0 || s.Bloom.Radius > 1:
		return fmt.Errorf("%w: bloom.radius %v", ErrInvalid, s.Bloom.Radius)
	}
	return nil
}

// Vec3 is a YAML [x, y, z] triple.
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Color is a YAML "#rrggbb" or "#rrggbbaa" string.
type Color color.NRGBA

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = Color(parsed)
	return nil
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA(c)
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("config: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("config: bad color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
