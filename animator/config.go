package animator

import "github.com/milk9111/orbitfolio/config"

// Config holds the animation constants. None of them carry meaning beyond their value.
type Config struct {
	ScrollScale    float64
	BaseDepth      float64
	DepthPerScroll float64
	XPerScroll     float64
	YawPerScroll   float64
	MoonSpin       float64
	SaucerSpin     float64
	EarthSpin      float64
	FollowDistance float64
	FollowLateral  float64
}

func DefaultConfig() Config {
	return Config{
		ScrollScale:    0.1,
		BaseDepth:      30,
		DepthPerScroll: 0.05,
		XPerScroll:     -0.001,
		YawPerScroll:   -0.0002,
		MoonSpin:       0.005,
		SaucerSpin:     0.01,
		EarthSpin:      0.0025,
		FollowDistance: 12,
		FollowLateral:  -10,
	}
}

// FromScene extracts the animation constants from a scene description.
func FromScene(s *config.Scene) Config {
	return Config{
		ScrollScale:    s.Scroll.Scale,
		BaseDepth:      s.Camera.BaseDepth,
		DepthPerScroll: s.Camera.DepthPerScroll,
		XPerScroll:     s.Camera.XPerScroll,
		YawPerScroll:   s.Camera.YawPerScroll,
		MoonSpin:       s.Moon.Spin,
		SaucerSpin:     s.Saucer.Spin,
		EarthSpin:      s.Earth.Spin,
		FollowDistance: s.Saucer.FollowDistance,
		FollowLateral:  s.Saucer.FollowLateral,
	}
}
