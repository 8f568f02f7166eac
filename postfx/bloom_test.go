package postfx

import (
	"math"
	"testing"
)

func TestWeights(t *testing.T) {
	cases := []struct {
		name     string
		strength float64
		radius   float64
		want     []float64
	}{
		{name: "radius_0", strength: 1, radius: 0, want: []float64{1.0, 0.8, 0.6, 0.4, 0.2}},
		{name: "scene_default", strength: 1.5, radius: 0.4, want: []float64{1.02, 0.96, 0.9, 0.84, 0.78}},
		{name: "radius_1", strength: 1, radius: 1, want: []float64{0.2, 0.4, 0.6, 0.8, 1.0}},
		{name: "zero_strength", strength: 0, radius: 0.4, want: []float64{0, 0, 0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Weights(tc.strength, tc.radius)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d weights, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Fatalf("weights = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
