package component

import "image/color"

type LightKind int

const (
	LightAmbient LightKind = iota
	LightPoint
)

// Light contributes to the shading of lit materials. Point lights use the entity's Transform.
type Light struct {
	Kind      LightKind
	Color     color.NRGBA
	Intensity float64
}

var LightComponent = NewComponent[Light]()
