package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/orbitfolio/animator"
	"github.com/milk9111/orbitfolio/ecs"
	"github.com/milk9111/orbitfolio/ecs/component"
)

// HUD is a debug overlay in the top-left corner listing the animator's state.
// It runs as a system after the animator so it shows the current frame.
type HUD struct {
	ui     *ebitenui.UI
	label  *widget.Text
	anim   *animator.Animator
	camera ecs.Entity
}

func NewHUD(a *animator.Animator, camera ecs.Entity) *HUD {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 160})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	label := widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	panel.AddChild(label)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &HUD{ui: &ebitenui.UI{Container: root}, label: label, anim: a, camera: camera}
}

// Update rewrites the overlay text from the current frame's state.
func (h *HUD) Update(w *ecs.World) {
	a := h.anim
	cam, _ := ecs.Get(w, h.camera, component.TransformComponent)
	p := a.Config().Place(a.ScrollOffset())
	h.label.Label = fmt.Sprintf(
		"fps %.1f  frame %d\nscroll %.3f\ncamera (%.3f, %.3f, %.3f) yaw %.4f\nmoon %.3f rad\nsaucer %s  earth %s",
		ebiten.ActualFPS(), a.Frames(),
		a.ScrollOffset(),
		cam.Position.X(), cam.Position.Y(), cam.Position.Z(), p.Yaw,
		a.MoonAngle(),
		loadState(a.Loaded(animator.SlotSaucer)), loadState(a.Loaded(animator.SlotEarth)),
	)
	h.ui.Update()
}

func (h *HUD) Draw(screen *ebiten.Image) {
	if h == nil {
		return
	}
	h.ui.Draw(screen)
}

func loadState(loaded bool) string {
	if loaded {
		return "loaded"
	}
	return "loading"
}
