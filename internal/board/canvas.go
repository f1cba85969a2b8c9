package board

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"localboard/internal/state"
)

var white = gg.RGB(1, 1, 1)

// Canvas is a Renderer that rasterizes into a gg context.
type Canvas struct {
	dc *gg.Context
}

func NewCanvas(dc *gg.Context) *Canvas {
	return &Canvas{dc: dc}
}

func (c *Canvas) StrokeCurve(curve state.Curve, style Style) error {
	dc := c.dc
	dc.ClearPath()
	dc.SetRGBA(style.Color.R, style.Color.G, style.Color.B, style.Color.A)
	dc.SetLineWidth(style.Width)
	dc.SetLineCap(style.Cap)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetBlendMode(style.Blend)
	dc.MoveTo(curve.Start.X, curve.Start.Y)
	dc.QuadraticTo(curve.Control.X, curve.Control.Y, curve.End.X, curve.End.Y)
	return dc.Stroke()
}

// RenderActions draws actions for orientation o into a new white image of
// the given pixel size.
func RenderActions(actions []*state.Action, o state.Orientation, size state.Size) (image.Image, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("rendering: %w: %s", state.ErrDegenerateSize, size)
	}
	dc := gg.NewContext(int(size.Width+0.5), int(size.Height+0.5))
	defer dc.Close()

	dc.ClearWithColor(white)
	if err := DrawActions(NewCanvas(dc), actions, o, size); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// ExportImage renders every committed action as seen in portrait, into the
// current view box turned so its shorter side is the width. The result is
// the same whatever way the device is currently held.
func (s *Surface) ExportImage() (image.Image, error) {
	img, err := RenderActions(s.history.Actions(), state.Portrait, s.size.PortraitBox())
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return img, nil
}
