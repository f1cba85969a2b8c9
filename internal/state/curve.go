package state

import (
	"math"

	"github.com/gogpu/gg"
)

// Curve is one quadratic Bézier segment. Stored curves live in the unit
// square of the view they were recorded in; reprojected curves are in
// target pixel space.
type Curve struct {
	Start   gg.Point
	End     gg.Point
	Control gg.Point
}

func NewCurve(start, end, control gg.Point) Curve {
	return Curve{Start: start, End: end, Control: control}
}

// BoundingBox covers the control polygon, which always contains the curve.
func (c Curve) BoundingBox() gg.Rect {
	return gg.Rect{
		Min: gg.Pt(
			math.Min(c.Start.X, math.Min(c.End.X, c.Control.X)),
			math.Min(c.Start.Y, math.Min(c.End.Y, c.Control.Y)),
		),
		Max: gg.Pt(
			math.Max(c.Start.X, math.Max(c.End.X, c.Control.X)),
			math.Max(c.Start.Y, math.Max(c.End.Y, c.Control.Y)),
		),
	}
}

// Transform applies m to all three points.
func (c Curve) Transform(m gg.Matrix) Curve {
	return Curve{
		Start:   m.TransformPoint(c.Start),
		End:     m.TransformPoint(c.End),
		Control: m.TransformPoint(c.Control),
	}
}

func midpoint(a, b gg.Point) gg.Point {
	return gg.Pt(0.5*(a.X+b.X), 0.5*(a.Y+b.Y))
}
