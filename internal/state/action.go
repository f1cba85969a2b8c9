package state

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
)

// unit square pivot the stored curves are rotated about
var pivot = gg.Pt(0.5, 0.5)

// Action is one continuous stroke. Its curves are stored normalized against
// the view it was drawn in, so it can be redrawn under any orientation and
// view size.
type Action struct {
	id          string
	owner       string
	orientation Orientation
	size        Size
	color       gg.RGBA
	width       float64
	curves      []Curve

	// shared draw order: Lamport time, ties broken by site
	lamport uint64
	site    string
}

// NewAction begins an empty stroke recorded under the given orientation and
// view size.
func NewAction(o Orientation, size Size, color gg.RGBA, width float64) (*Action, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrientation, int(o))
	}
	if !size.Valid() {
		return nil, fmt.Errorf("%w: source %s", ErrDegenerateSize, size)
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidWidth, width)
	}
	return &Action{
		id:          uuid.NewString(),
		orientation: o,
		size:        size,
		color:       color,
		width:       width,
	}, nil
}

func (a *Action) ID() string               { return a.id }
func (a *Action) Owner() string            { return a.owner }
func (a *Action) SetOwner(owner string)    { a.owner = owner }
func (a *Action) Orientation() Orientation { return a.orientation }
func (a *Action) Size() Size               { return a.size }
func (a *Action) Color() gg.RGBA           { return a.color }
func (a *Action) Width() float64           { return a.width }
func (a *Action) Len() int                 { return len(a.curves) }

// Stamp returns the Lamport time and site that order the action on a
// shared board.
func (a *Action) Stamp() (uint64, string) { return a.lamport, a.site }

func (a *Action) SetStamp(lamport uint64, site string) {
	a.lamport = lamport
	a.site = site
}

func (a *Action) orderedBefore(b *Action) bool {
	if a.lamport != b.lamport {
		return a.lamport < b.lamport
	}
	return a.site < b.site
}

// Curves returns a copy of the normalized curves in drawing order.
func (a *Action) Curves() []Curve {
	out := make([]Curve, len(a.curves))
	copy(out, a.curves)
	return out
}

// AppendSegment smooths three consecutive raw samples (source view pixels)
// into one curve: it runs from the midpoint of the first pair to the
// midpoint of the second pair with the middle sample as control point.
// Consecutive segments share endpoints, so the path has no corners.
//
// The returned box is in normalized space.
func (a *Action) AppendSegment(beforePrevious, previous, current gg.Point) gg.Rect {
	bp := a.normalize(beforePrevious)
	p := a.normalize(previous)
	c := a.normalize(current)

	curve := NewCurve(midpoint(bp, p), midpoint(p, c), p)
	a.curves = append(a.curves, curve)
	return curve.BoundingBox()
}

func (a *Action) normalize(p gg.Point) gg.Point {
	return gg.Pt(p.X/a.size.Width, p.Y/a.size.Height)
}

// Transform returns the matrix that maps the stored unit-square curves into
// the pixel space of a view with the given orientation and size: rotate by
// the compensating angle about the unit square centre, then scale.
func (a *Action) Transform(target Orientation, size Size) (gg.Matrix, error) {
	if !target.Valid() {
		return gg.Matrix{}, fmt.Errorf("%w: %d", ErrInvalidOrientation, int(target))
	}
	if !size.Valid() || math.IsInf(size.Width, 0) || math.IsInf(size.Height, 0) {
		return gg.Matrix{}, fmt.Errorf("%w: target %s", ErrDegenerateSize, size)
	}

	diff := ((target.Angle()-a.orientation.Angle())%360 + 360) % 360
	theta := float64(diff) * math.Pi / 180

	m := gg.Scale(size.Width, size.Height).
		Multiply(gg.Translate(pivot.X, pivot.Y)).
		Multiply(gg.Rotate(theta)).
		Multiply(gg.Translate(-pivot.X, -pivot.Y))
	return m, nil
}

// Reproject maps every stored curve into the pixel space of a view with the
// given orientation and size.
func (a *Action) Reproject(target Orientation, size Size) ([]Curve, error) {
	m, err := a.Transform(target, size)
	if err != nil {
		return nil, err
	}
	out := make([]Curve, len(a.curves))
	for i, c := range a.curves {
		out[i] = c.Transform(m)
	}
	return out, nil
}
