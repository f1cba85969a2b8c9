// Package board turns host input and redraw callbacks into operations on a
// stroke history, and draws that history for the host's current
// orientation and view size.
package board

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gg"

	"localboard/internal/state"
)

// Host is the view system a Surface is embedded in.
type Host interface {
	// RequestPartialRedraw asks for rect, in current view pixels, to be
	// redrawn.
	RequestPartialRedraw(rect gg.Rect)
	// RequestRedraw asks for the whole view to be redrawn.
	RequestRedraw()
}

// Style is how one stroke's curves are painted.
type Style struct {
	Color gg.RGBA
	Width float64
	Cap   gg.LineCap
	Blend gg.BlendMode
}

// Renderer strokes curves that are already in target pixel space.
type Renderer interface {
	StrokeCurve(c state.Curve, style Style) error
}

// Option configures a Surface.
type Option func(*Surface)

func WithColor(c gg.RGBA) Option    { return func(s *Surface) { s.color = c } }
func WithWidth(w float64) Option    { return func(s *Surface) { s.width = w } }
func WithOwner(owner string) Option { return func(s *Surface) { s.owner = owner } }

// WithClock shares the Lamport clock that stamps ops sent to peers, so
// actions and ops are stamped from one counter.
func WithClock(c *state.Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

// Surface owns the stroke history of one drawing view. All methods must be
// called from the host's event thread.
type Surface struct {
	host    Host
	history *state.History
	clock   *state.Clock
	log     *slog.Logger

	orientation state.Orientation
	size        state.Size

	color gg.RGBA
	width float64
	owner string

	// stroke in progress and its last two samples
	current      *state.Action
	prev1, prev2 gg.Point
}

func NewSurface(host Host, opts ...Option) *Surface {
	s := &Surface{
		host:        host,
		history:     state.NewHistory(),
		clock:       state.NewClock(),
		log:         slog.Default(),
		orientation: state.Portrait,
		color:       gg.RGB(0, 0, 0),
		width:       3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeometryChanged records the view's new orientation and size and asks for
// a full redraw.
func (s *Surface) GeometryChanged(o state.Orientation, size state.Size) {
	if o != s.orientation || size != s.size {
		s.log.Debug("geometry changed", "orientation", o, "size", size)
	}
	s.orientation = o
	s.size = size
	s.host.RequestRedraw()
}

// Geometry returns the current orientation and view size.
func (s *Surface) Geometry() (state.Orientation, state.Size) {
	return s.orientation, s.size
}

func (s *Surface) SetColor(c gg.RGBA) { s.color = c }
func (s *Surface) SetWidth(w float64) { s.width = w }
func (s *Surface) Color() gg.RGBA     { return s.color }
func (s *Surface) Width() float64     { return s.width }
func (s *Surface) Owner() string      { return s.owner }
func (s *Surface) SetOwner(o string)  { s.owner = o }

// Clock returns the clock that stamps this surface's actions.
func (s *Surface) Clock() *state.Clock { return s.clock }

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool { return s.current != nil }

// StrokeStart begins a new action at p and commits it straight away, so a
// stroke shows while it is drawn and can be undone before it has any
// segments.
func (s *Surface) StrokeStart(p gg.Point) error {
	a, err := state.NewAction(s.orientation, s.size, s.color, s.width)
	if err != nil {
		return fmt.Errorf("starting stroke: %w", err)
	}
	a.SetOwner(s.owner)
	s.clock.StampAction(a)
	s.history.Append(a)
	s.current = a
	s.prev1, s.prev2 = p, p
	s.log.Debug("stroke started", "id", a.ID(), "orientation", s.orientation, "size", s.size)
	return nil
}

// StrokeSample adds the curve ending near p to the stroke in progress and
// requests a redraw of the area it touches. Calling it without a stroke in
// progress is a programming error.
func (s *Surface) StrokeSample(p gg.Point) {
	if s.current == nil {
		panic("board: stroke sample without a stroke in progress")
	}
	a := s.current
	box := a.AppendSegment(s.prev2, s.prev1, p)
	s.prev2, s.prev1 = s.prev1, p

	src := a.Size()
	pad := 2 * a.Width()
	damage := gg.Rect{
		Min: gg.Pt(box.Min.X*src.Width-pad, box.Min.Y*src.Height-pad),
		Max: gg.Pt(box.Max.X*src.Width+pad, box.Max.Y*src.Height+pad),
	}
	s.host.RequestPartialRedraw(damage)
	s.history.DiscardRedo()
}

// StrokeEnd treats p as the final sample and closes the stroke. It returns
// the finished action, or nil if no stroke was in progress.
func (s *Surface) StrokeEnd(p gg.Point) *state.Action {
	if s.current == nil {
		return nil
	}
	s.StrokeSample(p)
	a := s.current
	s.current = nil
	s.log.Debug("stroke ended", "id", a.ID(), "segments", a.Len())
	return a
}

// StrokeCancel behaves exactly like StrokeEnd.
func (s *Surface) StrokeCancel(p gg.Point) *state.Action {
	return s.StrokeEnd(p)
}

// Draw paints every committed action, back to front, reprojected to the
// current orientation and view size.
func (s *Surface) Draw(r Renderer) error {
	return DrawActions(r, s.history.Actions(), s.orientation, s.size)
}

// DrawActions strokes actions, back to front, reprojected for orientation o
// and view size.
func DrawActions(r Renderer, actions []*state.Action, o state.Orientation, size state.Size) error {
	for _, a := range actions {
		curves, err := a.Reproject(o, size)
		if err != nil {
			return fmt.Errorf("reprojecting action %s: %w", a.ID(), err)
		}
		style := Style{
			Color: a.Color(),
			Width: a.Width(),
			Cap:   gg.LineCapRound,
			Blend: gg.BlendNormal,
		}
		for _, c := range curves {
			if err := r.StrokeCurve(c, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// Undo removes the most recent action and returns it, or nil if there was
// nothing to undo. A stroke in progress is closed first.
func (s *Surface) Undo() *state.Action {
	s.current = nil
	a := s.history.Last()
	if !s.history.Undo() {
		return nil
	}
	s.host.RequestRedraw()
	return a
}

// Redo restores the most recently undone action and returns it, or nil.
// The action is stamped again since it is now the newest on the board.
func (s *Surface) Redo() *state.Action {
	s.current = nil
	a := s.history.NextRedo()
	if !s.history.Redo() {
		return nil
	}
	s.clock.StampAction(a)
	s.host.RequestRedraw()
	return a
}

// Clear drops every action and the redo history.
func (s *Surface) Clear() {
	s.current = nil
	s.history.Clear()
	s.host.RequestRedraw()
}

// AddAction commits a finished action that was not drawn here, such as one
// received from a peer, at its place in stamp order. Actions already in the
// history are ignored.
func (s *Surface) AddAction(a *state.Action) bool {
	if s.history.Contains(a.ID()) {
		return false
	}
	s.history.Insert(a)
	s.host.RequestRedraw()
	return true
}

// RemoveAction drops the action with the given ID, wherever it is.
func (s *Surface) RemoveAction(id string) bool {
	if s.current != nil && s.current.ID() == id {
		s.current = nil
	}
	if !s.history.Remove(id) {
		return false
	}
	s.host.RequestRedraw()
	return true
}

// Apply carries out an op received from a peer.
func (s *Surface) Apply(op state.Op) error {
	s.clock.Observe(op.Lamport)
	switch op.Type {
	case state.OpInsertAction:
		if op.Record == nil {
			return fmt.Errorf("%w: insert op without a record", state.ErrMalformedRecord)
		}
		a, err := op.Record.Action()
		if err != nil {
			return err
		}
		a.SetStamp(op.Lamport, op.Site)
		s.AddAction(a)
	case state.OpDeleteAction:
		s.RemoveAction(op.Target)
	case state.OpClear:
		s.RemoveOwner(op.Owner)
	default:
		return fmt.Errorf("unknown op type %q", op.Type)
	}
	return nil
}

// RemoveOwner drops every action drawn by owner.
func (s *Surface) RemoveOwner(owner string) int {
	if s.current != nil && s.current.Owner() == owner {
		s.current = nil
	}
	n := s.history.RemoveOwner(owner)
	if n > 0 {
		s.host.RequestRedraw()
	}
	return n
}

// Load replaces this surface owner's actions with actions, in draw order,
// and returns the ones it added. They become the owner's and are stamped as
// the newest on the board. Other owners' actions are kept, and a loaded
// action with the ID of one of them is skipped.
func (s *Surface) Load(actions []*state.Action) []*state.Action {
	s.current = nil
	s.history.RemoveOwner(s.owner)
	s.history.DiscardRedo()
	added := make([]*state.Action, 0, len(actions))
	for _, a := range actions {
		if s.history.Contains(a.ID()) {
			continue
		}
		a.SetOwner(s.owner)
		s.clock.StampAction(a)
		s.history.Append(a)
		added = append(added, a)
	}
	s.host.RequestRedraw()
	return added
}

// Actions returns the committed actions in draw order.
func (s *Surface) Actions() []*state.Action { return s.history.Actions() }

func (s *Surface) CanUndo() bool { return s.history.CanUndo() }
func (s *Surface) CanRedo() bool { return s.history.CanRedo() }
func (s *Surface) IsEmpty() bool { return s.history.IsEmpty() }
