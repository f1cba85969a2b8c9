package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/gg"
)

// BoardVersion is the version written to saved board files.
const BoardVersion = 1

var ErrMalformedRecord = errors.New("malformed action record")

// Record is the serialized form of an Action. Required fields are pointers
// so a missing field can be told apart from a zero value.
type Record struct {
	ID          string          `json:"id,omitempty"`
	Owner       string          `json:"owner,omitempty"`
	Orientation *int            `json:"orientation"`
	Size        *Size           `json:"size"`
	StrokeWidth *float64        `json:"strokeWidth"`
	Color       *RecordColor    `json:"color"`
	Segments    []RecordSegment `json:"segments"`
}

// RecordColor keeps the four channels separate so colours round-trip
// exactly.
type RecordColor struct {
	R *float64 `json:"r"`
	G *float64 `json:"g"`
	B *float64 `json:"b"`
	A *float64 `json:"a"`
}

type RecordSegment struct {
	Start   *[2]float64 `json:"start"`
	End     *[2]float64 `json:"end"`
	Control *[2]float64 `json:"control"`
}

// Board is the saved file format: every committed action in draw order.
type Board struct {
	Version int      `json:"version"`
	Actions []Record `json:"actions"`
}

func ptr[T any](v T) *T { return &v }

func pointPair(p gg.Point) *[2]float64 { return &[2]float64{p.X, p.Y} }

// NewRecord captures a's current state.
func NewRecord(a *Action) Record {
	segments := make([]RecordSegment, len(a.curves))
	for i, c := range a.curves {
		segments[i] = RecordSegment{
			Start:   pointPair(c.Start),
			End:     pointPair(c.End),
			Control: pointPair(c.Control),
		}
	}
	return Record{
		ID:          a.id,
		Owner:       a.owner,
		Orientation: ptr(int(a.orientation)),
		Size:        ptr(a.size),
		StrokeWidth: ptr(a.width),
		Color: &RecordColor{
			R: ptr(a.color.R),
			G: ptr(a.color.G),
			B: ptr(a.color.B),
			A: ptr(a.color.A),
		},
		Segments: segments,
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// Action rebuilds the stroke described by r. Nothing is returned unless
// every field is present and valid.
func (r Record) Action() (*Action, error) {
	switch {
	case r.Orientation == nil:
		return nil, malformed("missing orientation")
	case r.Size == nil:
		return nil, malformed("missing size")
	case r.StrokeWidth == nil:
		return nil, malformed("missing strokeWidth")
	case r.Color == nil:
		return nil, malformed("missing color")
	case r.Segments == nil:
		return nil, malformed("missing segments")
	}
	c := r.Color
	if c.R == nil || c.G == nil || c.B == nil || c.A == nil {
		return nil, malformed("color needs r, g, b and a")
	}

	a, err := NewAction(Orientation(*r.Orientation), *r.Size, gg.RGBA2(*c.R, *c.G, *c.B, *c.A), *r.StrokeWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if r.ID != "" {
		a.id = r.ID
	}
	a.owner = r.Owner

	a.curves = make([]Curve, 0, len(r.Segments))
	for i, s := range r.Segments {
		if s.Start == nil || s.End == nil || s.Control == nil {
			return nil, malformed("segment %d needs start, end and control", i)
		}
		a.curves = append(a.curves, NewCurve(
			gg.Pt(s.Start[0], s.Start[1]),
			gg.Pt(s.End[0], s.End[1]),
			gg.Pt(s.Control[0], s.Control[1]),
		))
	}
	return a, nil
}

// MarshalAction encodes a single action as JSON.
func MarshalAction(a *Action) ([]byte, error) {
	return json.Marshal(NewRecord(a))
}

// UnmarshalAction decodes an action previously written by MarshalAction.
func UnmarshalAction(data []byte) (*Action, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return r.Action()
}

// WriteBoard saves actions to w in draw order.
func WriteBoard(w io.Writer, actions []*Action) error {
	b := Board{Version: BoardVersion, Actions: make([]Record, len(actions))}
	for i, a := range actions {
		b.Actions[i] = NewRecord(a)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding board: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing board: %w", err)
	}
	return nil
}

// ReadBoard loads a board written by WriteBoard. A single bad record fails
// the whole board.
func ReadBoard(r io.Reader) ([]*Action, error) {
	var b Board
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if b.Version != BoardVersion {
		return nil, fmt.Errorf("unsupported board version %d", b.Version)
	}
	actions := make([]*Action, 0, len(b.Actions))
	for i, rec := range b.Actions {
		a, err := rec.Action()
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
