package state

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrDegenerateSize     = errors.New("size must be positive in both dimensions")
	ErrInvalidWidth       = errors.New("stroke width must be positive")
)

// Orientation is the device orientation a view was presented in.
// The integer values are the codes written to saved records.
type Orientation int

const (
	Portrait Orientation = iota + 1
	PortraitUpsideDown
	LandscapeLeft
	LandscapeRight
)

// compensating rotation, in degrees, for each orientation
var orientationAngles = map[Orientation]int{
	Portrait:           0,
	LandscapeLeft:      90,
	LandscapeRight:     270,
	PortraitUpsideDown: 180,
}

// Valid reports whether o is one of the four known orientations.
func (o Orientation) Valid() bool {
	_, ok := orientationAngles[o]
	return ok
}

// Angle returns the canonical compensating rotation for o in degrees.
// Unknown orientations map to 0.
func (o Orientation) Angle() int {
	return orientationAngles[o]
}

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case PortraitUpsideDown:
		return "portrait-upside-down"
	case LandscapeLeft:
		return "landscape-left"
	case LandscapeRight:
		return "landscape-right"
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// ParseOrientation accepts the names produced by String.
func ParseOrientation(s string) (Orientation, error) {
	for o := Portrait; o <= LandscapeRight; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}

// Size is a view size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// PortraitBox returns s with the smaller dimension first, the canonical box
// a portrait export is drawn into.
func (s Size) PortraitBox() Size {
	if s.Width < s.Height {
		return s
	}
	return Size{Width: s.Height, Height: s.Width}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
