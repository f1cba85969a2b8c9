package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"

	"localboard/internal/board"
	"localboard/internal/state"
)

const (
	pageWidth  = 210.0 // A4, mm
	pageHeight = 297.0
	pageMargin = 10.0
)

// pdfCanvas strokes curves onto the current page, offset into the printable
// area. Widths are scaled from view pixels to millimetres.
type pdfCanvas struct {
	pdf    *gofpdf.Fpdf
	origin gg.Point
	scale  float64
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func (c *pdfCanvas) StrokeCurve(curve state.Curve, style board.Style) error {
	p := c.pdf
	p.SetDrawColor(channel(style.Color.R), channel(style.Color.G), channel(style.Color.B))
	p.SetAlpha(math.Max(0, math.Min(1, style.Color.A)), "Normal")
	p.SetLineWidth(style.Width * c.scale)
	if style.Cap == gg.LineCapRound {
		p.SetLineCapStyle("round")
	} else {
		p.SetLineCapStyle("butt")
	}
	p.SetLineJoinStyle("round")

	o := c.origin
	p.Curve(
		o.X+curve.Start.X, o.Y+curve.Start.Y,
		o.X+curve.Control.X, o.Y+curve.Control.Y,
		o.X+curve.End.X, o.Y+curve.End.Y,
		"D",
	)
	return p.Error()
}

// PageBox returns the size in millimetres that a view's portrait box is
// scaled to on the page, and the scale factor from view pixels.
func PageBox(view state.Size) (state.Size, float64) {
	box := view.PortraitBox()
	scale := math.Min((pageWidth-2*pageMargin)/box.Width, (pageHeight-2*pageMargin)/box.Height)
	return state.Size{Width: box.Width * scale, Height: box.Height * scale}, scale
}

// WritePDF writes a one-page A4 document with every action drawn as seen in
// portrait, fitted to the page and centred.
func WritePDF(w io.Writer, actions []*state.Action, view state.Size) error {
	if !view.Valid() {
		return fmt.Errorf("pdf export: %w: %s", state.ErrDegenerateSize, view)
	}
	box, scale := PageBox(view)

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("LocalBoard", true)
	p.AddPage()

	canvas := &pdfCanvas{
		pdf:    p,
		origin: gg.Pt((pageWidth-box.Width)/2, (pageHeight-box.Height)/2),
		scale:  scale,
	}
	if err := board.DrawActions(canvas, actions, state.Portrait, box); err != nil {
		return fmt.Errorf("pdf export: %w", err)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("pdf export: %w", err)
	}
	return nil
}
