package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/gogpu/gg"

	"localboard/internal/board"
	"localboard/internal/export"
	"localboard/internal/state"
)

// BoardWidget hosts a board.Surface in a fyne window. It turns mouse and
// touch input into strokes and repaints the surface into a raster.
type BoardWidget struct {
	widget.BaseWidget

	surface   *board.Surface
	raster    *canvas.Raster
	statusBar *widget.Label
	log       *slog.Logger

	// Orientation reports the device orientation; it defaults to the
	// current fyne device.
	Orientation func() state.Orientation

	lastPos fyne.Position

	// LocalClientID owns the strokes drawn here. The On hooks are set when
	// the board is shared and report each local change to send to peers.
	LocalClientID string
	OnStrokeDone  func(a *state.Action)
	OnUndo        func(a *state.Action)
	OnRedo        func(a *state.Action)
	OnClear       func(owner string)
	OnLoad        func(actions []*state.Action)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)
var _ board.Host = (*BoardWidget)(nil)

func NewBoardWidget(log *slog.Logger) *BoardWidget {
	if log == nil {
		log = slog.Default()
	}
	b := &BoardWidget{
		statusBar:   widget.NewLabel("Ready"),
		log:         log,
		Orientation: deviceOrientation,
	}
	b.raster = canvas.NewRaster(b.render)
	b.raster.SetMinSize(fyne.NewSize(300, 300))
	b.surface = board.NewSurface(b, board.WithLogger(log))
	b.ExtendBaseWidget(b)
	return b
}

// deviceOrientation maps fyne's device orientation onto the board's.
func deviceOrientation() state.Orientation {
	switch fyne.CurrentDevice().Orientation() {
	case fyne.OrientationVerticalUpsideDown:
		return state.PortraitUpsideDown
	case fyne.OrientationHorizontalLeft:
		return state.LandscapeLeft
	case fyne.OrientationHorizontalRight:
		return state.LandscapeRight
	}
	return state.Portrait
}

func toPoint(p fyne.Position) gg.Point {
	return gg.Pt(float64(p.X), float64(p.Y))
}

// Surface exposes the model for wiring and tests.
func (b *BoardWidget) Surface() *board.Surface { return b.surface }

func (b *BoardWidget) SetLocalClientID(id string) {
	b.LocalClientID = id
	b.surface.SetOwner(id)
}

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() {
		b.statusBar.SetText(text)
	})
}

func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// --- board.Host ---

// RequestPartialRedraw repaints the raster. fyne always repaints whole
// objects, so the rectangle only bounds what changed.
func (b *BoardWidget) RequestPartialRedraw(gg.Rect) {
	b.raster.Refresh()
}

func (b *BoardWidget) RequestRedraw() {
	b.raster.Refresh()
}

func (b *BoardWidget) syncGeometry() {
	size := b.Size()
	b.surface.GeometryChanged(b.Orientation(), state.Size{
		Width:  float64(size.Width),
		Height: float64(size.Height),
	})
}

// Resize tracks view size changes; rotating a device resizes the window
// too, so this also picks up orientation changes.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.syncGeometry()
}

func (b *BoardWidget) render(w, h int) image.Image {
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.RGB(1, 1, 1))

	size := b.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return dc.Image()
	}
	// raster pixels vs. widget units differ by the canvas scale
	dc.Scale(float64(w)/float64(size.Width), float64(h)/float64(size.Height))
	if err := b.surface.Draw(board.NewCanvas(dc)); err != nil {
		b.log.Warn("redraw failed", "err", err)
	}
	return dc.Image()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

// --- input ---

func (b *BoardWidget) startStroke(pos fyne.Position) {
	if b.surface.Drawing() {
		return // one stroke at a time
	}
	b.lastPos = pos
	if err := b.surface.StrokeStart(toPoint(pos)); err != nil {
		b.log.Warn("cannot start stroke", "err", err)
		return
	}
	b.raster.Refresh()
}

func (b *BoardWidget) moveStroke(pos fyne.Position) {
	if !b.surface.Drawing() {
		return
	}
	b.lastPos = pos
	b.surface.StrokeSample(toPoint(pos))
}

func (b *BoardWidget) endStroke(pos fyne.Position, cancelled bool) {
	if !b.surface.Drawing() {
		return
	}
	var a *state.Action
	if cancelled {
		a = b.surface.StrokeCancel(toPoint(pos))
	} else {
		a = b.surface.StrokeEnd(toPoint(pos))
	}
	if a != nil && b.OnStrokeDone != nil {
		b.OnStrokeDone(a)
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.startStroke(e.Position)
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.endStroke(e.Position, false)
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.moveStroke(e.Position)
}

func (b *BoardWidget) DragEnd() {
	b.endStroke(b.lastPos, false)
}

func (b *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	b.startStroke(e.Position)
}

func (b *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	b.endStroke(e.Position, false)
}

func (b *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	b.endStroke(e.Position, true)
}

// --- toolbar actions ---

func (b *BoardWidget) SetColor(c color.Color) {
	b.surface.SetColor(gg.FromColor(c))
}

func (b *BoardWidget) SetStroke(w float64) {
	b.surface.SetWidth(w)
}

func (b *BoardWidget) Undo() {
	a := b.surface.Undo()
	if a == nil {
		b.SetStatus("Nothing to undo")
		return
	}
	if b.OnUndo != nil {
		b.OnUndo(a)
	}
}

func (b *BoardWidget) Redo() {
	a := b.surface.Redo()
	if a == nil {
		b.SetStatus("Nothing to redo")
		return
	}
	if b.OnRedo != nil {
		b.OnRedo(a)
	}
}

// ClearPaths is called by the local Clear button. On a shared board it
// removes only this client's strokes, the same ones peers remove.
func (b *BoardWidget) ClearPaths() {
	if b.OnClear == nil {
		b.surface.Clear()
		return
	}
	b.surface.RemoveOwner(b.LocalClientID)
	b.OnClear(b.LocalClientID)
}

// ApplyRemote applies an op from a peer. Call it on the UI goroutine.
func (b *BoardWidget) ApplyRemote(op state.Op) {
	if err := b.surface.Apply(op); err != nil {
		b.log.Warn("dropping remote op", "type", op.Type, "site", op.Site, "err", err)
		return
	}
	b.log.Debug("remote op applied", "type", op.Type, "site", op.Site, "lamport", op.Lamport)
}

// --- files ---

func (b *BoardWidget) SaveToFile(writer io.WriteCloser) {
	defer closeLogged(b.log, writer)
	actions := b.surface.Actions()
	if err := state.WriteBoard(writer, actions); err != nil {
		b.log.Error("saving board", "err", err)
		b.SetStatus("Error saving file")
		return
	}
	b.SetStatus(fmt.Sprintf("Saved %d drawings", len(actions)))
}

func (b *BoardWidget) LoadFromFile(reader io.ReadCloser) {
	defer closeLogged(b.log, reader)
	actions, err := state.ReadBoard(reader)
	if err != nil {
		b.log.Error("loading board", "err", err)
		b.SetStatus("Error parsing file - invalid format")
		return
	}
	// loaded strokes replace this client's own and become its
	added := b.surface.Load(actions)
	b.SetStatus(fmt.Sprintf("Loaded %d drawings", len(added)))
	if b.OnLoad != nil {
		b.OnLoad(added)
	}
}

func (b *BoardWidget) ExportPNG(writer io.WriteCloser) {
	defer closeLogged(b.log, writer)
	img, err := b.surface.ExportImage()
	if err == nil {
		err = export.WritePNG(writer, img)
	}
	if err != nil {
		b.log.Error("exporting png", "err", err)
		b.SetStatus("Error exporting image")
		return
	}
	b.SetStatus("Exported image")
}

func (b *BoardWidget) ExportPDF(writer io.WriteCloser) {
	defer closeLogged(b.log, writer)
	_, size := b.surface.Geometry()
	if err := export.WritePDF(writer, b.surface.Actions(), size); err != nil {
		b.log.Error("exporting pdf", "err", err)
		b.SetStatus("Error exporting PDF")
		return
	}
	b.SetStatus("Exported PDF")
}

func closeLogged(log *slog.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("closing file", "err", err)
	}
}
