package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	defaultStroke = 3.0
	eraserStroke  = 20.0
)

// swatch is one colour in the palette. The selected swatch gets a thick
// border in the theme's primary colour.
type swatch struct {
	widget.BaseWidget
	color    color.Color
	selected bool
	onTapped func(*swatch)
}

func newSwatch(c color.Color, tapped func(*swatch)) *swatch {
	s := &swatch{color: c, onTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *swatch) setSelected(on bool) {
	if s.selected == on {
		return
	}
	s.selected = on
	s.Refresh()
}

func (s *swatch) Tapped(*fyne.PointEvent) {
	if s.onTapped != nil {
		s.onTapped(s)
	}
}

func (s *swatch) CreateRenderer() fyne.WidgetRenderer {
	fill := canvas.NewRectangle(s.color)
	fill.SetMinSize(fyne.NewSize(32, 32))
	border := canvas.NewRectangle(color.Transparent)
	r := &swatchRenderer{s: s, fill: fill, border: border}
	r.Refresh()
	return r
}

type swatchRenderer struct {
	s      *swatch
	fill   *canvas.Rectangle
	border *canvas.Rectangle
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.fill.Resize(size)
	r.border.Resize(size)
}

func (r *swatchRenderer) MinSize() fyne.Size { return r.fill.MinSize() }

func (r *swatchRenderer) Refresh() {
	if r.s.selected {
		r.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		r.border.StrokeWidth = 3
	} else {
		r.border.StrokeColor = color.Gray{Y: 150}
		r.border.StrokeWidth = 1
	}
	r.border.Refresh()
	r.fill.Refresh()
}

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.fill, r.border}
}

func (r *swatchRenderer) Destroy() {}

// palette is a row of swatches with at most one selected. While the eraser
// is active none is.
type palette struct {
	swatches []*swatch
	current  color.Color // last pen colour, restored by the pen tool
	onPick   func(color.Color)
}

// penColors are offered next to the pen, black first.
var penColors = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 160, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 200, A: 255},
}

func newPalette(colors []color.Color, onPick func(color.Color)) *palette {
	p := &palette{current: colors[0], onPick: onPick}
	for _, c := range colors {
		p.swatches = append(p.swatches, newSwatch(c, p.pick))
	}
	p.swatches[0].setSelected(true)
	return p
}

func (p *palette) pick(s *swatch) {
	p.current = s.color
	p.highlight(s.color)
	p.onPick(s.color)
}

// highlight selects the swatch showing c, or none.
func (p *palette) highlight(c color.Color) {
	for _, s := range p.swatches {
		s.setSelected(c != nil && s.color == c)
	}
}

func (p *palette) object() fyne.CanvasObject {
	box := container.NewHBox()
	for _, s := range p.swatches {
		box.Add(s)
	}
	return box
}

// NewToolbar builds the pen, eraser, history and file controls for board.
func NewToolbar(board *BoardWidget, win fyne.Window) fyne.CanvasObject {
	colors := newPalette(penColors, board.SetColor)

	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(defaultStroke)
	strokeSlider.OnChanged = func(val float64) {
		board.SetStroke(val)
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			board.SetColor(colors.current)
			colors.highlight(colors.current)
			if strokeSlider.Value >= eraserStroke {
				strokeSlider.SetValue(defaultStroke)
			}
		}), // Pen
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			board.SetColor(color.White)
			colors.highlight(nil)
			strokeSlider.SetValue(eraserStroke)
		}), // Eraser
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), board.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), board.Redo),
		widget.NewToolbarAction(theme.ContentClearIcon(), board.ClearPaths),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			saveDialog(win, "board.json", ".json", board.SaveToFile)
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			openDialog(win, ".json", board.LoadFromFile)
		}),
		widget.NewToolbarAction(theme.MediaPhotoIcon(), func() {
			saveDialog(win, "board.png", ".png", board.ExportPNG)
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			saveDialog(win, "board.pdf", ".pdf", board.ExportPDF)
		}),
	)

	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colors.object(),
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
