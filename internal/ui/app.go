package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp shows the board in a window and blocks until it is closed. A
// non-empty shareLink is shown so clients can join.
func RunApp(a fyne.App, shareLink string, board *BoardWidget) {
	if a == nil {
		a = app.NewWithID("io.localboard")
	}
	win := a.NewWindow("Local Whiteboard")
	win.Resize(fyne.NewSize(1024, 768))

	toolbar := NewToolbar(board, win)

	bottom := []fyne.CanvasObject{board.StatusBar()}
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		link.Disable()
		bottom = append(bottom, widget.NewLabel("Share:"), link)
	}

	content := container.NewBorder(toolbar, container.NewHBox(bottom...), nil, nil, board)
	win.SetContent(content)
	win.ShowAndRun()
}
