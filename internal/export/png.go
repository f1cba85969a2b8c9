// Package export writes a board's portrait rendering to image and document
// files.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"localboard/internal/board"
	"localboard/internal/state"
)

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("png export: %w", err)
	}
	return nil
}

// WriteActionsPNG renders actions the way Surface.ExportImage does, for a
// view of the given size, and encodes the result.
func WriteActionsPNG(w io.Writer, actions []*state.Action, view state.Size) error {
	img, err := board.RenderActions(actions, state.Portrait, view.PortraitBox())
	if err != nil {
		return fmt.Errorf("png export: %w", err)
	}
	return WritePNG(w, img)
}
