package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"localboard/internal/board"
	"localboard/internal/export"
	"localboard/internal/state"
)

type renderOptions struct {
	out         string
	pdf         string
	orientation string
	width       float64
	height      float64
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{orientation: state.Portrait.String(), width: 768, height: 1024}
	cmd := &cobra.Command{
		Use:   "render <board.json>",
		Short: "Render a saved board to PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "write a PNG image to this path")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "write an A4 PDF to this path")
	cmd.Flags().StringVar(&opts.orientation, "orientation", opts.orientation,
		"orientation the PNG is drawn for (portrait, portrait-upside-down, landscape-left, landscape-right)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "view width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "view height in pixels")
	return cmd
}

func runRender(path string, opts renderOptions) error {
	if opts.out == "" && opts.pdf == "" {
		return errors.New("nothing to do: pass --out and/or --pdf")
	}
	o, err := state.ParseOrientation(opts.orientation)
	if err != nil {
		return err
	}
	view := state.Size{Width: opts.width, Height: opts.height}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	actions, err := state.ReadBoard(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	slog.Debug("board loaded", "path", path, "actions", len(actions))

	if opts.out != "" {
		err := writeFile(opts.out, func(w io.Writer) error {
			if o == state.Portrait {
				return export.WriteActionsPNG(w, actions, view)
			}
			img, err := board.RenderActions(actions, o, view)
			if err != nil {
				return err
			}
			return export.WritePNG(w, img)
		})
		if err != nil {
			return err
		}
		slog.Info("wrote image", "path", opts.out, "orientation", o)
	}
	if opts.pdf != "" {
		err := writeFile(opts.pdf, func(w io.Writer) error {
			return export.WritePDF(w, actions, view)
		})
		if err != nil {
			return err
		}
		slog.Info("wrote pdf", "path", opts.pdf)
	}
	return nil
}

// writeFile creates path and removes it again if write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
