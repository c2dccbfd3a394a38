package app

import (
	"errors"
	"image"
	"image/color"

	"github.com/soocke/fgcut/domain/composite"
	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/grabcut"
	"github.com/soocke/fgcut/imageio"
)

// Library status codes.
const (
	StatusOK           = 0
	StatusLoadFailed   = -1
	StatusWriteFailed  = -2
	StatusInvalidInput = -3
	StatusSegmentation = -4
)

// Process exit codes of the command-line front-ends.
const (
	ExitOK           = 0
	ExitUsage        = 1
	ExitUnreadable   = 2
	ExitRectTooSmall = 3
	ExitOptimizer    = 4
	ExitWrite        = 5
	ExitCancelled    = 6
)

// StatusCode maps a pipeline error to a library status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, fgerr.ErrLoad):
		return StatusLoadFailed
	case errors.Is(err, fgerr.ErrIO):
		return StatusWriteFailed
	case errors.Is(err, fgerr.ErrInvalidInput):
		return StatusInvalidInput
	default:
		return StatusSegmentation
	}
}

// ExitCode maps a pipeline error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, fgerr.ErrUserCancelled):
		return ExitCancelled
	case errors.Is(err, fgerr.ErrLoad):
		return ExitUnreadable
	case errors.Is(err, fgerr.ErrRectTooSmall):
		return ExitRectTooSmall
	case errors.Is(err, fgerr.ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, fgerr.ErrSegmentation):
		return ExitOptimizer
	case errors.Is(err, fgerr.ErrIO):
		return ExitWrite
	default:
		return ExitUsage
	}
}

// SaveResult writes img to path; the format follows the extension. Alpha
// mode output keeps its alpha channel even when nothing is transparent.
func SaveResult(path string, img image.Image, mode composite.Mode) error {
	if mode.Opaque() {
		return imageio.Save(path, img)
	}
	return imageio.SaveAlpha(path, img)
}

// Exec cuts out the subject inside the rectangle (x, y, w, h), grown by
// margin percent, and writes it on a black background. Returns a status code.
func Exec(input, output string, x, y, w, h, margin int) int {
	return execFile(defaultExtractor(), input, output, scale.XYWH(x, y, w, h), margin,
		composite.FlatColor(color.NRGBA{A: 0xff}))
}

// ExecWithColors is Exec with a choice of output: keepColor keeps the
// subject's colors on a bg background, otherwise a fg silhouette on bg.
func ExecWithColors(input, output string, x, y, w, h, margin int, keepColor bool, fg, bg [3]uint8) int {
	mode := composite.TwoColor(rgb(fg), rgb(bg))
	if keepColor {
		mode = composite.FlatColor(rgb(bg))
	}
	return execFile(defaultExtractor(), input, output, scale.XYWH(x, y, w, h), margin, mode)
}

func execFile(ext *Extractor, input, output string, rect image.Rectangle, margin int, mode composite.Mode) int {
	img, err := imageio.Load(input)
	if err != nil {
		return StatusCode(err)
	}
	opts := DefaultOptions()
	opts.Strategy = StrategyRectangleHint
	opts.Rect = rect
	opts.Margin = margin
	opts.Mode = mode
	res, err := ext.Extract(img, opts)
	if err != nil {
		return StatusCode(err)
	}
	return StatusCode(SaveResult(output, res.Image, mode))
}

func defaultExtractor() *Extractor {
	return NewExtractor(grabcut.New(nil), nil)
}

func rgb(c [3]uint8) color.NRGBA { return color.NRGBA{c[0], c[1], c[2], 0xff} }
