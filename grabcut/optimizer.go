// Package grabcut implements segment.Optimizer on top of OpenCV's GrabCut.
package grabcut

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/soocke/fgcut/domain/mask"
	"github.com/soocke/fgcut/domain/segment"
)

// ErrDegenerate is returned for inputs OpenCV would abort on: a zero-area or
// whole-image rectangle, or a mask without background or foreground samples.
// OpenCV exceptions cannot be recovered from Go, so they are caught here.
var ErrDegenerate = errors.New("degenerate grabcut input")

// Optimizer runs cv::grabCut. Mats are created and released inside each
// call, so one Optimizer may serve concurrent requests.
type Optimizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Optimizer { return &Optimizer{logger: logger} }

// Optimize implements segment.Optimizer.
func (o *Optimizer) Optimize(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, iterations int, mode segment.InitMode) error {
	if err := Check(img, m, rect, mode); err != nil {
		return err
	}
	w, h := m.W, m.H
	if img.Stride != 4*w || img.Rect.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return fmt.Errorf("image to mat: %w", err)
	}
	defer rgba.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	raw := make([]byte, len(m.Labels))
	for i, l := range m.Labels {
		raw[i] = byte(l)
	}
	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, raw)
	if err != nil {
		return fmt.Errorf("mask to mat: %w", err)
	}
	labels := view.Clone()
	view.Close()
	defer labels.Close()

	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	if o.logger != nil {
		o.logger.Debug("grabcut", "width", w, "height", h, "mode", mode.String(), "iterations", iterations)
	}
	switch mode {
	case segment.InitWithRect:
		gocv.GrabCut(bgr, &labels, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)
	default:
		gocv.GrabCut(bgr, &labels, image.Rectangle{}, &bgdModel, &fgdModel, iterations, gocv.GCInitWithMask)
	}

	if labels.Empty() || labels.Rows() != h || labels.Cols() != w {
		return fmt.Errorf("grabcut returned a %dx%d mask for %dx%d", labels.Cols(), labels.Rows(), w, h)
	}
	out := labels.ToBytes()
	if len(out) != len(m.Labels) {
		return fmt.Errorf("grabcut returned %d labels, want %d", len(out), len(m.Labels))
	}
	for i, b := range out {
		m.Labels[i] = mask.Label(b)
	}
	return nil
}

// Check rejects inputs that would make OpenCV throw.
func Check(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, mode segment.InitMode) error {
	if img == nil || m == nil {
		return fmt.Errorf("%w: nil image or mask", ErrDegenerate)
	}
	b := img.Bounds()
	if b.Dx() != m.W || b.Dy() != m.H || len(m.Labels) != m.W*m.H {
		return fmt.Errorf("%w: mask %dx%d for image %dx%d", ErrDegenerate, m.W, m.H, b.Dx(), b.Dy())
	}
	local := image.Rect(0, 0, m.W, m.H)
	switch mode {
	case segment.InitWithRect:
		if rect.Empty() || !rect.In(local) {
			return fmt.Errorf("%w: rectangle %v in %v", ErrDegenerate, rect, local)
		}
		if rect == local {
			return fmt.Errorf("%w: rectangle covers the whole image, no background samples", ErrDegenerate)
		}
	case segment.InitWithMask:
		var bg, fg int
		for _, l := range m.Labels {
			if l.IsForeground() {
				fg++
			} else {
				bg++
			}
		}
		if fg == 0 || bg == 0 {
			return fmt.Errorf("%w: %d foreground and %d background samples", ErrDegenerate, fg, bg)
		}
	default:
		return fmt.Errorf("%w: mode %v", ErrDegenerate, mode)
	}
	return nil
}

var _ segment.Optimizer = (*Optimizer)(nil)
