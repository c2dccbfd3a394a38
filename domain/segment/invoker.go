// Package segment is the single call boundary to the pixel-labelling
// optimizer. Everything the optimizer raises leaves this package as a
// *Failure.
package segment

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
	"github.com/soocke/fgcut/domain/seed"
)

// ErrSegmentation matches every *Failure.
var ErrSegmentation = fgerr.ErrSegmentation

// DefaultIterations is the optimizer budget used when none is configured.
const DefaultIterations = 5

// InitMode tells the optimizer where its initial labels come from.
type InitMode int

const (
	// InitWithRect: outside rect is Background, inside ProbableForeground.
	InitWithRect InitMode = iota
	// InitWithMask: the supplied labels are used as-is.
	InitWithMask
)

func (m InitMode) String() string {
	switch m {
	case InitWithRect:
		return "rect"
	case InitWithMask:
		return "mask"
	default:
		return "unknown"
	}
}

// Optimizer refines m in place. img and m share their extent and both start
// at the origin. rect is empty in InitWithMask mode.
type Optimizer interface {
	Optimize(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, iterations int, mode InitMode) error
}

// OptimizerFunc adapts a function to Optimizer.
type OptimizerFunc func(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, iterations int, mode InitMode) error

func (f OptimizerFunc) Optimize(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, iterations int, mode InitMode) error {
	return f(img, m, rect, iterations, mode)
}

// Failure is a fault raised by the optimizer. No partial result accompanies it.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string { return "segmentation failed: " + f.Op + ": " + f.Err.Error() }

func (f *Failure) Unwrap() []error { return []error{ErrSegmentation, f.Err} }

// Invoker packages seeds for the optimizer and translates its faults.
type Invoker struct {
	optimizer Optimizer
	logger    *slog.Logger
}

func NewInvoker(optimizer Optimizer, logger *slog.Logger) *Invoker {
	return &Invoker{optimizer: optimizer, logger: logger}
}

// Run refines s over its region of img and returns the label mask for that
// region. The seed is not modified.
func (inv *Invoker) Run(img *image.NRGBA, s *seed.Seed, iterations int) (*mask.LabelMask, error) {
	if inv.optimizer == nil {
		return nil, fgerr.Invalid("no optimizer configured")
	}
	if iterations < 1 {
		return nil, fgerr.Invalid(fmt.Sprintf("iterations %d", iterations))
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fgerr.Invalid("empty image")
	}
	if s == nil {
		return nil, fgerr.Invalid("nil seed")
	}
	region := s.Region
	if region.Empty() || !region.In(img.Bounds()) {
		return nil, fgerr.Invalid(fmt.Sprintf("seed region %v outside image %v", region, img.Bounds()))
	}

	var (
		labels *mask.LabelMask
		rect   image.Rectangle
		mode   InitMode
	)
	switch s.Kind {
	case seed.KindMask:
		if err := s.Mask.Validate(); err != nil {
			return nil, err
		}
		if s.Mask.W != region.Dx() || s.Mask.H != region.Dy() {
			return nil, fgerr.Invalid(fmt.Sprintf("seed mask %dx%d does not cover region %v", s.Mask.W, s.Mask.H, region))
		}
		labels = s.Mask.Clone()
		mode = InitWithMask
	case seed.KindRect:
		local := image.Rect(0, 0, region.Dx(), region.Dy())
		if s.Rect.Empty() || !s.Rect.In(local) {
			return nil, fgerr.Invalid(fmt.Sprintf("seed rectangle %v outside region %v", s.Rect, local))
		}
		labels = mask.NewLabelMask(region.Dx(), region.Dy(), mask.ProbableBackground)
		rect = s.Rect
		mode = InitWithRect
	default:
		return nil, fgerr.Invalid(fmt.Sprintf("seed kind %v", s.Kind))
	}

	patch := img
	if region != img.Bounds() || region.Min != (image.Point{}) {
		patch = imaging.Crop(img, region)
	}

	if inv.logger != nil {
		inv.logger.Debug("optimizer call", "mode", mode.String(), "region", region.String(), "rect", rect.String(), "iterations", iterations)
	}
	start := time.Now()
	if err := inv.call(patch, labels, rect, iterations, mode); err != nil {
		if inv.logger != nil {
			inv.logger.Error("optimizer failed", "mode", mode.String(), "error", err)
		}
		return nil, &Failure{Op: mode.String(), Err: err}
	}
	if err := labels.Validate(); err != nil {
		return nil, &Failure{Op: mode.String(), Err: fmt.Errorf("labels written back: %s", err)}
	}
	if inv.logger != nil {
		inv.logger.Info("optimizer finished", "mode", mode.String(), "duration", time.Since(start).String(),
			"foreground", labels.Count(mask.Foreground)+labels.Count(mask.ProbableForeground))
	}
	return labels, nil
}

func (inv *Invoker) call(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, iterations int, mode InitMode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("optimizer panic: %v", r)
		}
	}()
	return inv.optimizer.Optimize(img, m, rect, iterations, mode)
}
