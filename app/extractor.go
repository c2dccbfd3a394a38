package app

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/soocke/fgcut/debug"
	"github.com/soocke/fgcut/domain/composite"
	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/domain/seed"
	"github.com/soocke/fgcut/domain/segment"
)

// Result of one extraction.
type Result struct {
	RunID   string
	Image   *image.NRGBA     // composited output, original resolution
	Mask    *mask.BinaryMask // foreground at original resolution
	Working *mask.BinaryMask // foreground at working resolution
	Seed    *seed.Seed       // what the optimizer was initialised with
}

// Extractor runs the downscale, seed, optimize, upscale and composite
// pipeline. It holds no per-call state.
type Extractor struct {
	optimizer segment.Optimizer
	logger    *slog.Logger
}

func NewExtractor(optimizer segment.Optimizer, logger *slog.Logger) *Extractor {
	return &Extractor{optimizer: optimizer, logger: logger}
}

// Extract separates the foreground of img according to opts.
func (e *Extractor) Extract(img image.Image, opts Options) (*Result, error) {
	runID := ksuid.New().String()
	var logger *slog.Logger
	if e.logger != nil {
		logger = e.logger.With("run_id", runID, "strategy", opts.Strategy.String())
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fgerr.Invalid("empty image")
	}
	start := time.Now()
	b := img.Bounds()

	work, err := scale.Downscale(img, opts.Scale)
	if err != nil {
		return nil, err
	}
	wb := work.Bounds()
	if logger != nil {
		logger.Debug("working image", "width", wb.Dx(), "height", wb.Dy(), "scale", opts.Scale)
	}

	s, err := e.seed(work, b, opts)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", opts.Strategy, err)
	}

	if opts.Debug {
		debug.LogMemStats(logger, "before-optimize")
	}
	labels, err := segment.NewInvoker(e.optimizer, logger).Run(work, s, opts.Iterations)
	if opts.Debug {
		debug.LogMemStats(logger, "after-optimize")
	}
	if err != nil {
		return nil, err
	}

	fg := mask.NewBinaryMask(wb.Dx(), wb.Dy())
	fg.Paste(labels.Foreground(), s.Region.Min)
	full, err := scale.UpscaleMask(fg, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	out, err := composite.Composite(img, full, opts.Mode)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("extraction finished",
			"mode", opts.Mode.String(),
			"foreground_pixels", full.Count(),
			"duration", time.Since(start).String())
	}
	return &Result{RunID: runID, Image: out, Mask: full, Working: fg, Seed: s}, nil
}

// seed builds the optimizer input on the working image. orig is the
// original image bounds.
func (e *Extractor) seed(work *image.NRGBA, orig image.Rectangle, opts Options) (*seed.Seed, error) {
	wb := work.Bounds()
	// Rectangles from the outside are relative to the original's origin.
	origin := image.Rect(0, 0, orig.Dx(), orig.Dy())
	switch opts.Strategy {
	case StrategyBorderSimilarity:
		model, err := seed.FitColorModel(work, opts.Border, opts.Threshold)
		if err != nil {
			return nil, err
		}
		return seed.BorderSimilarity(work, model)
	case StrategyRectangleHint:
		r := scale.ExpandByPercent(opts.Rect, opts.Margin, origin)
		return seed.RectangleHint(scale.ToWorking(r, opts.Scale, wb), wb)
	case StrategyMaskHint:
		return seed.MaskHint(scale.ToWorking(opts.Rect.Canon().Intersect(origin), opts.Scale, wb), opts.Pad, wb)
	case StrategyCentered:
		return seed.Centered(wb.Dx(), wb.Dy())
	case StrategyInteractive:
		return seed.Interactive(opts.Rect, opts.Pad, wb)
	default:
		return nil, fgerr.Invalid(fmt.Sprintf("strategy %d", opts.Strategy))
	}
}
