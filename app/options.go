package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/soocke/fgcut/config"
	"github.com/soocke/fgcut/domain/composite"
	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/domain/seed"
	"github.com/soocke/fgcut/domain/segment"
)

// Strategy enumerates the seeding strategies.
type Strategy int

const (
	StrategyBorderSimilarity Strategy = iota
	StrategyRectangleHint
	StrategyMaskHint
	StrategyCentered
	StrategyInteractive
)

func (s Strategy) String() string {
	switch s {
	case StrategyBorderSimilarity:
		return "border-similarity"
	case StrategyRectangleHint:
		return "rectangle-hint"
	case StrategyMaskHint:
		return "mask-hint"
	case StrategyCentered:
		return "centered"
	case StrategyInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// NeedsRect reports whether the strategy seeds from a rectangle.
func (s Strategy) NeedsRect() bool {
	return s == StrategyRectangleHint || s == StrategyMaskHint || s == StrategyInteractive
}

// ParseStrategy maps a config/CLI name to a Strategy. "auto" picks the
// rectangle hint when a rectangle is available and border similarity
// otherwise.
func ParseStrategy(name string, haveRect bool) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if haveRect {
			return StrategyRectangleHint, nil
		}
		return StrategyBorderSimilarity, nil
	case "border", "border-similarity":
		return StrategyBorderSimilarity, nil
	case "rect", "rectangle", "rectangle-hint":
		return StrategyRectangleHint, nil
	case "mask", "mask-hint":
		return StrategyMaskHint, nil
	case "centered", "center":
		return StrategyCentered, nil
	case "interactive":
		return StrategyInteractive, nil
	default:
		return 0, fgerr.Invalid(fmt.Sprintf("strategy %q", name))
	}
}

// Options is the single configuration object of the extraction pipeline.
type Options struct {
	Strategy   Strategy
	Mode       composite.Mode
	Scale      float64
	Iterations int
	Margin     int     // percent, rectangle-hint only
	Pad        int     // working pixels, mask-hint and interactive
	Border     int     // working pixels, border-similarity
	Threshold  float64 // RGB distance, border-similarity
	// Rect is in original-image pixels, except for StrategyInteractive where
	// it is already in working-image pixels.
	Rect  image.Rectangle
	Debug bool
}

// DefaultOptions mirrors config.DefaultConfig with the border-similarity
// strategy and a black flat background.
func DefaultOptions() Options {
	return Options{
		Strategy:   StrategyBorderSimilarity,
		Mode:       composite.FlatColor(color.NRGBA{A: 0xff}),
		Scale:      scale.DefaultScale,
		Iterations: segment.DefaultIterations,
		Pad:        seed.DefaultPad,
		Border:     seed.DefaultBorder,
		Threshold:  seed.DefaultThreshold,
	}
}

// OptionsFromConfig builds Options from a validated config. rect may be empty
// when the strategy does not need one.
func OptionsFromConfig(cfg *config.Config, rect image.Rectangle) (Options, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts := DefaultOptions()
	st, err := ParseStrategy(cfg.Strategy, !rect.Empty())
	if err != nil {
		return opts, err
	}
	mode, err := ModeFromNames(cfg.Mode, cfg.Foreground, cfg.Background)
	if err != nil {
		return opts, err
	}
	opts.Strategy = st
	opts.Mode = mode
	opts.Scale = cfg.Scale
	opts.Iterations = cfg.Iterations
	opts.Margin = cfg.Margin
	opts.Pad = cfg.Pad
	opts.Border = cfg.Border
	opts.Threshold = cfg.Threshold
	opts.Rect = rect
	opts.Debug = cfg.Debug
	return opts, nil
}

// ModeFromNames parses a compositing mode name and its hex colors.
func ModeFromNames(name, fg, bg string) (composite.Mode, error) {
	kind, err := composite.ParseMode(name)
	if err != nil {
		return composite.Mode{}, err
	}
	switch kind {
	case composite.KindAlpha:
		return composite.Alpha(), nil
	case composite.KindTwoColor:
		f, err := ParseColor(fg)
		if err != nil {
			return composite.Mode{}, err
		}
		b, err := ParseColor(bg)
		if err != nil {
			return composite.Mode{}, err
		}
		return composite.TwoColor(f, b), nil
	default:
		b, err := ParseColor(bg)
		if err != nil {
			return composite.Mode{}, err
		}
		return composite.FlatColor(b), nil
	}
}

// Validate rejects options the pipeline cannot run with.
func (o Options) Validate() error {
	if o.Strategy < StrategyBorderSimilarity || o.Strategy > StrategyInteractive {
		return fgerr.Invalid(fmt.Sprintf("strategy %d", o.Strategy))
	}
	if err := scale.Validate(o.Scale); err != nil {
		return err
	}
	if o.Iterations < 1 {
		return fgerr.Invalid(fmt.Sprintf("iterations %d", o.Iterations))
	}
	if o.Margin < 0 || o.Margin > 100 {
		return fgerr.Invalid(fmt.Sprintf("margin %d outside [0, 100]", o.Margin))
	}
	if o.Pad < 0 {
		return fgerr.Invalid(fmt.Sprintf("pad %d", o.Pad))
	}
	if o.Border < 1 {
		return fgerr.Invalid(fmt.Sprintf("border %d", o.Border))
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 {
		return fgerr.Invalid(fmt.Sprintf("threshold %v", o.Threshold))
	}
	// A click or a one-pixel drag is a degenerate selection, which the
	// interactive seed reports as ErrRectTooSmall.
	if o.Strategy.NeedsRect() && o.Strategy != StrategyInteractive && o.Rect.Canon().Empty() {
		return fgerr.Invalid(fmt.Sprintf("%s needs a rectangle", o.Strategy))
	}
	return nil
}

// ParseColor accepts "#rrggbb" hex (go-colorful) or "r,g,b" with 0-255
// components.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.NRGBA{}, fgerr.Invalid(fmt.Sprintf("color %q", s))
		}
		var c [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.NRGBA{}, fgerr.Invalid(fmt.Sprintf("color %q", s))
			}
			c[i] = uint8(v)
		}
		return color.NRGBA{c[0], c[1], c[2], 0xff}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fgerr.Invalid(fmt.Sprintf("color %q: %v", s, err))
	}
	r, g, b := cf.RGB255()
	return color.NRGBA{r, g, b, 0xff}, nil
}
