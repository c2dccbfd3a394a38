// Package seed builds the initial optimizer input for each seeding strategy.
//
// Every mask-producing strategy covers each pixel of its region exactly once
// and only writes the four mask labels. Coordinates are working-image pixels.
package seed

import (
	"fmt"
	"image"

	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
	"github.com/soocke/fgcut/domain/scale"
)

// DefaultPad is the margin in pixels added around an interactive selection.
const DefaultPad = 10

// Kind selects how the optimizer is initialised.
type Kind int

const (
	KindMask Kind = iota
	KindRect
)

func (k Kind) String() string {
	switch k {
	case KindMask:
		return "mask"
	case KindRect:
		return "rect"
	default:
		return "unknown"
	}
}

// Seed is the optimizer input produced by a strategy. Region is the part of
// the working image the optimizer sees; Mask (KindMask) and Rect (KindRect)
// are expressed relative to Region.Min.
type Seed struct {
	Kind   Kind
	Region image.Rectangle
	Mask   *mask.LabelMask
	Rect   image.Rectangle
}

// BorderSimilarity labels the frame Background, interior pixels close to the
// frame's mean color ProbableBackground, and the rest ProbableForeground.
func BorderSimilarity(img image.Image, model *ColorModel) (*Seed, error) {
	if img == nil || model == nil {
		return nil, fgerr.Invalid("nil image or color model")
	}
	r := img.Bounds()
	if r.Dx() != model.W || r.Dy() != model.H {
		return nil, fgerr.Invalid(fmt.Sprintf("color model fitted on %dx%d, image is %dx%d", model.W, model.H, r.Dx(), r.Dy()))
	}
	m := mask.NewLabelMask(model.W, model.H, mask.ProbableForeground)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			switch {
			case model.InBorder(x, y):
				m.Set(x, y, mask.Background)
			case model.Similar(rgbAt(img, r.Min.X+x, r.Min.Y+y)):
				m.Set(x, y, mask.ProbableBackground)
			}
		}
	}
	return &Seed{Kind: KindMask, Region: m.Bounds(), Mask: m}, nil
}

// RectangleHint hands the clipped rectangle to the optimizer's own
// rectangle initialisation; no mask is built here.
func RectangleHint(r, bounds image.Rectangle) (*Seed, error) {
	clipped := r.Canon().Intersect(bounds)
	if clipped.Empty() {
		return nil, fgerr.Invalid(fmt.Sprintf("rectangle %v outside %v", r, bounds))
	}
	return &Seed{Kind: KindRect, Region: bounds, Rect: clipped.Sub(bounds.Min)}, nil
}

// MaskHint seeds a patch made of roi grown by m pixels per side. The roi
// itself is ProbableForeground, the outermost rows and columns of the patch
// are Background and everything else ProbableBackground.
func MaskHint(roi image.Rectangle, m int, bounds image.Rectangle) (*Seed, error) {
	if m < 0 {
		return nil, fgerr.Invalid(fmt.Sprintf("margin %d", m))
	}
	roi = roi.Canon().Intersect(bounds)
	if roi.Empty() {
		return nil, fgerr.Invalid("empty region of interest")
	}
	patch := scale.Pad(roi, m, bounds)
	lm := mask.NewLabelMask(patch.Dx(), patch.Dy(), mask.ProbableBackground)
	lm.Fill(roi.Sub(patch.Min), mask.ProbableForeground)

	w, h := lm.W, lm.H
	lm.Fill(image.Rect(0, 0, w, 1), mask.Background)
	lm.Fill(image.Rect(0, h-1, w, h), mask.Background)
	lm.Fill(image.Rect(0, 0, 1, h), mask.Background)
	lm.Fill(image.Rect(w-1, 0, w, h), mask.Background)
	return &Seed{Kind: KindMask, Region: patch, Mask: lm}, nil
}

// Centered assumes a subject roughly in the middle quarter of the frame.
func Centered(w, h int) (*Seed, error) {
	center := scale.XYWH(w/4, h/4, w/2, h/2)
	if w < 1 || h < 1 || center.Empty() {
		return nil, fgerr.Invalid(fmt.Sprintf("image %dx%d too small for centered seeding", w, h))
	}
	m := mask.NewLabelMask(w, h, mask.ProbableBackground)
	band := max(1, min(w, h)/20)
	m.Fill(image.Rect(0, 0, w, band), mask.ProbableBackground)
	m.Fill(image.Rect(0, h-band, w, h), mask.ProbableBackground)
	m.Fill(image.Rect(0, 0, band, h), mask.ProbableBackground)
	m.Fill(image.Rect(w-band, 0, w, h), mask.ProbableBackground)
	m.Fill(center, mask.ProbableForeground)
	return &Seed{Kind: KindMask, Region: m.Bounds(), Mask: m}, nil
}

// Interactive seeds from a confirmed selection. Selections smaller than 2x2
// are rejected with fgerr.ErrRectTooSmall.
func Interactive(sel image.Rectangle, pad int, bounds image.Rectangle) (*Seed, error) {
	sel = sel.Canon().Intersect(bounds)
	if sel.Dx() < 2 || sel.Dy() < 2 {
		return nil, fmt.Errorf("%w: %dx%d", fgerr.ErrRectTooSmall, sel.Dx(), sel.Dy())
	}
	return MaskHint(sel, pad, bounds)
}
