// Package scale maps rectangles, images and masks between the original
// resolution and the downscaled working resolution.
//
// All functions are pure. The scale factor s is the working/original ratio
// and must lie in (0, 1]; callers clamp user input with Clamp first.
package scale

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
)

const (
	MinScale     = 0.1
	MaxScale     = 1.0
	DefaultScale = 0.5
)

// Clamp forces s into [MinScale, MaxScale]. NaN maps to DefaultScale.
func Clamp(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// Validate rejects factors outside (0, 1].
func Validate(s float64) error {
	if math.IsNaN(s) || s <= 0 || s > MaxScale {
		return fgerr.Invalid(fmt.Sprintf("scale %v outside (0, 1]", s))
	}
	return nil
}

// XYWH builds a rectangle from origin and size.
func XYWH(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

// ToWorking maps r from original to working coordinates and clips it to bounds
// (the working image bounds).
func ToWorking(r image.Rectangle, s float64, bounds image.Rectangle) image.Rectangle {
	return mapRect(r, s, bounds)
}

// ToOriginal maps r from working to original coordinates and clips it to
// bounds (the original image bounds).
func ToOriginal(r image.Rectangle, s float64, bounds image.Rectangle) image.Rectangle {
	return mapRect(r, 1/s, bounds)
}

func mapRect(r image.Rectangle, f float64, bounds image.Rectangle) image.Rectangle {
	r = r.Canon()
	out := image.Rect(
		roundInt(float64(r.Min.X)*f),
		roundInt(float64(r.Min.Y)*f),
		roundInt(float64(r.Max.X)*f),
		roundInt(float64(r.Max.Y)*f),
	)
	return out.Intersect(bounds)
}

// WorkingSize is the size Downscale produces for an original of w x h.
func WorkingSize(w, h int, s float64) (int, int) {
	return max(1, roundInt(float64(w)*s)), max(1, roundInt(float64(h)*s))
}

// Downscale shrinks img by s with an area-averaging (box) filter. The result
// always starts at the origin.
func Downscale(img image.Image, s float64) (*image.NRGBA, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fgerr.Invalid("empty image")
	}
	w, h := WorkingSize(b.Dx(), b.Dy(), s)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, w, h, imaging.Box), nil
}

// UpscaleMask resamples m to w x h with nearest-neighbor.
func UpscaleMask(m *mask.BinaryMask, w, h int) (*mask.BinaryMask, error) {
	if m == nil {
		return nil, fgerr.Invalid("nil mask")
	}
	if w <= 0 || h <= 0 {
		return nil, fgerr.Invalid(fmt.Sprintf("target size %dx%d", w, h))
	}
	return m.Resize(w, h), nil
}

// ExpandByPercent grows r by pct percent of its width and height on every
// side, then clips it to bounds. pct is clamped to [0, 100].
func ExpandByPercent(r image.Rectangle, pct int, bounds image.Rectangle) image.Rectangle {
	pct = min(100, max(0, pct))
	r = r.Canon()
	if pct == 0 {
		return r.Intersect(bounds)
	}
	f := float64(pct) / 100
	dw := roundInt(float64(r.Dx()) * f)
	dh := roundInt(float64(r.Dy()) * f)
	return image.Rect(r.Min.X-dw, r.Min.Y-dh, r.Max.X+dw, r.Max.Y+dh).Intersect(bounds)
}

// Pad grows r by px pixels on every side, clipped to bounds.
func Pad(r image.Rectangle, px int, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Inset(-px).Intersect(bounds)
}

func roundInt(v float64) int { return int(math.Round(v)) }
