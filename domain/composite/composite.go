// Package composite turns a binary foreground mask into the output image.
package composite

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
)

// Kind enumerates the compositing modes.
type Kind int

const (
	KindAlpha Kind = iota
	KindFlatColor
	KindTwoColor
)

func (k Kind) String() string {
	switch k {
	case KindAlpha:
		return "alpha"
	case KindFlatColor:
		return "flat"
	case KindTwoColor:
		return "two-color"
	default:
		return "unknown"
	}
}

// Mode is a compositing mode together with its colors.
type Mode struct {
	Kind Kind
	FG   color.NRGBA
	BG   color.NRGBA
}

// Alpha keeps every color and makes background pixels transparent.
func Alpha() Mode { return Mode{Kind: KindAlpha} }

// FlatColor keeps foreground colors and paints the background bg.
func FlatColor(bg color.NRGBA) Mode { return Mode{Kind: KindFlatColor, BG: opaque(bg)} }

// TwoColor paints a silhouette: foreground fg, background bg.
func TwoColor(fg, bg color.NRGBA) Mode {
	return Mode{Kind: KindTwoColor, FG: opaque(fg), BG: opaque(bg)}
}

// Opaque reports whether the output carries no transparency and can be
// encoded with three channels.
func (m Mode) Opaque() bool { return m.Kind != KindAlpha }

func (m Mode) String() string { return m.Kind.String() }

// ParseMode maps a config or CLI name to a mode kind. The caller supplies the
// colors.
func ParseMode(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alpha":
		return KindAlpha, nil
	case "flat", "flat-color", "flatcolor", "":
		return KindFlatColor, nil
	case "two-color", "twocolor", "silhouette":
		return KindTwoColor, nil
	default:
		return 0, fgerr.Invalid(fmt.Sprintf("compositing mode %q", name))
	}
}

// Composite maps m onto img. The result is always a new image anchored at
// the origin; flat modes produce fully opaque pixels.
func Composite(img image.Image, m *mask.BinaryMask, mode Mode) (*image.NRGBA, error) {
	if img == nil || m == nil {
		return nil, fgerr.Invalid("nil image or mask")
	}
	b := img.Bounds()
	if b.Dx() != m.W || b.Dy() != m.H {
		return nil, fgerr.Invalid(fmt.Sprintf("mask %dx%d does not match image %dx%d", m.W, m.H, b.Dx(), b.Dy()))
	}

	var out *image.NRGBA
	switch mode.Kind {
	case KindAlpha:
		out = imaging.Clone(img)
		for i, fg := range m.Bits {
			a := uint8(0)
			if fg {
				a = 0xff
			}
			out.Pix[(i/m.W)*out.Stride+(i%m.W)*4+3] = a
		}
	case KindFlatColor:
		out = imaging.Clone(img)
		for i, fg := range m.Bits {
			px := out.Pix[(i/m.W)*out.Stride+(i%m.W)*4:]
			if fg {
				px[3] = 0xff
			} else {
				px[0], px[1], px[2], px[3] = mode.BG.R, mode.BG.G, mode.BG.B, 0xff
			}
		}
	case KindTwoColor:
		out = image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
		for i, fg := range m.Bits {
			c := mode.BG
			if fg {
				c = mode.FG
			}
			px := out.Pix[(i/m.W)*out.Stride+(i%m.W)*4:]
			px[0], px[1], px[2], px[3] = c.R, c.G, c.B, 0xff
		}
	default:
		return nil, fgerr.Invalid(fmt.Sprintf("compositing mode %v", mode.Kind))
	}
	return out, nil
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 0xff
	return c
}
