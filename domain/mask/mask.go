package mask

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/soocke/fgcut/domain/fgerr"
)

// Label is the four-state per-pixel seed understood by the optimizer. The
// numeric values match OpenCV's GC_BGD, GC_FGD, GC_PR_BGD and GC_PR_FGD.
type Label uint8

const (
	Background Label = iota
	Foreground
	ProbableBackground
	ProbableForeground
)

func (l Label) String() string {
	switch l {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	case ProbableBackground:
		return "probable-background"
	case ProbableForeground:
		return "probable-foreground"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the four defined states.
func (l Label) Valid() bool { return l <= ProbableForeground }

// IsForeground reports whether l counts as foreground in the binary mask.
func (l Label) IsForeground() bool { return l == Foreground || l == ProbableForeground }

// LabelMask is a row-major grid of labels.
type LabelMask struct {
	W, H   int
	Labels []Label
}

// NewLabelMask returns a w x h mask with every pixel set to fill.
func NewLabelMask(w, h int, fill Label) *LabelMask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m := &LabelMask{W: w, H: h, Labels: make([]Label, w*h)}
	if fill != 0 {
		for i := range m.Labels {
			m.Labels[i] = fill
		}
	}
	return m
}

// Bounds returns the mask extent anchored at the origin.
func (m *LabelMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.W, m.H) }

func (m *LabelMask) At(x, y int) Label { return m.Labels[y*m.W+x] }

func (m *LabelMask) Set(x, y int, l Label) { m.Labels[y*m.W+x] = l }

// Fill sets every pixel of r (clipped to the mask) to l.
func (m *LabelMask) Fill(r image.Rectangle, l Label) {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Labels[y*m.W : (y+1)*m.W]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = l
		}
	}
}

// Count returns how many pixels carry l.
func (m *LabelMask) Count(l Label) int {
	n := 0
	for _, v := range m.Labels {
		if v == l {
			n++
		}
	}
	return n
}

// Validate checks the mask shape and that only the four states are used.
func (m *LabelMask) Validate() error {
	if m == nil {
		return fgerr.Invalid("nil label mask")
	}
	if len(m.Labels) != m.W*m.H {
		return fgerr.Invalid(fmt.Sprintf("label mask holds %d labels for %dx%d", len(m.Labels), m.W, m.H))
	}
	for i, l := range m.Labels {
		if !l.Valid() {
			return fgerr.Invalid(fmt.Sprintf("label %d at (%d,%d)", l, i%m.W, i/m.W))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *LabelMask) Clone() *LabelMask {
	c := &LabelMask{W: m.W, H: m.H, Labels: make([]Label, len(m.Labels))}
	copy(c.Labels, m.Labels)
	return c
}

// Foreground derives the binary mask: Foreground and ProbableForeground are true.
func (m *LabelMask) Foreground() *BinaryMask {
	b := NewBinaryMask(m.W, m.H)
	for i, l := range m.Labels {
		b.Bits[i] = l.IsForeground()
	}
	return b
}

// BinaryMask is a row-major grid of foreground flags.
type BinaryMask struct {
	W, H int
	Bits []bool
}

// NewBinaryMask returns an all-false w x h mask.
func NewBinaryMask(w, h int) *BinaryMask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &BinaryMask{W: w, H: h, Bits: make([]bool, w*h)}
}

func (b *BinaryMask) Bounds() image.Rectangle { return image.Rect(0, 0, b.W, b.H) }

func (b *BinaryMask) At(x, y int) bool { return b.Bits[y*b.W+x] }

func (b *BinaryMask) Set(x, y int, v bool) { b.Bits[y*b.W+x] = v }

// Count returns the number of foreground pixels.
func (b *BinaryMask) Count() int {
	n := 0
	for _, v := range b.Bits {
		if v {
			n++
		}
	}
	return n
}

// Paste copies src into b with src's origin placed at off. Pixels falling
// outside b are dropped.
func (b *BinaryMask) Paste(src *BinaryMask, off image.Point) {
	r := src.Bounds().Add(off).Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Bits[y*b.W+x] = src.Bits[(y-off.Y)*src.W+(x-off.X)]
		}
	}
}

// Gray renders the mask as 0/255 grayscale.
func (b *BinaryMask) Gray() *image.Gray {
	g := image.NewGray(b.Bounds())
	for i, v := range b.Bits {
		if v {
			g.Pix[i] = 0xff
		}
	}
	return g
}

// Resize returns the mask resampled to w x h with nearest-neighbor so edges
// stay hard. Sampling is taken at pixel centers, which makes an upscale
// followed by a downscale back to the original size lossless.
func (b *BinaryMask) Resize(w, h int) *BinaryMask {
	if w == b.W && h == b.H {
		c := NewBinaryMask(w, h)
		copy(c.Bits, b.Bits)
		return c
	}
	if w <= 0 || h <= 0 || b.W == 0 || b.H == 0 {
		return NewBinaryMask(w, h)
	}
	resized := imaging.Resize(b.Gray(), w, h, imaging.NearestNeighbor)
	out := NewBinaryMask(w, h)
	for i := range out.Bits {
		// NRGBA from a gray source: R carries the gray value.
		out.Bits[i] = resized.Pix[i*4] >= 0x80
	}
	return out
}
