package images

import (
	"image"
	"image/color"
	"image/draw"
)

// SelectionColor is the outline color of the live selection.
var SelectionColor = color.NRGBA{G: 0xff, A: 0xff}

// SelectionThickness is the outline width in display pixels.
const SelectionThickness = 2

// Preview renders an image for display, optionally shrunk to fit the
// screen, and maps pointer positions back to image pixels.
type Preview struct {
	base   *image.NRGBA    // display-size copy, origin (0,0)
	bounds image.Rectangle // source image bounds
}

// NewPreview prepares img for display inside maxW x maxH.
func NewPreview(img image.Image, maxW, maxH int) *Preview {
	if img == nil {
		return &Preview{base: image.NewNRGBA(image.Rectangle{})}
	}
	return &Preview{base: ScaleToFit(img, maxW, maxH), bounds: img.Bounds()}
}

// Size of the displayed image.
func (p *Preview) Size() image.Point { return p.base.Rect.Size() }

// Bounds of the source image.
func (p *Preview) Bounds() image.Rectangle { return p.bounds }

func (p *Preview) ratios() (float64, float64) {
	d := p.base.Rect
	if d.Dx() == 0 || d.Dy() == 0 {
		return 1, 1
	}
	return float64(p.bounds.Dx()) / float64(d.Dx()), float64(p.bounds.Dy()) / float64(d.Dy())
}

// ToImage maps a display point to source image coordinates. Points outside
// the display are mapped linearly; callers clip.
func (p *Preview) ToImage(pt image.Point) image.Point {
	rx, ry := p.ratios()
	return image.Pt(
		p.bounds.Min.X+int(float64(pt.X)*rx+0.5),
		p.bounds.Min.Y+int(float64(pt.Y)*ry+0.5),
	)
}

// ToDisplay maps a source rectangle to display coordinates.
func (p *Preview) ToDisplay(r image.Rectangle) image.Rectangle {
	rx, ry := p.ratios()
	r = r.Sub(p.bounds.Min)
	return image.Rect(
		int(float64(r.Min.X)/rx+0.5), int(float64(r.Min.Y)/ry+0.5),
		int(float64(r.Max.X)/rx+0.5), int(float64(r.Max.Y)/ry+0.5),
	)
}

// Frame returns the display image with sel (source coordinates) outlined.
// An empty selection yields the plain image.
func (p *Preview) Frame(sel image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(p.base.Rect)
	copy(out.Pix, p.base.Pix)
	if sel.Empty() {
		return out
	}
	DrawOutline(out, p.ToDisplay(sel.Canon()), SelectionThickness, SelectionColor)
	return out
}

// Render is Frame encoded as PNG for a Tk photo.
func (p *Preview) Render(sel image.Rectangle) []byte {
	return EncodePNG(p.Frame(sel))
}

// DrawOutline draws the inner border of r, t pixels wide, clipped to dst.
func DrawOutline(dst draw.Image, r image.Rectangle, t int, c color.Color) {
	r = r.Canon().Intersect(dst.Bounds())
	if r.Empty() || t < 1 {
		return
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, min(r.Min.Y+t, r.Max.Y)),
		image.Rect(r.Min.X, max(r.Max.Y-t, r.Min.Y), r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, min(r.Min.X+t, r.Max.X), r.Max.Y),
		image.Rect(max(r.Max.X-t, r.Min.X), r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}
