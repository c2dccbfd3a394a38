package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestScaleToFit_Shrinks(t *testing.T) {
	src := filled(image.Rect(0, 0, 400, 200), color.NRGBA{1, 2, 3, 255})
	out := ScaleToFit(src, 100, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 50), out.Rect)
}

func TestScaleToFit_FittingCopiedToOrigin(t *testing.T) {
	src := filled(image.Rect(10, 10, 30, 20), color.NRGBA{9, 9, 9, 255})
	out := ScaleToFit(src, 100, 100)
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Rect)
	assert.Equal(t, src.NRGBAAt(10, 10), out.NRGBAAt(0, 0))
}

func TestEncodePNG(t *testing.T) {
	assert.Nil(t, EncodePNG(nil))
	data := EncodePNG(filled(image.Rect(0, 0, 7, 3), color.NRGBA{A: 255}))
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

func TestPreview_CoordinateMapping(t *testing.T) {
	p := NewPreview(image.NewNRGBA(image.Rect(0, 0, 400, 200)), 100, 100)
	assert.Equal(t, image.Pt(100, 50), p.Size())
	assert.Equal(t, image.Pt(40, 20), p.ToImage(image.Pt(10, 5)))
	assert.Equal(t, image.Rect(10, 5, 20, 15), p.ToDisplay(image.Rect(40, 20, 80, 60)))
}

func TestPreview_IdentityWhenFitting(t *testing.T) {
	p := NewPreview(image.NewNRGBA(image.Rect(0, 0, 50, 40)), 100, 100)
	assert.Equal(t, image.Pt(13, 27), p.ToImage(image.Pt(13, 27)))
}

func TestPreview_FrameOutline(t *testing.T) {
	gray := color.NRGBA{100, 100, 100, 255}
	p := NewPreview(filled(image.Rect(0, 0, 20, 20), gray), 100, 100)
	f := p.Frame(image.Rect(5, 5, 15, 15))
	for _, pt := range []image.Point{{5, 5}, {6, 6}, {14, 14}, {13, 10}, {10, 5}} {
		assert.Equal(t, SelectionColor, f.NRGBAAt(pt.X, pt.Y), "outline at %v", pt)
	}
	for _, pt := range []image.Point{{4, 4}, {7, 7}, {10, 10}, {15, 15}} {
		assert.Equal(t, gray, f.NRGBAAt(pt.X, pt.Y), "untouched at %v", pt)
	}
	// The base image is never drawn on.
	plain := p.Frame(image.Rectangle{})
	assert.Equal(t, gray, plain.NRGBAAt(5, 5))
}

func TestDrawOutline_ClipsAndIgnoresEmpty(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	DrawOutline(img, image.Rect(8, 8, 30, 30), 2, SelectionColor)
	assert.Equal(t, SelectionColor, img.NRGBAAt(9, 9))
	DrawOutline(img, image.Rect(2, 2, 2, 6), 2, SelectionColor)
	assert.NotEqual(t, SelectionColor, img.NRGBAAt(2, 3))
}
