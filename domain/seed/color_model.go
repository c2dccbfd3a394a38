package seed

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/soocke/fgcut/domain/fgerr"
)

const (
	DefaultBorder    = 8
	DefaultThreshold = 25.0
)

// ColorModel is the mean color of an image's border frame together with the
// frame width and the distance threshold used to classify interior pixels.
type ColorModel struct {
	Mean      [3]float64 // R, G, B
	Border    int
	Threshold float64
	W, H      int
}

// FitColorModel samples the top, bottom, left and right b-pixel bands of img
// (each pixel once) and averages their color. Alpha is ignored.
func FitColorModel(img image.Image, b int, t float64) (*ColorModel, error) {
	if img == nil {
		return nil, fgerr.Invalid("nil image")
	}
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	if b < 1 {
		return nil, fgerr.Invalid(fmt.Sprintf("border width %d", b))
	}
	if t < 0 {
		return nil, fgerr.Invalid(fmt.Sprintf("threshold %v", t))
	}
	if 2*b+1 > w || 2*b+1 > h {
		return nil, fgerr.Invalid(fmt.Sprintf("border %d does not fit %dx%d image", b, w, h))
	}
	m := &ColorModel{Border: b, Threshold: t, W: w, H: h}

	n := w*h - (w-2*b)*(h-2*b)
	ch := [3][]float64{make([]float64, 0, n), make([]float64, 0, n), make([]float64, 0, n)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.InBorder(x, y) {
				continue
			}
			c := rgbAt(img, r.Min.X+x, r.Min.Y+y)
			for i := range ch {
				ch[i] = append(ch[i], c[i])
			}
		}
	}
	for i := range ch {
		m.Mean[i] = stat.Mean(ch[i], nil)
	}
	return m, nil
}

// InBorder reports whether (x, y), relative to the image origin, lies in the
// sampled frame.
func (m *ColorModel) InBorder(x, y int) bool {
	return x < m.Border || y < m.Border || x >= m.W-m.Border || y >= m.H-m.Border
}

// Distance is the Euclidean RGB distance between c and the mean.
func (m *ColorModel) Distance(c [3]float64) float64 {
	return floats.Distance(c[:], m.Mean[:], 2)
}

// Similar reports whether c is within the threshold of the mean.
func (m *ColorModel) Similar(c [3]float64) bool { return m.Distance(c) <= m.Threshold }

func rgbAt(img image.Image, x, y int) [3]float64 {
	if n, ok := img.(*image.NRGBA); ok {
		i := n.PixOffset(x, y)
		return [3]float64{float64(n.Pix[i]), float64(n.Pix[i+1]), float64(n.Pix[i+2])}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}
