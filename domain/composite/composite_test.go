package composite

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
)

func sample() (*image.NRGBA, *mask.BinaryMask) {
	img := image.NewNRGBA(image.Rect(0, 0, 7, 5))
	m := mask.NewBinaryMask(7, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 50), uint8(x ^ y), uint8(200 + x)})
			m.Set(x, y, (x+y)%3 == 0)
		}
	}
	return img, m
}

func TestComposite_AlphaPreservesColorBits(t *testing.T) {
	img, m := sample()
	out, err := Composite(img, m, Alpha())
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			src, got := img.NRGBAAt(x, y), out.NRGBAAt(x, y)
			assert.Equal(t, src.R, got.R)
			assert.Equal(t, src.G, got.G)
			assert.Equal(t, src.B, got.B)
			if m.At(x, y) {
				assert.Equal(t, uint8(255), got.A)
			} else {
				assert.Equal(t, uint8(0), got.A)
			}
		}
	}
	// Source untouched.
	assert.Equal(t, uint8(200), img.NRGBAAt(0, 1).A)
}

func TestComposite_FlatColor(t *testing.T) {
	img, m := sample()
	bg := color.NRGBA{1, 2, 3, 0}
	out, err := Composite(img, m, FlatColor(bg))
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			got := out.NRGBAAt(x, y)
			assert.Equal(t, uint8(255), got.A)
			if m.At(x, y) {
				src := img.NRGBAAt(x, y)
				assert.Equal(t, [3]uint8{src.R, src.G, src.B}, [3]uint8{got.R, got.G, got.B})
			} else {
				assert.Equal(t, color.NRGBA{1, 2, 3, 255}, got)
			}
		}
	}
	assert.True(t, out.Opaque())
}

func TestComposite_TwoColorUsesOnlyBothColors(t *testing.T) {
	img, m := sample()
	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 255}
	out, err := Composite(img, m, TwoColor(fg, bg))
	require.NoError(t, err)
	nfg := 0
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			got := out.NRGBAAt(x, y)
			require.True(t, got == fg || got == bg, "(%d,%d) = %v", x, y, got)
			if got == fg {
				nfg++
				assert.True(t, m.At(x, y))
			}
		}
	}
	assert.Equal(t, m.Count(), nfg)
}

func TestComposite_OffsetSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 12, 21))
	img.SetNRGBA(10, 20, color.NRGBA{9, 9, 9, 255})
	img.SetNRGBA(11, 20, color.NRGBA{7, 7, 7, 255})
	m := mask.NewBinaryMask(2, 1)
	m.Set(1, 0, true)
	out, err := Composite(img, m, Alpha())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
	assert.Equal(t, color.NRGBA{9, 9, 9, 0}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{7, 7, 7, 255}, out.NRGBAAt(1, 0))
}

func TestComposite_ExtentMismatch(t *testing.T) {
	img, _ := sample()
	_, err := Composite(img, mask.NewBinaryMask(7, 4), Alpha())
	assert.ErrorIs(t, err, fgerr.ErrInvalidInput)
	_, err = Composite(nil, mask.NewBinaryMask(7, 4), Alpha())
	assert.ErrorIs(t, err, fgerr.ErrInvalidInput)
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Kind{
		"alpha":     KindAlpha,
		"Flat":      KindFlatColor,
		"":          KindFlatColor,
		"two-color": KindTwoColor,
	} {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseMode("sepia")
	assert.ErrorIs(t, err, fgerr.ErrInvalidInput)
}
