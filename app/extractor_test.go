package app

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/fgcut/config"
	"github.com/soocke/fgcut/domain/composite"
	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/mask"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/domain/seed"
	"github.com/soocke/fgcut/domain/segment"
	"github.com/soocke/fgcut/imageio"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// oracle settles every probable label on its side and, in rect mode, takes
// the rectangle as foreground.
type oracle struct {
	calls int
	rect  image.Rectangle
	size  image.Point
}

func (o *oracle) Optimize(img *image.NRGBA, m *mask.LabelMask, rect image.Rectangle, _ int, mode segment.InitMode) error {
	o.calls++
	o.rect = rect
	o.size = img.Bounds().Size()
	if mode == segment.InitWithRect {
		m.Fill(m.Bounds(), mask.Background)
		m.Fill(rect, mask.Foreground)
		return nil
	}
	for i, l := range m.Labels {
		if l.IsForeground() {
			m.Labels[i] = mask.Foreground
		} else {
			m.Labels[i] = mask.Background
		}
	}
	return nil
}

func grayWithWhiteCenter() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	center := scale.XYWH(25, 25, 50, 50)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{128, 128, 128, 255}
			if image.Pt(x, y).In(center) {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestExtract_BorderSimilarityFullScale(t *testing.T) {
	ext := NewExtractor(&oracle{}, discardLogger)
	opts := DefaultOptions()
	opts.Scale = 1
	res, err := ext.Extract(grayWithWhiteCenter(), opts)
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	center := scale.XYWH(25, 25, 50, 50)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			in := image.Pt(x, y).In(center)
			require.Equal(t, in, res.Mask.At(x, y), "(%d,%d)", x, y)
			want := color.NRGBA{0, 0, 0, 255}
			if in {
				want = color.NRGBA{255, 255, 255, 255}
			}
			require.Equal(t, want, res.Image.NRGBAAt(x, y))
		}
	}
}

func TestExtract_BorderSimilarityHalfScale(t *testing.T) {
	ext := NewExtractor(&oracle{}, discardLogger)
	res, err := ext.Extract(grayWithWhiteCenter(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 50, res.Working.W)
	assert.Equal(t, 100, res.Mask.W)
	// Within one working pixel of the true square on each edge.
	n := res.Mask.Count()
	assert.GreaterOrEqual(t, n, 48*48)
	assert.LessOrEqual(t, n, 52*52)
	assert.True(t, res.Mask.At(50, 50))
	assert.False(t, res.Mask.At(10, 10))
}

func TestExtract_RectangleHintWithMargin(t *testing.T) {
	o := &oracle{}
	ext := NewExtractor(o, discardLogger)
	opts := DefaultOptions()
	opts.Strategy = StrategyRectangleHint
	opts.Scale = 1
	opts.Margin = 20
	opts.Rect = scale.XYWH(10, 10, 30, 30)
	res, err := ext.Extract(image.NewNRGBA(image.Rect(0, 0, 100, 100)), opts)
	require.NoError(t, err)
	assert.Equal(t, scale.XYWH(4, 4, 42, 42), o.rect)
	assert.Equal(t, 42*42, res.Mask.Count())
	assert.Equal(t, seed.KindRect, res.Seed.Kind)
}

func TestExtract_MaskHintCropsPatch(t *testing.T) {
	o := &oracle{}
	ext := NewExtractor(o, discardLogger)
	opts := DefaultOptions()
	opts.Strategy = StrategyMaskHint
	opts.Rect = scale.XYWH(40, 40, 40, 20)
	opts.Pad = 5
	res, err := ext.Extract(image.NewNRGBA(image.Rect(0, 0, 200, 100)), opts)
	require.NoError(t, err)
	// Working rect (20,20)-(40,30) padded by 5.
	assert.Equal(t, image.Pt(30, 20), o.size)
	assert.Equal(t, 20*10, res.Working.Count())
	assert.Equal(t, 40*20, res.Mask.Count())
	assert.True(t, res.Mask.At(40, 40))
	assert.False(t, res.Mask.At(39, 40))
}

func TestExtract_Interactive(t *testing.T) {
	o := &oracle{}
	ext := NewExtractor(o, discardLogger)
	opts := DefaultOptions()
	opts.Strategy = StrategyInteractive
	opts.Rect = image.Rect(5, 5, 50, 40)
	res, err := ext.Extract(image.NewNRGBA(image.Rect(0, 0, 200, 200)), opts)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 50), res.Seed.Region)
	assert.Equal(t, 45*35, res.Working.Count())
	assert.Equal(t, 90*70, res.Mask.Count())

	opts.Rect = image.Rect(5, 5, 6, 40)
	_, err = ext.Extract(image.NewNRGBA(image.Rect(0, 0, 200, 200)), opts)
	assert.ErrorIs(t, err, fgerr.ErrRectTooSmall)
	assert.Equal(t, ExitRectTooSmall, ExitCode(err))
	assert.Equal(t, 1, o.calls)
}

func TestExtract_InteractiveDegenerateSelection(t *testing.T) {
	cases := []struct {
		name string
		rect image.Rectangle
	}{
		{"click", image.Rect(20, 20, 20, 20)},
		{"single column drag", image.Rect(20, 20, 20, 40)},
		{"single row drag", image.Rect(20, 20, 60, 20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &oracle{}
			ext := NewExtractor(o, discardLogger)
			opts := DefaultOptions()
			opts.Strategy = StrategyInteractive
			opts.Rect = tc.rect
			require.NoError(t, opts.Validate())
			_, err := ext.Extract(image.NewNRGBA(image.Rect(0, 0, 200, 200)), opts)
			assert.ErrorIs(t, err, fgerr.ErrRectTooSmall)
			assert.Equal(t, ExitRectTooSmall, ExitCode(err))
			assert.Zero(t, o.calls)
		})
	}
}

func TestExtract_CenteredAlpha(t *testing.T) {
	ext := NewExtractor(&oracle{}, nil)
	opts := DefaultOptions()
	opts.Strategy = StrategyCentered
	opts.Scale = 1
	opts.Mode = composite.Alpha()
	img := grayWithWhiteCenter()
	res, err := ext.Extract(img, opts)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), res.Image.NRGBAAt(50, 50).A)
	assert.Equal(t, uint8(0), res.Image.NRGBAAt(5, 5).A)
	assert.Equal(t, img.NRGBAAt(5, 5).R, res.Image.NRGBAAt(5, 5).R)
}

func TestExtract_InvalidOptionsNeverCallOptimizer(t *testing.T) {
	o := &oracle{}
	ext := NewExtractor(o, discardLogger)
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	mutations := map[string]func(*Options){
		"scale":      func(o *Options) { o.Scale = 0 },
		"iterations": func(o *Options) { o.Iterations = 0 },
		"margin":     func(o *Options) { o.Margin = 101 },
		"pad":        func(o *Options) { o.Pad = -1 },
		"border":     func(o *Options) { o.Border = 0 },
		"threshold":  func(o *Options) { o.Threshold = -1 },
		"no rect":    func(o *Options) { o.Strategy = StrategyRectangleHint },
		"wide border": func(o *Options) {
			o.Border = 10 // 20x20 working image
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			_, err := ext.Extract(img, opts)
			assert.ErrorIs(t, err, fgerr.ErrInvalidInput)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Equal(t, StatusInvalidInput, StatusCode(err))
		})
	}
	_, err := ext.Extract(image.NewNRGBA(image.Rectangle{}), DefaultOptions())
	assert.ErrorIs(t, err, fgerr.ErrInvalidInput)
	assert.Zero(t, o.calls)
}

func TestExtract_OptimizerFault(t *testing.T) {
	ext := NewExtractor(segment.OptimizerFunc(func(*image.NRGBA, *mask.LabelMask, image.Rectangle, int, segment.InitMode) error {
		return errors.New("boom")
	}), discardLogger)
	opts := DefaultOptions()
	opts.Strategy = StrategyCentered
	_, err := ext.Extract(image.NewNRGBA(image.Rect(0, 0, 40, 40)), opts)
	assert.ErrorIs(t, err, fgerr.ErrSegmentation)
	assert.Equal(t, ExitOptimizer, ExitCode(err))
	assert.Equal(t, StatusSegmentation, StatusCode(err))
}

func TestContainer_WritesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fg.png")
	c := BuildContainer(config.DefaultConfig(), discardLogger, segment.OptimizerFunc(
		func(*image.NRGBA, *mask.LabelMask, image.Rectangle, int, segment.InitMode) error { panic("cv") }))
	opts := DefaultOptions()
	opts.Strategy = StrategyCentered
	_, err := c.ExtractImage(image.NewNRGBA(image.Rect(0, 0, 40, 40)), out, opts)
	assert.ErrorIs(t, err, fgerr.ErrSegmentation)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestContainer_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, imageio.Save(in, grayWithWhiteCenter()))
	c := BuildContainer(nil, discardLogger, &oracle{})

	opts := DefaultOptions()
	opts.Mode = composite.Alpha()
	out := filepath.Join(dir, "fg_alpha.png")
	res, err := c.ExtractFile(in, out, opts)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Image.Rect.Dx())
	_, err = os.Stat(out)
	require.NoError(t, err)

	_, err = c.ExtractFile(in, filepath.Join(dir, "missing", "fg.png"), opts)
	assert.ErrorIs(t, err, fgerr.ErrIO)
	assert.Equal(t, ExitWrite, ExitCode(err))

	_, err = c.ExtractFile(filepath.Join(dir, "absent.png"), out, opts)
	assert.Equal(t, ExitUnreadable, ExitCode(err))
}

// everything labels the whole working image foreground.
type everything struct{}

func (everything) Optimize(_ *image.NRGBA, m *mask.LabelMask, _ image.Rectangle, _ int, _ segment.InitMode) error {
	m.Fill(m.Bounds(), mask.Foreground)
	return nil
}

func TestContainer_AlphaOutputStaysFourChannel(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, imageio.Save(in, grayWithWhiteCenter()))
	c := BuildContainer(nil, discardLogger, everything{})

	opts := DefaultOptions()
	opts.Strategy = StrategyCentered
	opts.Mode = composite.Alpha()
	out := filepath.Join(dir, "fg_alpha.png")
	res, err := c.ExtractFile(in, out, opts)
	require.NoError(t, err)
	assert.Equal(t, res.Mask.W*res.Mask.H, res.Mask.Count())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	// IHDR color type 6: truecolor with alpha.
	assert.Equal(t, byte(6), raw[25])

	opts.Mode = composite.FlatColor(color.NRGBA{A: 0xff})
	flat := filepath.Join(dir, "fg.png")
	_, err = c.ExtractFile(in, flat, opts)
	require.NoError(t, err)
	raw, err = os.ReadFile(flat)
	require.NoError(t, err)
	assert.Equal(t, byte(2), raw[25])
}

func TestSaveResult_AlphaToJPEGFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fg.jpg")
	err := SaveResult(path, image.NewNRGBA(image.Rect(0, 0, 2, 2)), composite.Alpha())
	assert.ErrorIs(t, err, fgerr.ErrIO)
	assert.Equal(t, ExitWrite, ExitCode(err))
	require.NoError(t, SaveResult(path, image.NewNRGBA(image.Rect(0, 0, 2, 2)), composite.FlatColor(color.NRGBA{A: 0xff})))
}
