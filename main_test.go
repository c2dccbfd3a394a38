package main

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/fgcut/app"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/imageio"
)

func TestParsePositionals(t *testing.T) {
	inv, err := parsePositionals([]string{"in.png"}, false)
	require.NoError(t, err)
	assert.Equal(t, invocation{input: "in.png", output: defaultOutput}, inv)

	inv, err = parsePositionals([]string{"in.png"}, true)
	require.NoError(t, err)
	assert.Equal(t, defaultAlphaOutput, inv.output)

	inv, err = parsePositionals([]string{"in.png", "out.jpg"}, false)
	require.NoError(t, err)
	assert.Equal(t, "out.jpg", inv.output)
	assert.True(t, inv.rect.Empty())

	inv, err = parsePositionals([]string{"in.png", "1", "2", "30", "40"}, false)
	require.NoError(t, err)
	assert.Equal(t, scale.XYWH(1, 2, 30, 40), inv.rect)
	assert.Equal(t, defaultOutput, inv.output)

	inv, err = parsePositionals([]string{"-", "cut.png"}, false)
	require.NoError(t, err)
	assert.Equal(t, invocation{input: stdinInput, output: "cut.png"}, inv)

	inv, err = parsePositionals([]string{"in.png", "1", "2", "30", "40", "cut.png"}, true)
	require.NoError(t, err)
	assert.Equal(t, "cut.png", inv.output)

	for _, bad := range [][]string{
		nil,
		{"in.png", "1", "2"},
		{"in.png", "1", "2", "3"},
		{"in.png", "a", "2", "3", "4"},
		{"in.png", "1", "2", "0", "4"},
		{"a", "b", "c", "d", "e", "f", "g"},
	} {
		_, err := parsePositionals(bad, false)
		assert.Error(t, err, "%v", bad)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, imageio.Save(in, image.NewNRGBA(image.Rect(0, 0, 32, 32))))
	out := filepath.Join(dir, "out.png")

	cases := map[string]struct {
		args []string
		want int
	}{
		"help":            {[]string{"--help"}, app.ExitOK},
		"no input":        {nil, app.ExitUsage},
		"unknown flag":    {[]string{"--bogus", in}, app.ExitUsage},
		"exclusive modes": {[]string{"--alpha", "--two-color", in}, app.ExitUsage},
		"bad strategy":    {[]string{in, out, "--strategy", "magic"}, app.ExitUsage},
		"interactive":     {[]string{"--strategy", "interactive", in, "1", "1", "8", "8", out}, app.ExitUsage},
		"rect missing":    {[]string{"--strategy", "rect", in, out}, app.ExitUsage},
		"bad color":       {[]string{"--two-color", "--fg", "nope", in, out}, app.ExitUsage},
		"unreadable":      {[]string{filepath.Join(dir, "missing.png"), out}, app.ExitUnreadable},
		"bad config":      {[]string{"--config", filepath.Join(dir, "in.png"), in, out}, app.ExitUsage},
		"stdin garbage":   {[]string{"-", out}, app.ExitUnreadable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tc.want, run(tc.args, strings.NewReader("not an image"), &stderr), stderr.String())
		})
	}
}

func TestNewLogger_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, logLevel(false))
	logger.Debug("hidden")
	logger.Info("shown", "run_id", "abc")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"run_id":"abc"`)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", logLevel(true).String())
	assert.Equal(t, "INFO", logLevel(false).String())
}
