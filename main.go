// Command fgcut cuts the foreground subject out of an image.
//
//	fgcut [flags] input [x y width height] [output]
//
// An input of "-" reads the image from standard input.
package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/soocke/fgcut/app"
	"github.com/soocke/fgcut/config"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/imageio"
)

const (
	defaultOutput      = "fg.png"
	defaultAlphaOutput = "fg_alpha.png"
	stdinInput         = "-"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

// invocation is the positional part of the command line.
type invocation struct {
	input  string
	output string
	rect   image.Rectangle
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fgcut", pflag.ContinueOnError)
	fs.SetInterspersed(true)
	fs.Bool("alpha", false, "write a transparent background instead of a flat color")
	fs.Bool("two-color", false, "write a --fg silhouette on --bg")
	fs.Float64("scale", scale.DefaultScale, "working resolution factor in [0.1, 1.0]")
	fs.Int("iters", 5, "optimizer iterations")
	fs.Int("margin", 0, "grow the rectangle by this percentage of its size")
	fs.String("strategy", "auto", "seeding strategy: auto|border|rect|mask|centered")
	fs.Int("pad", 10, "mask-hint padding in working pixels")
	fs.Int("border", 8, "border width sampled by the border strategy")
	fs.Float64("threshold", 25, "RGB distance treated as background by the border strategy")
	fs.String("fg", "#ffffff", "foreground color for --two-color")
	fs.String("bg", "#000000", "background color")
	fs.String("config", "", "YAML or JSON config file")
	fs.Bool("debug", false, "debug logging and memory stats")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: fgcut [flags] input [x y width height] [output]\n")
		fs.PrintDefaults()
	}
	return fs
}

func run(args []string, stdin io.Reader, stderr io.Writer) int {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return app.ExitOK
		}
		return app.ExitUsage
	}
	alpha, _ := fs.GetBool("alpha")
	twoColor, _ := fs.GetBool("two-color")
	if alpha && twoColor {
		fmt.Fprintln(stderr, "fgcut: --alpha and --two-color are exclusive")
		return app.ExitUsage
	}
	inv, err := parsePositionals(fs.Args(), alpha)
	if err != nil {
		fmt.Fprintf(stderr, "fgcut: %v\n", err)
		fs.Usage()
		return app.ExitUsage
	}

	cfgPath, _ := fs.GetString("config")
	cfg, err := config.LoadWithFlags(cfgPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "fgcut: %v\n", err)
		return app.ExitUsage
	}
	switch {
	case alpha:
		cfg.Mode = "alpha"
	case twoColor:
		cfg.Mode = "two-color"
	}

	logger := NewLogger(stderr, logLevel(cfg.Debug))
	opts, err := app.OptionsFromConfig(cfg, inv.rect)
	if err == nil && opts.Strategy == app.StrategyInteractive {
		err = fmt.Errorf("strategy interactive needs fgselect")
	}
	if err != nil {
		logger.Error("invalid options", "error", err)
		return app.ExitUsage
	}

	c := app.BuildContainer(cfg, logger, nil)
	if inv.input == stdinInput {
		img, err := imageio.Decode(stdin)
		if err != nil {
			logger.Error("reading standard input failed", "error", err)
			return app.ExitCode(err)
		}
		_, err = c.ExtractImage(img, inv.output, opts)
		if err != nil {
			logger.Error("extraction failed", "input", "stdin", "error", err)
			return app.ExitCode(err)
		}
		return app.ExitOK
	}
	if _, err := c.ExtractFile(inv.input, inv.output, opts); err != nil {
		logger.Error("extraction failed", "input", inv.input, "error", err)
		return app.ExitCode(err)
	}
	return app.ExitOK
}

// parsePositionals accepts input, input output, input x y w h and
// input x y w h output.
func parsePositionals(args []string, alpha bool) (invocation, error) {
	inv := invocation{output: defaultOutput}
	if alpha {
		inv.output = defaultAlphaOutput
	}
	switch len(args) {
	case 1, 2, 5, 6:
	default:
		return inv, fmt.Errorf("expected input [x y width height] [output], got %d arguments", len(args))
	}
	inv.input = args[0]
	rest := args[1:]
	if len(rest) >= 4 {
		var v [4]int
		for i := range v {
			n, err := strconv.Atoi(rest[i])
			if err != nil {
				return inv, fmt.Errorf("rectangle value %q is not an integer", rest[i])
			}
			v[i] = n
		}
		if v[2] <= 0 || v[3] <= 0 {
			return inv, fmt.Errorf("rectangle %dx%d is empty", v[2], v[3])
		}
		inv.rect = scale.XYWH(v[0], v[1], v[2], v[3])
		rest = rest[4:]
	}
	if len(rest) == 1 {
		inv.output = rest[0]
	}
	return inv, nil
}
