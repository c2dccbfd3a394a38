// Command fgselect shows an image, lets the user drag a rectangle around the
// subject and cuts it out.
//
//	fgselect [flags] input [output]
//	fgselect [flags] --screen [output]
//
// An input of "-" reads the image from standard input.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/soocke/fgcut/app"
	"github.com/soocke/fgcut/capture"
	"github.com/soocke/fgcut/config"
	"github.com/soocke/fgcut/debug"
	"github.com/soocke/fgcut/domain/fgerr"
	"github.com/soocke/fgcut/domain/interaction"
	"github.com/soocke/fgcut/domain/scale"
	"github.com/soocke/fgcut/imageio"
	"github.com/soocke/fgcut/ui/images"
	"github.com/soocke/fgcut/ui/presenter"
	"github.com/soocke/fgcut/ui/view"
)

const (
	maxDisplayW = 1600
	maxDisplayH = 900
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fgselect", pflag.ContinueOnError)
	fs.SetInterspersed(true)
	fs.Bool("screen", false, "grab the screen instead of reading an input file")
	fs.String("screen-rect", "", "grab only x,y,width,height of the screen")
	fs.Bool("reuse", false, "skip the window and reuse the last confirmed selection")
	fs.Bool("alpha", false, "write a transparent background instead of a flat color")
	fs.Bool("two-color", false, "write a --fg silhouette on --bg")
	fs.Float64("scale", scale.DefaultScale, "working resolution factor in [0.1, 1.0]")
	fs.Int("iters", 5, "optimizer iterations")
	fs.Int("pad", 10, "padding around the selection in working pixels")
	fs.String("fg", "#ffffff", "foreground color for --two-color")
	fs.String("bg", "#000000", "background color")
	fs.String("config", defaultConfigPath(), "YAML or JSON config file; the selection is saved here")
	fs.Bool("debug", false, "debug logging, memory and goroutine stats")
	fs.Bool("dark", false, "dark window theme")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: fgselect [flags] input [output]\n       fgselect [flags] --screen [output]\n")
		fs.PrintDefaults()
	}
	return fs
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fgselect.yaml"
	}
	return filepath.Join(dir, "fgcut", "fgselect.yaml")
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
	screen, _ := fs.GetBool("screen")
	screenRect, _ := fs.GetString("screen-rect")
	reuse, _ := fs.GetBool("reuse")
	alpha, _ := fs.GetBool("alpha")
	twoColor, _ := fs.GetBool("two-color")
	cfgPath, _ := fs.GetString("config")
	dark, _ := fs.GetBool("dark")

	input, output, err := parsePositionals(fs.Args(), screen || screenRect != "", alpha)
	if err == nil && alpha && twoColor {
		err = errors.New("--alpha and --two-color are exclusive")
	}
	if err != nil {
		fmt.Fprintf(stderr, "fgselect: %v\n", err)
		fs.Usage()
		return app.ExitUsage
	}

	cfg, err := config.LoadWithFlags(cfgPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "fgselect: %v\n", err)
		return app.ExitUsage
	}
	cfg.Strategy = "interactive"
	switch {
	case alpha:
		cfg.Mode = "alpha"
	case twoColor:
		cfg.Mode = "two-color"
	}
	logger := newLogger(stderr, cfg.Debug)

	img, err := loadInput(input, screenRect, stdin)
	if err != nil {
		logger.Error("input unavailable", "input", input, "error", err)
		return app.ExitCode(err)
	}
	opts, err := app.OptionsFromConfig(cfg, image.Rectangle{})
	if err != nil {
		logger.Error("invalid options", "error", err)
		return app.ExitUsage
	}
	work, err := scale.Downscale(img, opts.Scale)
	if err != nil {
		logger.Error("downscale failed", "error", err)
		return app.ExitCode(err)
	}
	orig := image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy())

	var sel image.Rectangle
	if reuse && cfg.HasSelection() {
		last := scale.XYWH(cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH)
		sel = scale.ToWorking(last, opts.Scale, work.Bounds())
		logger.Info("reusing selection", "x", last.Min.X, "y", last.Min.Y, "width", last.Dx(), "height", last.Dy())
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		if cfg.Debug {
			debug.StartGoroutineLogger(ctx, 2*time.Second, logger)
		}
		sel, err = selectInteractively(work, dark, logger)
		cancel()
		if err != nil {
			if errors.Is(err, fgerr.ErrUserCancelled) {
				logger.Info("selection cancelled")
			} else {
				logger.Error("selection failed", "error", err)
			}
			return app.ExitCode(err)
		}
		last := scale.ToOriginal(sel, opts.Scale, orig)
		if err := config.SaveSelection(cfgPath, last.Min.X, last.Min.Y, last.Dx(), last.Dy()); err != nil {
			logger.Warn("selection not saved", "path", cfgPath, "error", err)
		}
	}

	opts.Rect = sel
	c := app.BuildContainer(cfg, logger, nil)
	if _, err := c.ExtractImage(img, output, opts); err != nil {
		logger.Error("extraction failed", "error", err)
		return app.ExitCode(err)
	}
	return app.ExitOK
}

// selectInteractively runs the Tk window over work until the user confirms
// or aborts. The rectangle is in working pixels.
func selectInteractively(work *image.NRGBA, dark bool, logger *slog.Logger) (image.Rectangle, error) {
	ctl := interaction.NewController(work.Bounds(), logger)
	preview := images.NewPreview(work, maxDisplayW, maxDisplayH)
	win := view.NewSelectionWindow("fgselect", preview.Size(), dark, logger)
	p := presenter.NewSelectionPresenter(ctl, preview, win, logger)
	win.Bind(view.SelectionHandlers{
		Press:   p.Press,
		Move:    p.Move,
		Release: p.Release,
		Confirm: p.Confirm,
		Abort:   p.Abort,
	})
	p.Start()
	win.Run()
	return ctl.Outcome()
}

func loadInput(input, screenRect string, stdin io.Reader) (image.Image, error) {
	switch input {
	case "":
	case "-":
		return imageio.Decode(stdin)
	default:
		return imageio.Load(input)
	}
	if screenRect == "" {
		return capture.Grab()
	}
	area, err := parseRect(screenRect)
	if err != nil {
		return nil, err
	}
	return capture.GrabSelection(area)
}

// parsePositionals accepts input [output], or [output] alone when the
// screen is the input.
func parsePositionals(args []string, screen, alpha bool) (input, output string, err error) {
	output = "fg.png"
	if alpha {
		output = "fg_alpha.png"
	}
	if screen {
		if len(args) > 1 {
			return "", "", fmt.Errorf("expected [output] with --screen, got %d arguments", len(args))
		}
		if len(args) == 1 {
			output = args[0]
		}
		return "", output, nil
	}
	switch len(args) {
	case 1:
		return args[0], output, nil
	case 2:
		return args[0], args[1], nil
	default:
		return "", "", fmt.Errorf("expected input [output], got %d arguments", len(args))
	}
}

// parseRect reads "x,y,width,height".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fgerr.Invalid(fmt.Sprintf("screen rectangle %q", s))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fgerr.Invalid(fmt.Sprintf("screen rectangle %q", s))
		}
		v[i] = n
	}
	return scale.XYWH(v[0], v[1], v[2], v[3]), nil
}
