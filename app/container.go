package app

import (
	"image"
	"log/slog"

	"github.com/soocke/fgcut/config"
	"github.com/soocke/fgcut/domain/segment"
	"github.com/soocke/fgcut/grabcut"
	"github.com/soocke/fgcut/imageio"
)

// AppContainer assembles configuration, logging and the extraction services.
type AppContainer struct {
	Config    *config.Config
	Logger    *slog.Logger
	Optimizer segment.Optimizer
	Extractor *Extractor
}

// BuildContainer constructs all components. A nil optimizer selects GrabCut.
func BuildContainer(cfg *config.Config, logger *slog.Logger, optimizer segment.Optimizer) *AppContainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if optimizer == nil {
		optimizer = grabcut.New(logger)
	}
	c := &AppContainer{Config: cfg, Logger: logger, Optimizer: optimizer}
	c.Extractor = NewExtractor(optimizer, logger)
	return c
}

// ExtractFile loads input, runs the pipeline and writes output. Nothing is
// written when any step before the write fails.
func (c *AppContainer) ExtractFile(input, output string, opts Options) (*Result, error) {
	img, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}
	return c.ExtractImage(img, output, opts)
}

// ExtractImage is ExtractFile for an image already in memory.
func (c *AppContainer) ExtractImage(img image.Image, output string, opts Options) (*Result, error) {
	res, err := c.Extractor.Extract(img, opts)
	if err != nil {
		return nil, err
	}
	if err := SaveResult(output, res.Image, opts.Mode); err != nil {
		return nil, err
	}
	if c.Logger != nil {
		c.Logger.Info("output written", "run_id", res.RunID, "path", output,
			"width", res.Image.Rect.Dx(), "height", res.Image.Rect.Dy())
	}
	return res, nil
}
