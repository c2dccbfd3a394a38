// Package imageio loads input images and writes results.
package imageio

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/soocke/fgcut/domain/fgerr"
)

// Load decodes the file at path (PNG, JPEG, GIF, TIFF, BMP or WebP) and
// applies any EXIF orientation. Failures match fgerr.ErrLoad.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fgerr.ErrLoad, path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", fgerr.ErrLoad, path)
	}
	return img, nil
}

// Decode is Load for an already open stream.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fgerr.ErrLoad, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", fgerr.ErrLoad)
	}
	return img, nil
}

// Save writes img to path in the format implied by its extension. Opaque
// NRGBA images are written as three-channel PNG. Failures match fgerr.ErrIO.
func Save(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: %s: nil image", fgerr.ErrIO, path)
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s: %v", fgerr.ErrIO, path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: %s: %v", fgerr.ErrIO, path, err)
	}
	return nil
}

// SaveAlpha is Save for transparent output. PNG is always written with four
// channels, even when every pixel is opaque; TIFF keeps its alpha samples.
// Formats that cannot carry alpha are rejected with fgerr.ErrIO.
func SaveAlpha(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: %s: nil image", fgerr.ErrIO, path)
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", fgerr.ErrIO, path, err)
	}
	switch format {
	case imaging.PNG:
		if err := writeRGBAFile(path, img); err != nil {
			return fmt.Errorf("%w: %s: %v", fgerr.ErrIO, path, err)
		}
		return nil
	case imaging.TIFF:
		return Save(path, img)
	default:
		return fmt.Errorf("%w: %s: %s has no alpha channel", fgerr.ErrIO, path, format)
	}
}
