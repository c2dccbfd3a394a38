// Package capture grabs the screen as an alternative input for fgselect.
package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"

	"github.com/soocke/fgcut/domain/fgerr"
)

// Grab returns a screen capture of the primary monitor.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: screen capture: %v", fgerr.ErrLoad, err)
	}
	return img, nil
}

// GrabSelection captures area of the screen. The area is clipped to the
// primary monitor first.
func GrabSelection(area image.Rectangle) (*image.RGBA, error) {
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("%w: screen bounds: %v", fgerr.ErrLoad, err)
	}
	area = area.Canon().Intersect(screen)
	if area.Empty() {
		return nil, fgerr.Invalid(fmt.Sprintf("capture area outside screen %v", screen))
	}
	img, err := screenshot.CaptureRect(area)
	if err != nil {
		return nil, fmt.Errorf("%w: screen capture: %v", fgerr.ErrLoad, err)
	}
	return img, nil
}
