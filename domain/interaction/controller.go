// Package interaction turns pointer drags into a confirmed rectangle.
//
// The controller is driven from a single UI event loop and is not safe for
// concurrent use.
package interaction

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/fgcut/domain/fgerr"
)

// Controller is the Idle -> Dragging -> Ready selection state machine. Abort
// from any state ends in Cancelled; Confirm from Ready ends in Confirmed.
type Controller struct {
	state     State
	bounds    image.Rectangle
	anchor    image.Point
	preview   image.Rectangle
	selection image.Rectangle
	logger    *slog.Logger
	listeners []StateListener
}

// NewController returns an idle controller whose rectangles are clipped to
// bounds.
func NewController(bounds image.Rectangle, logger *slog.Logger) *Controller {
	return &Controller{state: StateIdle, bounds: bounds, logger: logger}
}

func (c *Controller) AddListener(l StateListener) { c.listeners = append(c.listeners, l) }
func (c *Controller) Current() State              { return c.state }
func (c *Controller) Bounds() image.Rectangle     { return c.bounds }

// Press starts a new drag at p and discards any previous rectangle.
func (c *Controller) Press(p image.Point) {
	if c.state.Terminal() {
		return
	}
	c.anchor = p
	c.selection = image.Rectangle{}
	c.preview = c.clip(p)
	if c.state == StateDragging && c.logger != nil {
		c.logger.Debug("drag restarted", "x", p.X, "y", p.Y)
	}
	c.transition(StateDragging)
}

// Move returns the live rectangle from the anchor to p. Ignored unless
// dragging.
func (c *Controller) Move(p image.Point) (image.Rectangle, bool) {
	if c.state != StateDragging {
		return image.Rectangle{}, false
	}
	c.preview = c.clip(p)
	return c.preview, true
}

// Release commits the rectangle from the anchor to p.
func (c *Controller) Release(p image.Point) (image.Rectangle, bool) {
	if c.state != StateDragging {
		return image.Rectangle{}, false
	}
	c.selection = c.clip(p)
	c.preview = c.selection
	c.transition(StateReady)
	return c.selection, true
}

// Preview is the rectangle to draw: the live drag or the committed one.
func (c *Controller) Preview() image.Rectangle { return c.preview }

// Selection returns the committed rectangle once released.
func (c *Controller) Selection() (image.Rectangle, bool) {
	if c.state != StateReady && c.state != StateConfirmed {
		return image.Rectangle{}, false
	}
	return c.selection, true
}

// Confirm accepts the committed rectangle. Only valid in Ready.
func (c *Controller) Confirm() (image.Rectangle, error) {
	if c.state != StateReady {
		return image.Rectangle{}, fgerr.Invalid(fmt.Sprintf("confirm in state %s", c.state))
	}
	c.transition(StateConfirmed)
	return c.selection, nil
}

// Abort cancels the request from any state.
func (c *Controller) Abort() {
	c.preview = image.Rectangle{}
	c.transition(StateCancelled)
}

// Outcome is the result of the interaction: the confirmed rectangle,
// fgerr.ErrUserCancelled, or an error while still undecided.
func (c *Controller) Outcome() (image.Rectangle, error) {
	switch c.state {
	case StateConfirmed:
		return c.selection, nil
	case StateCancelled:
		return image.Rectangle{}, fgerr.ErrUserCancelled
	default:
		return image.Rectangle{}, fgerr.Invalid(fmt.Sprintf("selection still %s", c.state))
	}
}

func (c *Controller) clip(p image.Point) image.Rectangle {
	return image.Rectangle{Min: c.anchor, Max: p}.Canon().Intersect(c.bounds)
}

func (c *Controller) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("selection state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range c.listeners {
		l(prev, next)
	}
}

// Ensure contract satisfaction
var _ SelectionContract = (*Controller)(nil)
