package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/fgcut/domain/interaction"
)

// FrameRenderer draws the preview for a selection and maps display points
// to image points.
type FrameRenderer interface {
	Render(sel image.Rectangle) []byte
	ToImage(p image.Point) image.Point
}

// SelectionView is the window surface the presenter drives.
type SelectionView interface {
	ShowFrame(png []byte)
	SetStatus(text string)
	Close()
}

// SelectionPresenter forwards pointer and key events from the view to the
// selection controller and redraws after every change. It closes the view
// once the controller reaches a terminal state.
type SelectionPresenter struct {
	ctl      interaction.SelectionContract
	renderer FrameRenderer
	view     SelectionView
	logger   *slog.Logger
	closed   bool
}

func NewSelectionPresenter(ctl interaction.SelectionContract, renderer FrameRenderer, view SelectionView, logger *slog.Logger) *SelectionPresenter {
	p := &SelectionPresenter{ctl: ctl, renderer: renderer, view: view, logger: logger}
	if ctl != nil {
		ctl.AddListener(p.onState)
	}
	return p
}

func (p *SelectionPresenter) ready() bool {
	return p != nil && p.ctl != nil && p.renderer != nil && p.view != nil && !p.closed
}

// Start shows the unselected image.
func (p *SelectionPresenter) Start() {
	if !p.ready() {
		return
	}
	p.redraw(image.Rectangle{})
	p.view.SetStatus(StatusText(p.ctl.Current()))
}

// Press begins a drag at display point (x, y).
func (p *SelectionPresenter) Press(x, y int) {
	if !p.ready() {
		return
	}
	p.ctl.Press(p.renderer.ToImage(image.Pt(x, y)))
	p.redraw(p.ctl.Preview())
}

// Move updates the live rectangle.
func (p *SelectionPresenter) Move(x, y int) {
	if !p.ready() {
		return
	}
	if r, ok := p.ctl.Move(p.renderer.ToImage(image.Pt(x, y))); ok {
		p.redraw(r)
	}
}

// Release commits the rectangle.
func (p *SelectionPresenter) Release(x, y int) {
	if !p.ready() {
		return
	}
	if r, ok := p.ctl.Release(p.renderer.ToImage(image.Pt(x, y))); ok {
		p.redraw(r)
	}
}

// Confirm accepts the committed rectangle. Without one the window stays
// open and the status asks for a drag.
func (p *SelectionPresenter) Confirm() {
	if !p.ready() {
		return
	}
	if _, err := p.ctl.Confirm(); err != nil {
		if p.logger != nil {
			p.logger.Debug("confirm ignored", "error", err)
		}
		p.view.SetStatus("Drag a rectangle first")
	}
}

// Abort cancels the selection.
func (p *SelectionPresenter) Abort() {
	if !p.ready() {
		return
	}
	p.ctl.Abort()
}

func (p *SelectionPresenter) redraw(sel image.Rectangle) {
	p.view.ShowFrame(p.renderer.Render(sel))
}

func (p *SelectionPresenter) onState(_, next interaction.State) {
	if p.view == nil || p.closed {
		return
	}
	p.view.SetStatus(StatusText(next))
	if next.Terminal() {
		p.closed = true
		p.view.Close()
	}
}

// StatusText is the hint line shown for a selection state.
func StatusText(s interaction.State) string {
	switch s {
	case interaction.StateIdle:
		return "Drag a rectangle around the subject"
	case interaction.StateDragging:
		return "Release to commit"
	case interaction.StateReady:
		return "Enter or Space to confirm, Esc to cancel"
	case interaction.StateConfirmed:
		return "Confirmed"
	case interaction.StateCancelled:
		return "Cancelled"
	default:
		return ""
	}
}
