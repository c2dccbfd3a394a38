package view

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/fgcut/ui/images"
	"github.com/soocke/fgcut/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SelectionHandlers receives the window's input events. Coordinates are
// display pixels relative to the image.
type SelectionHandlers struct {
	Press   func(x, y int)
	Move    func(x, y int)
	Release func(x, y int)
	Confirm func()
	Abort   func()
}

// SelectionWindow shows the working image in the main Tk window and reports
// drags and key presses. It implements presenter.SelectionView.
type SelectionWindow struct {
	logger    *slog.Logger
	frame     *LabelWidget
	status    *TLabelWidget
	prevPhoto *Img // last Tk photo, deleted when replaced
	closed    bool
}

// NewSelectionWindow builds the layout for an image of the given display size.
func NewSelectionWindow(title string, size image.Point, dark bool, logger *slog.Logger) *SelectionWindow {
	w := &SelectionWindow{logger: logger}
	theme.Init(dark)
	App.WmTitle(title)
	WmGeometry(App, fmt.Sprintf("+%d+%d", 40, 40))
	WmAttributes(App, "-topmost", 1)

	placeholder := image.NewNRGBA(image.Rect(0, 0, max(size.X, 1), max(size.Y, 1)))
	w.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder)))
	w.frame = Label(Image(w.prevPhoto), Borderwidth(0), Cursor("crosshair"))
	Grid(w.frame, Row(0), Column(0), Sticky("nw"))
	w.status = TLabel(Txt(""), Anchor("w"), Style(theme.StyleStatusLabel))
	Grid(w.status, Row(1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	return w
}

// Bind connects the handlers to mouse button 1 and the confirm/abort keys.
// Closing the window counts as abort.
func (w *SelectionWindow) Bind(h SelectionHandlers) {
	if w == nil || w.frame == nil {
		return
	}
	point := func(fn func(x, y int)) any {
		return Command(func(e *Event) {
			if fn != nil && !w.closed {
				p := eventPoint(e)
				fn(p.X, p.Y)
			}
		})
	}
	key := func(fn func()) any {
		return Command(func() {
			if fn != nil && !w.closed {
				fn()
			}
		})
	}
	Bind(w.frame, "<ButtonPress-1>", point(h.Press))
	Bind(w.frame, "<B1-Motion>", point(h.Move))
	Bind(w.frame, "<ButtonRelease-1>", point(h.Release))
	Bind(App, "<Return>", key(h.Confirm))
	Bind(App, "<space>", key(h.Confirm))
	Bind(App, "<Escape>", key(h.Abort))
	WmProtocol(App, "WM_DELETE_WINDOW", func() {
		if h.Abort != nil && !w.closed {
			h.Abort()
		}
		w.Close()
	})
}

// ShowFrame replaces the displayed image with the PNG bytes.
func (w *SelectionWindow) ShowFrame(png []byte) {
	if w == nil || w.frame == nil || w.closed || len(png) == 0 {
		return
	}
	if w.prevPhoto != nil {
		w.prevPhoto.Delete()
	}
	w.prevPhoto = NewPhoto(Data(png))
	w.frame.Configure(Image(w.prevPhoto))
}

// SetStatus updates the hint line below the image.
func (w *SelectionWindow) SetStatus(text string) {
	if w == nil || w.status == nil || w.closed {
		return
	}
	w.status.Configure(Txt(text))
}

// Close destroys the window, which ends Run.
func (w *SelectionWindow) Close() {
	if w == nil || w.closed {
		return
	}
	w.closed = true
	if w.logger != nil {
		w.logger.Debug("selection window closed")
	}
	Destroy(App)
}

// Run blocks in the Tk event loop until the window is closed.
func (w *SelectionWindow) Run() {
	App.Wait()
}

// eventPoint is the pointer position of a mouse event relative to the widget.
func eventPoint(e *Event) image.Point {
	if e == nil {
		return image.Point{}
	}
	return image.Pt(e.X, e.Y)
}
