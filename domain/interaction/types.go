package interaction

import "image"

// State enumerates the selection states.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateReady
	StateConfirmed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateReady:
		return "ready"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool { return s == StateConfirmed || s == StateCancelled }

// StateListener is called on each successful state transition.
type StateListener func(prev, next State)

// Interface slices for consumers (presenters).
type PointerSink interface {
	Press(p image.Point)
	Move(p image.Point) (image.Rectangle, bool)
	Release(p image.Point) (image.Rectangle, bool)
}
type SelectionControl interface {
	Confirm() (image.Rectangle, error)
	Abort()
}
type SelectionSource interface {
	Current() State
	Preview() image.Rectangle
	Selection() (image.Rectangle, bool)
}

// SelectionContract aggregate for DI.
type SelectionContract interface {
	PointerSink
	SelectionControl
	SelectionSource
	AddListener(StateListener)
}
