// Package frontend adapts a window/event system to the view core: it
// delivers paint, input, focus, and pointer events, and consumes draw lists.
// The terminal implementation treats the cell grid as a fixed-pitch pixel
// space with one-cell character width and one-cell line spacing.
package frontend

import "github.com/dshills/textview/internal/core"

// Event is a window-system event. The concrete types below are the full
// set the view core consumes.
type Event any

// PaintEvent requests a redraw of the dirty rectangle.
type PaintEvent struct {
	Dirty core.Rect
}

// InsertEvent carries committed text input.
type InsertEvent struct {
	Text string
}

// SetMarkedEvent carries in-progress composition text from an input method.
// Selected is relative to the new marked range; Replacement narrows what the
// marked text replaces. Either may be core.RangeNone.
type SetMarkedEvent struct {
	Text        string
	Selected    core.Range
	Replacement core.Range
}

// UnmarkEvent commits the active composition as ordinary text.
type UnmarkEvent struct{}

// RemoveMarkedEvent discards the active composition from the document.
type RemoveMarkedEvent struct{}

// CommandEvent carries a named editing command (delete_backward, move_up,
// ...) passed through to the backend.
type CommandEvent struct {
	Name string
}

// FocusEvent reports focus gain or loss.
type FocusEvent struct {
	Gained bool
}

// PointerEvent carries a primary-button press in view pixel space.
type PointerEvent struct {
	Pos core.Point
}

// ResizeEvent reports the new view size in pixels.
type ResizeEvent struct {
	Width, Height float64
}

// QuitEvent requests application shutdown.
type QuitEvent struct{}
