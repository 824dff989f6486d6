// Package composition implements the input-method editing state machine. It
// owns the current selection and marked (composition) ranges, both in
// code-unit space relative to the rendered line, and translates UI-level
// insert/set-marked/unmark/remove-marked operations into backend edit
// commands.
//
// All backend commands are fire-and-forget: the machine updates its ranges
// optimistically and the next backend push reconciles caret rendering, since
// the pushed Line.Cursors set is the single source of truth for cursor
// location.
package composition

import (
	"go.uber.org/zap"

	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/offset"
)

// State names the machine's two states.
type State int

const (
	// StateIdle means no marked text is active.
	StateIdle State = iota
	// StateComposing means a marked range is set; the selection range is a
	// position within it.
	StateComposing
)

// String returns the state name.
func (s State) String() string {
	if s == StateComposing {
		return "composing"
	}
	return "idle"
}

// Emitter sends edit commands to the backend. The backend protocol has no
// bulk delete primitive, so range deletion is one DeleteBackward per code
// unit.
type Emitter interface {
	Insert(chars string)
	DeleteBackward()
}

// Result reports a transition's outcome: the new ranges and how many backend
// commands the transition emitted.
type Result struct {
	Marked    core.Range
	Selection core.Range
	Commands  int
}

// Machine is the composition state machine. Single-owner: only the event
// loop goroutine may call its methods.
type Machine struct {
	emitter   Emitter
	log       *zap.Logger
	selection core.Range
	marked    core.Range
}

// New creates an idle machine emitting commands through emitter.
func New(emitter Emitter, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		emitter:   emitter,
		log:       log,
		selection: core.RangeNone,
		marked:    core.RangeNone,
	}
}

// State returns StateComposing while a marked range is active.
func (m *Machine) State() State {
	if m.marked.IsSet() {
		return StateComposing
	}
	return StateIdle
}

// SelectedRange returns the current selection range, or RangeNone.
func (m *Machine) SelectedRange() core.Range {
	return m.selection
}

// MarkedRange returns the current marked range, or RangeNone.
func (m *Machine) MarkedRange() core.Range {
	return m.marked
}

// SetSelectedRange replaces the selection range without emitting commands.
func (m *Machine) SetSelectedRange(r core.Range) {
	m.selection = r
}

// Invalidate clears both ranges. Called when text outside the ranges changes
// (a backend push rewrote the rendered line) so stale offsets are never
// applied to new content.
func (m *Machine) Invalidate() {
	m.marked = core.RangeNone
	m.selection = core.RangeNone
}

// InsertText commits any active composition, then replaces replacement (or
// the current selection when replacement is RangeNone) with text.
func (m *Machine) InsertText(text string, replacement core.Range) Result {
	if m.State() == StateComposing {
		// Committing: the marked text already matches what the input
		// method wants inserted-before, so just drop the ranges.
		m.marked = core.RangeNone
		m.selection = core.RangeNone
	}

	rng := replacement
	if !rng.IsSet() {
		rng = m.selection
	}
	_, n := m.replace(rng, text)
	m.selection = core.RangeNone

	m.log.Debug("insert text",
		zap.Int("units", offset.CodeUnits(text)),
		zap.Int("commands", n))
	return Result{Marked: m.marked, Selection: m.selection, Commands: n}
}

// SetMarkedText replaces the effective replacement range with text and marks
// the span written. selected is interpreted relative to the new marked
// range. A zero-length result auto-cancels the composition: the input method
// cleared its buffer, so the machine returns to idle with both ranges unset.
func (m *Machine) SetMarkedText(text string, selected, replacement core.Range) Result {
	effective := m.resolveReplacement(replacement)
	written, n := m.replace(effective, text)

	if written.Len == 0 {
		m.marked = core.RangeNone
		m.selection = core.RangeNone
		m.log.Debug("composition cancelled", zap.Int("commands", n))
		return Result{Marked: m.marked, Selection: m.selection, Commands: n}
	}

	m.marked = written
	if selected.IsSet() {
		m.selection = core.Range{Pos: written.Pos + selected.Pos, Len: selected.Len}
	} else {
		m.selection = core.RangeNone
	}

	m.log.Debug("set marked text",
		zap.Int("markedPos", m.marked.Pos),
		zap.Int("markedLen", m.marked.Len),
		zap.Int("commands", n))
	return Result{Marked: m.marked, Selection: m.selection, Commands: n}
}

// UnmarkText commits the composition: the marked range is cleared and the
// selection is left untouched. No commands are emitted; the marked text is
// already in the document.
func (m *Machine) UnmarkText() Result {
	m.marked = core.RangeNone
	return Result{Marked: m.marked, Selection: m.selection}
}

// RemoveMarkedText deletes the marked text from the document, one
// delete-backward per code unit, and clears both ranges.
func (m *Machine) RemoveMarkedText() Result {
	n := 0
	if m.marked.IsSet() {
		for i := 0; i < m.marked.Len; i++ {
			m.emitter.DeleteBackward()
		}
		n = m.marked.Len
		m.marked = core.RangeNone
		m.selection = core.RangeNone
	}
	return Result{Marked: m.marked, Selection: m.selection, Commands: n}
}

// resolveReplacement computes the absolute range a marked-text replacement
// applies to. An explicit range is relative to the marked range while
// composing, relative to the selection otherwise, and absolute when neither
// is set. An unset range falls back to the marked range, then the selection,
// then a zero-length range at 0.
func (m *Machine) resolveReplacement(replacement core.Range) core.Range {
	if replacement.IsSet() {
		switch {
		case m.marked.IsSet():
			return core.Range{Pos: m.marked.Pos + replacement.Pos, Len: replacement.Len}
		case m.selection.IsSet():
			return core.Range{Pos: m.selection.Pos + replacement.Pos, Len: replacement.Len}
		default:
			return replacement
		}
	}
	switch {
	case m.marked.IsSet():
		return m.marked
	case m.selection.IsSet():
		return m.selection
	default:
		return core.Range{Pos: 0, Len: 0}
	}
}

// replace is the shared edit primitive: delete the range backward one code
// unit at a time, then insert the replacement text. It returns the absolute
// range actually written (original location, inserted length in code units)
// and the number of commands emitted. Empty text emits no insert.
func (m *Machine) replace(rng core.Range, text string) (core.Range, int) {
	n := 0
	pos := 0
	if rng.IsSet() {
		pos = rng.Pos
		for i := 0; i < rng.Len; i++ {
			m.emitter.DeleteBackward()
		}
		n = rng.Len
	}
	if len(text) > 0 {
		m.emitter.Insert(text)
		n++
	}
	return core.Range{Pos: pos, Len: offset.CodeUnits(text)}, n
}
