// Package viewport orchestrates painting: it maps dirty pixel rectangles to
// document line ranges, triggers asynchronous fetches for lines the cache is
// missing, and drives caret geometry and composition state into a draw list
// the frontend can render. A paint never blocks on missing data; absent
// lines are skipped for the frame and drawn when their push arrives.
package viewport

import (
	"math"

	"go.uber.org/zap"

	"github.com/dshills/textview/internal/blink"
	"github.com/dshills/textview/internal/caret"
	"github.com/dshills/textview/internal/composition"
	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/layout"
	"github.com/dshills/textview/internal/linecache"
	"github.com/dshills/textview/internal/offset"
)

// Fetcher issues asynchronous line-range fetches; satisfied by
// backend.Document.
type Fetcher interface {
	RequestLines(first, last int)
}

// TextRun is one line's glyph run: the laid-out line and its baseline
// origin in view pixel space.
type TextRun struct {
	Index int
	Text  string
	Pos   core.Point
	Line  layout.Line
}

// CaretOp is a vertical caret stroke.
type CaretOp struct {
	X, Y, H float64
}

// UnderlineOp is a horizontal underline segment; Thick marks the selected
// portion of a composition.
type UnderlineOp struct {
	X0, X1, Y float64
	Thick     bool
}

// DrawList is the output of one paint pass, in draw order: selection
// rectangles under glyph runs, then composition underlines and carets.
type DrawList struct {
	Selections []core.Rect
	Runs       []TextRun
	Underlines []UnderlineOp
	Carets     []CaretOp
}

// Params wires a Controller's collaborators.
type Params struct {
	Cache    *linecache.Cache
	Fetcher  Fetcher
	Engine   layout.Engine
	Composer *composition.Machine
	Blinker  *blink.Scheduler
	Metrics  core.TextMetrics
	Log      *zap.Logger
}

// Controller owns a view's paint and input-routing logic. Single-owner: all
// methods run on the event loop goroutine.
type Controller struct {
	cache    *linecache.Cache
	fetcher  Fetcher
	engine   layout.Engine
	composer *composition.Machine
	blinker  *blink.Scheduler
	metrics  core.TextMetrics
	log      *zap.Logger

	origin  float64 // vertical scroll offset in pixels
	focused bool
}

// New creates a controller.
func New(p Params) *Controller {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		cache:    p.Cache,
		fetcher:  p.Fetcher,
		engine:   p.Engine,
		composer: p.Composer,
		blinker:  p.Blinker,
		metrics:  p.Metrics,
		log:      log,
	}
}

// SetMetrics swaps the font metrics, e.g. after a config reload.
func (c *Controller) SetMetrics(m core.TextMetrics) {
	c.metrics = m
}

// SetOrigin sets the vertical scroll offset in pixels.
func (c *Controller) SetOrigin(y float64) {
	if y < 0 {
		y = 0
	}
	c.origin = y
}

// Origin returns the vertical scroll offset.
func (c *Controller) Origin() float64 {
	return c.origin
}

// SetFocus tracks focus ownership. Gaining focus restarts the blink cycle
// with the caret solid; losing it stops blinking.
func (c *Controller) SetFocus(focused bool) {
	c.focused = focused
	if focused {
		c.blinker.Restart()
	} else {
		c.blinker.Stop()
	}
}

// Focused reports whether the view owns caret display.
func (c *Controller) Focused() bool {
	return c.focused
}

// ContentChanged restarts the blink cycle after a backend push so the caret
// stays solid while text is arriving.
func (c *Controller) ContentChanged() {
	if c.focused {
		c.blinker.Restart()
	}
}

// CaretMoved restarts the blink cycle after a caret move.
func (c *Controller) CaretMoved() {
	if c.focused {
		c.blinker.Restart()
	}
}

// LineRange maps a dirty rectangle to the half-open document line range it
// covers, accounting for scroll.
func (c *Controller) LineRange(dirty core.Rect) (first, last int) {
	first = int(math.Floor((dirty.Y + c.origin) / c.metrics.Linespace))
	last = int(math.Ceil((dirty.Bottom() + c.origin) / c.metrics.Linespace))
	if first < 0 {
		first = 0
	}
	if last < first {
		last = first
	}
	return first, last
}

// Paint produces the draw list for a dirty rectangle. Missing lines trigger
// one fetch per contiguous absent run and are skipped for this frame.
func (c *Controller) Paint(dirty core.Rect) *DrawList {
	first, last := c.LineRange(dirty)

	for _, miss := range c.cache.ComputeMissing(first, last) {
		c.fetcher.RequestLines(miss.First, miss.Last)
	}

	dl := &DrawList{}
	showCaret := c.focused && c.blinker.Visible()
	marked := c.composer.MarkedRange()
	selected := c.composer.SelectedRange()

	for i := first; i < last; i++ {
		line := c.cache.Get(i)
		if line == nil {
			continue
		}
		lay := c.engine.Layout(line.Text, layout.Attributes{Metrics: c.metrics})
		y0 := float64(i)*c.metrics.Linespace - c.origin

		c.paintSelections(dl, line, lay, y0)

		dl.Runs = append(dl.Runs, TextRun{
			Index: i,
			Text:  line.Text,
			Pos:   core.Point{X: 0, Y: y0 + c.metrics.Baseline},
			Line:  lay,
		})

		if len(line.Cursors) > 0 {
			c.paintCarets(dl, line, lay, y0, showCaret, marked, selected)
		}
	}
	return dl
}

// paintSelections emits filled rectangles for the line's selection spans.
// Spans arrive sorted and non-overlapping, so the flattened boundary list is
// already ascending for the batched offset lookup.
func (c *Controller) paintSelections(dl *DrawList, line *linecache.Line, lay layout.Line, y0 float64) {
	var positions []int
	for _, sp := range line.Styles {
		if sp.Style != linecache.StyleSelection {
			continue
		}
		positions = append(positions,
			offset.ByteToCodeUnit(line.Text, sp.Start),
			offset.ByteToCodeUnit(line.Text, sp.End))
	}
	if len(positions) == 0 {
		return
	}

	xs := caret.Offsets(lay, positions)
	for j := 0; j+1 < len(xs); j += 2 {
		dl.Selections = append(dl.Selections, core.Rect{
			X: xs[j],
			Y: y0,
			W: xs[j+1] - xs[j],
			H: c.metrics.Linespace,
		})
	}
}

// paintCarets emits caret strokes for each cursor on the line and, while a
// composition is active, the marked/selected underlines anchored at each
// caret. The underline arithmetic assumes a single-line, single-marked-range
// composition; positions that adjust to a negative offset are skipped.
func (c *Controller) paintCarets(dl *DrawList, line *linecache.Line, lay layout.Line, y0 float64, showCaret bool, marked, selected core.Range) {
	positions := make([]int, 0, len(line.Cursors))
	for _, b := range line.Cursors {
		positions = append(positions, offset.ByteToCodeUnit(line.Text, b))
	}

	xs := caret.Offsets(lay, positions)
	if showCaret {
		for _, x := range xs {
			dl.Carets = append(dl.Carets, CaretOp{X: x, Y: y0, H: c.metrics.Linespace})
		}
	}

	if !marked.IsSet() {
		return
	}
	underY := y0 + c.metrics.Linespace - 1
	for _, cix := range positions {
		start := cix - marked.Len
		if start < 0 {
			continue
		}
		span := caret.Offsets(lay, []int{start, cix})
		dl.Underlines = append(dl.Underlines, UnderlineOp{
			X0: span[0], X1: span[1], Y: underY,
		})

		if selected.IsSet() && selected.Len > 0 {
			// The machine reports the selection in its own offset
			// space; only its position within the marked range
			// transfers to line space.
			s0 := start + (selected.Pos - marked.Pos)
			if s0 < 0 || s0+selected.Len > cix {
				continue
			}
			sel := caret.Offsets(lay, []int{s0, s0 + selected.Len})
			dl.Underlines = append(dl.Underlines, UnderlineOp{
				X0: sel[0], X1: sel[1], Y: underY, Thick: true,
			})
		}
	}
}

// PositionForPoint hit-tests a view-space point to a buffer position. Points
// on lines the cache does not hold resolve to column 0, which also covers
// pointing past the end of the document.
func (c *Controller) PositionForPoint(pt core.Point) core.BufferPosition {
	lineIdx := int(math.Floor((pt.Y + c.origin) / c.metrics.Linespace))
	if lineIdx < 0 {
		lineIdx = 0
	}

	line := c.cache.Get(lineIdx)
	if line == nil {
		return core.BufferPosition{Line: lineIdx, Column: 0}
	}

	lay := c.engine.Layout(line.Text, layout.Attributes{Metrics: c.metrics})
	idx, ok := caret.HitTest(lay, pt.X)
	if !ok {
		return core.BufferPosition{Line: lineIdx, Column: 0}
	}
	return core.BufferPosition{
		Line:   lineIdx,
		Column: offset.CodeUnitToByte(line.Text, idx),
	}
}
