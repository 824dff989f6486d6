// Package layout defines the text-layout engine interface the view consumes
// and a fixed-pitch implementation suitable for terminal frontends.
//
// A laid-out line exposes two queries: enumeration of the caret-offset table
// (one leading/trailing edge pair per glyph cluster, in visual order) and
// hit-testing a pixel position to the nearest code-unit boundary. Indices
// are UTF-16 code units throughout.
package layout

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/offset"
)

// Attributes carries the parameters a layout pass depends on.
type Attributes struct {
	Metrics core.TextMetrics
}

// Line is an opaque laid-out line.
type Line interface {
	// EnumerateCaretOffsets calls fn for each caret edge in visual order:
	// for every glyph cluster, first the leading edge (index = first code
	// unit of the cluster), then the trailing edge (index = last code
	// unit of the cluster). Enumeration stops early when fn returns
	// false.
	EnumerateCaretOffsets(fn func(x float64, index int, leadingEdge bool) bool)

	// IndexForPosition maps a pixel x-coordinate to the nearest code-unit
	// boundary. It reports false when the line has no resolvable
	// position (empty line).
	IndexForPosition(x float64) (int, bool)

	// Width returns the line's total advance in pixels.
	Width() float64
}

// Engine turns a line of text plus attributes into a laid-out line.
type Engine interface {
	Layout(text string, attrs Attributes) Line
}

// cluster is one grapheme cluster's span in code units and pixels.
type cluster struct {
	start, end int // code units, end exclusive
	x0, x1     float64
}

// FixedPitch lays text out on a fixed-pitch grid: every grapheme cluster
// advances by its cell width times the font's character width. Wide (CJK,
// emoji) clusters take two cells.
type FixedPitch struct{}

// NewFixedPitch creates a fixed-pitch layout engine.
func NewFixedPitch() *FixedPitch {
	return &FixedPitch{}
}

// Layout segments text into grapheme clusters and assigns each a pixel span.
func (e *FixedPitch) Layout(text string, attrs Attributes) Line {
	charWidth := attrs.Metrics.CharWidth
	if charWidth <= 0 {
		charWidth = 1
	}

	var clusters []cluster
	cu := 0
	x := 0.0
	state := -1
	for s := text; s != ""; {
		c, rest, _, next := uniseg.StepString(s, state)
		n := offset.CodeUnits(c)
		w := float64(uniseg.StringWidth(c)) * charWidth
		clusters = append(clusters, cluster{
			start: cu,
			end:   cu + n,
			x0:    x,
			x1:    x + w,
		})
		cu += n
		x += w
		s = rest
		state = next
	}

	return &fixedLine{clusters: clusters, width: x}
}

// fixedLine is the laid-out form produced by FixedPitch.
type fixedLine struct {
	clusters []cluster
	width    float64
}

func (l *fixedLine) EnumerateCaretOffsets(fn func(x float64, index int, leadingEdge bool) bool) {
	for _, c := range l.clusters {
		if !fn(c.x0, c.start, true) {
			return
		}
		if !fn(c.x1, c.end-1, false) {
			return
		}
	}
}

func (l *fixedLine) IndexForPosition(x float64) (int, bool) {
	if len(l.clusters) == 0 {
		return 0, false
	}
	if x <= 0 {
		return 0, true
	}
	for _, c := range l.clusters {
		if x < (c.x0+c.x1)/2 {
			return c.start, true
		}
		if x < c.x1 {
			return c.end, true
		}
	}
	return l.clusters[len(l.clusters)-1].end, true
}

func (l *fixedLine) Width() float64 {
	return l.width
}
