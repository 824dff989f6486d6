// Package core provides shared geometry and text-metric types for the view
// subsystem. This package breaks import cycles between the viewport, layout,
// and composition packages.
package core

import "math"

// Point is a position in view pixel space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in view pixel space.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the Y coordinate of the rectangle's lower edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Range is a span of text in code-unit space: a start offset and a
// non-negative length. The zero-length range at an offset is valid and
// distinct from RangeNone.
type Range struct {
	Pos int
	Len int
}

// RangeNone is the sentinel "not set" range.
var RangeNone = Range{Pos: -1, Len: 0}

// IsSet reports whether the range holds a real span (as opposed to the
// RangeNone sentinel).
func (r Range) IsSet() bool {
	return r.Pos >= 0
}

// End returns the exclusive end offset of the range.
func (r Range) End() int {
	return r.Pos + r.Len
}

// BufferPosition identifies a location in the document: a line index and a
// byte-offset column within that line. Column 0 with a line index past the
// end of the document means "end of document".
type BufferPosition struct {
	Line   int
	Column int
}

// TextMetrics is an immutable per-font measurement record. Construct with
// NewTextMetrics; shared read-only after that.
type TextMetrics struct {
	Ascent  float64
	Descent float64
	Leading float64

	// Linespace is ceil(Ascent+Descent+Leading), the vertical distance
	// between consecutive baselines.
	Linespace float64

	// Baseline is the offset from the top of a line box to its baseline.
	Baseline float64

	// CharWidth is the advance of a fixed-pitch character, or 0 for a
	// proportional font.
	CharWidth float64
}

// NewTextMetrics computes derived fields from the raw font measurements.
func NewTextMetrics(ascent, descent, leading, charWidth float64) TextMetrics {
	return TextMetrics{
		Ascent:    ascent,
		Descent:   descent,
		Leading:   leading,
		Linespace: math.Ceil(ascent + descent + leading),
		Baseline:  math.Ceil(ascent + leading),
		CharWidth: charWidth,
	}
}
