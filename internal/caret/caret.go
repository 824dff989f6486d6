// Package caret computes caret pixel geometry from laid-out lines: forward
// lookups from code-unit positions to pixel offsets (single and batched) and
// the inverse hit-test from a pixel position to a code-unit boundary.
package caret

import "github.com/dshills/textview/internal/layout"

// Offset returns the pixel offset of the caret at pos on the laid-out line.
// It scans the line's caret table until the leading edge for pos is found;
// positions at or past end of line resolve to the final trailing edge.
func Offset(l layout.Line, pos int) float64 {
	var found float64
	var ok bool
	var last float64
	l.EnumerateCaretOffsets(func(x float64, index int, leading bool) bool {
		last = x
		if leading && index == pos {
			found = x
			ok = true
			return false
		}
		return true
	})
	if ok {
		return found
	}
	return last
}

// Offsets resolves pixel offsets for a batch of positions in one enumeration
// pass, O(clusters + len(positions)) instead of one scan per position.
//
// Every position except 0 is shifted left by one and matched against the
// trailing edge of the cluster covering it; the trailing edge of cluster
// [s,e) sits at the same pixel as the leading edge of position e, and unlike
// leading edges it also exists for end-of-line positions, so the common
// caret-at-line-end case needs no special final check.
//
// Positions must be sorted ascending; an unsorted batch yields an
// unspecified (but bounded) result. Positions past the end of the line clamp
// to the final edge.
func Offsets(l layout.Line, positions []int) []float64 {
	out := make([]float64, 0, len(positions))
	if len(positions) == 0 {
		return out
	}

	i := 0
	var last float64
	l.EnumerateCaretOffsets(func(x float64, index int, leading bool) bool {
		last = x
		for i < len(positions) {
			pos := positions[i]
			if pos == 0 {
				if leading && index == 0 {
					out = append(out, x)
					i++
					continue
				}
				break
			}
			if !leading && index >= pos-1 {
				out = append(out, x)
				i++
				continue
			}
			break
		}
		return i < len(positions)
	})

	// Positions past the last cluster clamp to the final edge seen.
	for i < len(positions) {
		out = append(out, last)
		i++
	}
	return out
}

// HitTest maps a pixel x-coordinate to the nearest code-unit boundary on the
// laid-out line. It reports false when the layout engine cannot resolve a
// position (empty line); callers fall back to column 0.
func HitTest(l layout.Line, x float64) (int, bool) {
	return l.IndexForPosition(x)
}
