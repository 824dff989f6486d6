// Package linecache provides a sparse, line-indexed store of document lines
// known locally. The backend owns the authoritative text; the cache only
// holds what the backend has pushed so far, and can compute which parts of a
// requested viewport still need fetching.
//
// The cache is single-owner: the event loop goroutine is the only reader and
// writer, so no locking is needed. Backend pushes are serialized through the
// event loop before they reach Put.
package linecache

// StyleSelection is the reserved style id for selection highlighting.
const StyleSelection = 0

// Span is a styled byte range within a line's text.
type Span struct {
	// Start and End are byte offsets into Line.Text, End exclusive.
	Start, End int

	// Style identifies the style to apply; StyleSelection means the span
	// is selected text.
	Style int
}

// Line is one document line as pushed by the backend. Lines are immutable
// once constructed; an update from the backend replaces the whole value.
type Line struct {
	// Text is the line's content as UTF-8 bytes, without the trailing
	// newline.
	Text string

	// Styles are the styled spans for this line, sorted and
	// non-overlapping as sent by the backend.
	Styles []Span

	// Cursors are the byte offsets of carets on this line. A line may
	// carry several (multi-cursor editing).
	Cursors []int
}

// MissingRange is a half-open run [First, Last) of line indices absent from
// the cache.
type MissingRange struct {
	First, Last int
}

// Cache maps line indices to lines. Absence of an index means "not yet
// fetched", never "blank line".
type Cache struct {
	lines map[int]*Line
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{lines: make(map[int]*Line)}
}

// Get returns the line at index, or nil if the backend has not pushed it
// yet. Get never blocks.
func (c *Cache) Get(index int) *Line {
	return c.lines[index]
}

// Put stores a backend-pushed line, replacing any prior value for that
// index. Requesting a redraw is the caller's responsibility.
func (c *Cache) Put(index int, line *Line) {
	if index < 0 || line == nil {
		return
	}
	c.lines[index] = line
}

// Len returns the number of lines currently present.
func (c *Cache) Len() int {
	return len(c.lines)
}

// ComputeMissing scans [first, last) and returns the maximal contiguous runs
// of absent indices. Adjacent misses merge into a single range so the caller
// issues the fewest fetch requests. The result is empty when every requested
// index is present. ComputeMissing is a pure read.
func (c *Cache) ComputeMissing(first, last int) []MissingRange {
	if first < 0 {
		first = 0
	}

	var missing []MissingRange
	runStart := -1
	for i := first; i < last; i++ {
		if _, ok := c.lines[i]; ok {
			if runStart >= 0 {
				missing = append(missing, MissingRange{First: runStart, Last: i})
				runStart = -1
			}
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}
	if runStart >= 0 {
		missing = append(missing, MissingRange{First: runStart, Last: last})
	}
	return missing
}
