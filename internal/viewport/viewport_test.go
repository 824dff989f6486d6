package viewport

import (
	"reflect"
	"testing"
	"time"

	"github.com/dshills/textview/internal/blink"
	"github.com/dshills/textview/internal/composition"
	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/layout"
	"github.com/dshills/textview/internal/linecache"
)

// fakeFetcher records requested line ranges.
type fakeFetcher struct {
	requests []linecache.MissingRange
}

func (f *fakeFetcher) RequestLines(first, last int) {
	f.requests = append(f.requests, linecache.MissingRange{First: first, Last: last})
}

// nullEmitter drops composition commands.
type nullEmitter struct{}

func (nullEmitter) Insert(string)   {}
func (nullEmitter) DeleteBackward() {}

type fixture struct {
	cache    *linecache.Cache
	fetcher  *fakeFetcher
	composer *composition.Machine
	blinker  *blink.Scheduler
	ctrl     *Controller
}

func newFixture() *fixture {
	f := &fixture{
		cache:    linecache.New(),
		fetcher:  &fakeFetcher{},
		composer: composition.New(nullEmitter{}, nil),
		blinker:  blink.New(time.Hour, func() {}),
	}
	// Linespace 16, baseline 12, char width 8.
	f.ctrl = New(Params{
		Cache:    f.cache,
		Fetcher:  f.fetcher,
		Engine:   layout.NewFixedPitch(),
		Composer: f.composer,
		Blinker:  f.blinker,
		Metrics:  core.NewTextMetrics(12, 4, 0, 8),
	})
	return f
}

func TestLineRange(t *testing.T) {
	f := newFixture()

	first, last := f.ctrl.LineRange(core.Rect{Y: 0, H: 320})
	if first != 0 || last != 20 {
		t.Errorf("LineRange = [%d, %d), want [0, 20)", first, last)
	}

	first, last = f.ctrl.LineRange(core.Rect{Y: 17, H: 20})
	if first != 1 || last != 3 {
		t.Errorf("LineRange = [%d, %d), want [1, 3)", first, last)
	}
}

func TestLineRangeWithScroll(t *testing.T) {
	f := newFixture()
	f.ctrl.SetOrigin(160) // 10 lines down

	first, last := f.ctrl.LineRange(core.Rect{Y: 0, H: 32})
	if first != 10 || last != 12 {
		t.Errorf("LineRange = [%d, %d), want [10, 12)", first, last)
	}
}

func TestPaintEmptyCacheIssuesSingleFetch(t *testing.T) {
	f := newFixture()

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 320})

	want := []linecache.MissingRange{{First: 0, Last: 20}}
	if !reflect.DeepEqual(f.fetcher.requests, want) {
		t.Errorf("requests = %v, want %v", f.fetcher.requests, want)
	}
	if len(dl.Runs) != 0 {
		t.Errorf("got %d runs from an empty cache, want 0", len(dl.Runs))
	}

	// Push everything; a repaint must fetch nothing more.
	for i := 0; i < 20; i++ {
		f.cache.Put(i, &linecache.Line{Text: "x"})
	}
	f.fetcher.requests = nil
	f.ctrl.Paint(core.Rect{Y: 0, H: 320})
	if len(f.fetcher.requests) != 0 {
		t.Errorf("requests after full push = %v, want none", f.fetcher.requests)
	}
	if missing := f.cache.ComputeMissing(0, 20); len(missing) != 0 {
		t.Errorf("ComputeMissing after push = %v, want empty", missing)
	}
}

func TestPaintSkipsMissingLines(t *testing.T) {
	f := newFixture()
	f.cache.Put(1, &linecache.Line{Text: "one"})

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 48}) // lines [0, 3)

	if len(dl.Runs) != 1 || dl.Runs[0].Index != 1 {
		t.Fatalf("runs = %+v, want single run for line 1", dl.Runs)
	}
	if dl.Runs[0].Pos.Y != 16+12 {
		t.Errorf("baseline Y = %v, want 28", dl.Runs[0].Pos.Y)
	}
}

func TestPaintSelectionRects(t *testing.T) {
	f := newFixture()
	// Select "él" in "héllo": bytes [1, 4) = code units [1, 3).
	f.cache.Put(0, &linecache.Line{
		Text:   "héllo",
		Styles: []linecache.Span{{Start: 1, End: 4, Style: linecache.StyleSelection}},
	})

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})

	want := []core.Rect{{X: 8, Y: 0, W: 16, H: 16}}
	if !reflect.DeepEqual(dl.Selections, want) {
		t.Errorf("Selections = %v, want %v", dl.Selections, want)
	}
}

func TestPaintIgnoresNonSelectionStyles(t *testing.T) {
	f := newFixture()
	f.cache.Put(0, &linecache.Line{
		Text:   "abc",
		Styles: []linecache.Span{{Start: 0, End: 3, Style: 7}},
	})

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})
	if len(dl.Selections) != 0 {
		t.Errorf("Selections = %v, want none for non-zero style", dl.Selections)
	}
}

func TestPaintCaretsOnlyWhenFocused(t *testing.T) {
	f := newFixture()
	f.cache.Put(0, &linecache.Line{Text: "héllo", Cursors: []int{5}})

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})
	if len(dl.Carets) != 0 {
		t.Errorf("unfocused view drew carets: %v", dl.Carets)
	}

	f.ctrl.SetFocus(true)
	dl = f.ctrl.Paint(core.Rect{Y: 0, H: 16})
	if len(dl.Carets) != 1 {
		t.Fatalf("got %d carets, want 1", len(dl.Carets))
	}
	// Byte 5 is code unit 4; at char width 8 that is x = 32.
	if dl.Carets[0].X != 32 {
		t.Errorf("caret X = %v, want 32", dl.Carets[0].X)
	}
}

func TestPaintCaretHiddenByBlink(t *testing.T) {
	f := newFixture()
	f.cache.Put(0, &linecache.Line{Text: "a", Cursors: []int{1}})
	f.ctrl.SetFocus(true)

	f.blinker.Toggle() // hide

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})
	if len(dl.Carets) != 0 {
		t.Errorf("blink-hidden caret was drawn: %v", dl.Carets)
	}
}

func TestPaintCompositionUnderlines(t *testing.T) {
	f := newFixture()
	// Marked text "ab" at the caret: the cursor sits after it.
	f.composer.SetMarkedText("ab", core.Range{Pos: 1, Len: 1}, core.RangeNone)
	f.cache.Put(0, &linecache.Line{Text: "ab", Cursors: []int{2}})
	f.ctrl.SetFocus(true)

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})

	if len(dl.Underlines) != 2 {
		t.Fatalf("got %d underlines, want 2 (marked + selected)", len(dl.Underlines))
	}
	markedUL := dl.Underlines[0]
	if markedUL.X0 != 0 || markedUL.X1 != 16 || markedUL.Thick {
		t.Errorf("marked underline = %+v, want thin [0, 16]", markedUL)
	}
	selUL := dl.Underlines[1]
	if selUL.X0 != 8 || selUL.X1 != 16 || !selUL.Thick {
		t.Errorf("selected underline = %+v, want thick [8, 16]", selUL)
	}
}

func TestPaintUnderlineSkippedWhenNegative(t *testing.T) {
	f := newFixture()
	f.composer.SetMarkedText("abcdef", core.Range{Pos: 0, Len: 0}, core.RangeNone)
	// Cursor too close to line start for a 6-unit marked range.
	f.cache.Put(0, &linecache.Line{Text: "ab", Cursors: []int{2}})
	f.ctrl.SetFocus(true)

	dl := f.ctrl.Paint(core.Rect{Y: 0, H: 16})
	if len(dl.Underlines) != 0 {
		t.Errorf("negative-adjusted underline was drawn: %v", dl.Underlines)
	}
}

func TestPositionForPoint(t *testing.T) {
	f := newFixture()
	f.cache.Put(1, &linecache.Line{Text: "héllo"})

	// Line 1, right half of é (code unit 1, bytes 1..3): boundary after
	// it is code unit 2, byte 3.
	got := f.ctrl.PositionForPoint(core.Point{X: 14, Y: 20})
	want := core.BufferPosition{Line: 1, Column: 3}
	if got != want {
		t.Errorf("PositionForPoint = %+v, want %+v", got, want)
	}
}

func TestPositionForPointMissingLine(t *testing.T) {
	f := newFixture()

	got := f.ctrl.PositionForPoint(core.Point{X: 50, Y: 500})
	if got.Column != 0 {
		t.Errorf("Column = %d, want 0 for uncached line", got.Column)
	}
	if got.Line != 31 {
		t.Errorf("Line = %d, want 31", got.Line)
	}
}

func TestPositionForPointEmptyLine(t *testing.T) {
	f := newFixture()
	f.cache.Put(0, &linecache.Line{Text: ""})

	got := f.ctrl.PositionForPoint(core.Point{X: 40, Y: 4})
	want := core.BufferPosition{Line: 0, Column: 0}
	if got != want {
		t.Errorf("PositionForPoint = %+v, want %+v", got, want)
	}
}

func TestFocusControlsBlink(t *testing.T) {
	f := newFixture()

	f.ctrl.SetFocus(true)
	if !f.blinker.Running() || !f.blinker.Visible() {
		t.Error("focus-in should restart blinking with the caret solid")
	}

	f.blinker.Toggle()
	f.ctrl.ContentChanged()
	if !f.blinker.Visible() {
		t.Error("content change should force the caret solid")
	}

	f.blinker.Toggle()
	f.ctrl.CaretMoved()
	if !f.blinker.Visible() {
		t.Error("caret move should force the caret solid")
	}

	f.ctrl.SetFocus(false)
	if f.blinker.Running() {
		t.Error("focus-out should stop blinking")
	}
}
