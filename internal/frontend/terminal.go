package frontend

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/dshills/textview/internal/config"
	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/viewport"
)

// Terminal is the tcell-backed frontend. One screen cell is one pixel: the
// view runs with CharWidth 1 and Linespace 1, so draw-list coordinates map
// straight to cell columns and rows.
type Terminal struct {
	screen    tcell.Screen
	theme     config.ThemeConfig
	log       *zap.Logger
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	styleText      tcell.Style
	styleSelection tcell.Style
}

// NewTerminal creates and initializes the terminal frontend.
func NewTerminal(theme config.ThemeConfig, log *zap.Logger) (*Terminal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnableFocus()

	t := &Terminal{
		screen: screen,
		theme:  theme,
		log:    log,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	t.buildStyles()
	go t.poll()
	return t, nil
}

// Events returns the event stream. The channel closes when the terminal
// shuts down.
func (t *Terminal) Events() <-chan Event {
	return t.events
}

// Size returns the view size in pixels (cells).
func (t *Terminal) Size() (float64, float64) {
	w, h := t.screen.Size()
	return float64(w), float64(h)
}

// Close releases the terminal. Idempotent: shutdown paths may overlap.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		t.screen.Fini()
	})
}

// Render draws a draw list: selection fills first, then glyph runs,
// composition underlines, and carets on top.
func (t *Terminal) Render(dl *viewport.DrawList) {
	t.screen.Clear()
	t.screen.HideCursor()

	for _, sel := range dl.Selections {
		row := int(sel.Y)
		for col := int(sel.X); col < int(sel.X+sel.W); col++ {
			t.screen.SetContent(col, row, ' ', nil, t.styleSelection)
		}
	}

	for _, run := range dl.Runs {
		t.drawRun(run)
	}

	for _, ul := range dl.Underlines {
		t.applyUnderline(ul)
	}

	// tcell exposes a single hardware cursor; the first caret gets it and
	// the rest render as reverse-video cells.
	for i, c := range dl.Carets {
		col, row := int(c.X), int(c.Y)
		if i == 0 {
			t.screen.ShowCursor(col, row)
			continue
		}
		mainc, combc, style, _ := t.screen.GetContent(col, row)
		t.screen.SetContent(col, row, mainc, combc, style.Reverse(true))
	}

	t.screen.Show()
}

// drawRun writes one line's text. Cluster advance mirrors the fixed-pitch
// layout the view computed, so columns line up with caret geometry.
func (t *Terminal) drawRun(run viewport.TextRun) {
	row := int(run.Pos.Y) - 1 // Pos is the baseline; ascent is one cell
	col := 0

	state := -1
	for s := run.Text; s != ""; {
		cluster, rest, _, next := uniseg.StepString(s, state)
		runes := []rune(cluster)

		// Selection fills already painted this row keep their
		// background.
		_, _, existing, _ := t.screen.GetContent(col, row)
		style := t.styleText
		if existing == t.styleSelection {
			style = t.styleSelection
		}

		t.screen.SetContent(col, row, runes[0], runes[1:], style)
		col += uniseg.StringWidth(cluster)
		s = rest
		state = next
	}
}

// applyUnderline restyles the cells under a composition underline.
func (t *Terminal) applyUnderline(ul viewport.UnderlineOp) {
	row := int(ul.Y)
	for col := int(ul.X0); col < int(math.Ceil(ul.X1)); col++ {
		mainc, combc, style, _ := t.screen.GetContent(col, row)
		style = style.Underline(true)
		if ul.Thick {
			style = style.Bold(true)
		}
		t.screen.SetContent(col, row, mainc, combc, style)
	}
}

// buildStyles converts theme hex colors to tcell styles. Validation already
// happened in config, so parse failures fall back to defaults silently.
func (t *Terminal) buildStyles() {
	fg := tcell.GetColor(t.theme.Foreground)
	bg := tcell.GetColor(t.theme.Background)
	sel := tcell.GetColor(t.theme.Selection)

	t.styleText = tcell.StyleDefault.Foreground(fg).Background(bg)
	t.styleSelection = tcell.StyleDefault.Foreground(fg).Background(sel)
}

// poll converts tcell events to frontend events until the terminal closes.
func (t *Terminal) poll() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		out, ok := t.translate(ev)
		if !ok {
			continue
		}
		select {
		case t.events <- out:
		case <-t.done:
			return
		}
	}
}

// translate maps one tcell event to a frontend event.
func (t *Terminal) translate(ev tcell.Event) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return t.translateKey(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		return ResizeEvent{Width: float64(w), Height: float64(h)}, true
	case *tcell.EventFocus:
		return FocusEvent{Gained: ev.Focused}, true
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return nil, false
		}
		x, y := ev.Position()
		return PointerEvent{Pos: core.Point{X: float64(x), Y: float64(y)}}, true
	default:
		return nil, false
	}
}

func (t *Terminal) translateKey(ev *tcell.EventKey) (Event, bool) {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return QuitEvent{}, true
	case tcell.KeyRune:
		return InsertEvent{Text: string(ev.Rune())}, true
	case tcell.KeyEnter:
		return CommandEvent{Name: "insert_newline"}, true
	case tcell.KeyTab:
		return CommandEvent{Name: "insert_tab"}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return CommandEvent{Name: "delete_backward"}, true
	case tcell.KeyDelete:
		return CommandEvent{Name: "delete_forward"}, true
	case tcell.KeyUp:
		return CommandEvent{Name: "move_up"}, true
	case tcell.KeyDown:
		return CommandEvent{Name: "move_down"}, true
	case tcell.KeyLeft:
		return CommandEvent{Name: "move_left"}, true
	case tcell.KeyRight:
		return CommandEvent{Name: "move_right"}, true
	default:
		return nil, false
	}
}
