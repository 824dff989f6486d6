// Package app wires the view core together and runs the event loop. The
// loop goroutine is the single owner of the line cache, the composition
// machine, and the viewport controller; backend pushes, blink ticks, and
// config reloads all cross into it through a posted-function channel.
package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/textview/internal/backend"
	"github.com/dshills/textview/internal/blink"
	"github.com/dshills/textview/internal/composition"
	"github.com/dshills/textview/internal/config"
	"github.com/dshills/textview/internal/core"
	"github.com/dshills/textview/internal/frontend"
	"github.com/dshills/textview/internal/layout"
	"github.com/dshills/textview/internal/linecache"
	"github.com/dshills/textview/internal/logging"
	"github.com/dshills/textview/internal/viewport"
)

// ErrQuit signals a clean user-requested exit.
var ErrQuit = errors.New("quit")

// Options configures application startup.
type Options struct {
	// ConfigPath is the TOML configuration file; empty means defaults.
	ConfigPath string

	// BackendPath is the document backend binary to spawn.
	BackendPath string

	// BackendArgs are passed to the backend binary.
	BackendArgs []string

	// Debug forces debug-level logging.
	Debug bool
}

// Frontend is the window-system surface the app drives; satisfied by
// *frontend.Terminal.
type Frontend interface {
	Events() <-chan frontend.Event
	Render(dl *viewport.DrawList)
	Size() (float64, float64)
	Close()
}

// App owns the event loop and the view core's components.
type App struct {
	opts Options
	cfg  config.Config
	log  *zap.Logger

	closeLog func()
	watcher  *config.Watcher

	cache    *linecache.Cache
	doc      *backend.Document
	client   *backend.Client
	composer *composition.Machine
	ctrl     *viewport.Controller
	blinker  *blink.Scheduler

	front        Frontend
	backendCmd   *exec.Cmd
	shutdownOnce sync.Once

	// loop carries cross-goroutine work onto the event loop.
	loop chan func()

	width, height float64
	repaint       bool
}

// New loads configuration and builds the loop-owned components. The backend
// connection and frontend are attached separately so tests can inject fakes.
func New(opts Options) (*App, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log, closeLog, err := logging.New(cfg.Log.Path, opts.Debug || cfg.Log.Debug)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:     opts,
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		cache:    linecache.New(),
		loop:     make(chan func(), 64),
	}
	a.blinker = blink.New(cfg.Caret.Interval(), func() {
		a.post(a.onBlink)
	})
	return a, nil
}

// Config returns the active configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// ConnectBackend attaches the command channel and builds the components that
// emit into it.
func (a *App) ConnectBackend(conn backend.Commander) {
	a.doc = backend.NewDocument(conn, a.log.Named("document"))
	a.composer = composition.New(a.doc, a.log.Named("composition"))
	a.ctrl = viewport.New(viewport.Params{
		Cache:    a.cache,
		Fetcher:  a.doc,
		Engine:   layout.NewFixedPitch(),
		Composer: a.composer,
		Blinker:  a.blinker,
		Metrics:  a.cfg.Metrics(),
		Log:      a.log.Named("viewport"),
	})
}

// SetFrontend attaches the window-system surface.
func (a *App) SetFrontend(f Frontend) {
	a.front = f
	a.width, a.height = f.Size()
}

// SpawnBackend starts the configured backend binary and connects to it.
func (a *App) SpawnBackend(ctx context.Context) error {
	if a.opts.BackendPath == "" {
		return errors.New("no backend binary configured")
	}
	client, cmd, err := backend.Spawn(ctx, a.opts.BackendPath, a.opts.BackendArgs, backend.Options{
		OnUpdate: a.PostUpdate,
		Log:      a.log.Named("backend"),
	})
	if err != nil {
		return err
	}
	a.client = client
	a.backendCmd = cmd
	a.ConnectBackend(client)
	return nil
}

// PostUpdate hands a backend push to the event loop. Safe to call from any
// goroutine.
func (a *App) PostUpdate(u backend.Update) {
	a.post(func() { a.applyUpdate(u) })
}

// Run drives the event loop until quit or frontend shutdown.
func (a *App) Run() error {
	if a.front == nil || a.ctrl == nil {
		return errors.New("app not fully wired: need frontend and backend")
	}

	if a.opts.ConfigPath != "" {
		w, err := config.Watch(a.opts.ConfigPath, func(cfg config.Config) {
			a.post(func() { a.applyConfig(cfg) })
		}, a.log.Named("config"))
		if err != nil {
			a.log.Warn("config watch unavailable", zap.Error(err))
		} else {
			a.watcher = w
		}
	}

	// Prime the first frame.
	a.requestRepaint()

	for {
		a.flushRepaint()
		select {
		case ev, ok := <-a.front.Events():
			if !ok {
				return nil
			}
			if err := a.handleEvent(ev); err != nil {
				return err
			}
		case fn := <-a.loop:
			fn()
		}
	}
}

// Shutdown releases everything. Idempotent: the signal handler and main's
// deferred call may both reach it.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.blinker.Stop()
		if a.watcher != nil {
			_ = a.watcher.Close()
		}
		if a.front != nil {
			a.front.Close()
		}
		if a.client != nil {
			_ = a.client.Close()
		}
		if a.backendCmd != nil {
			_ = a.backendCmd.Wait()
		}
		if a.closeLog != nil {
			a.closeLog()
		}
	})
}

// post schedules fn on the event loop from any goroutine.
func (a *App) post(fn func()) {
	a.loop <- fn
}

// handleEvent routes one frontend event.
func (a *App) handleEvent(ev frontend.Event) error {
	switch ev := ev.(type) {
	case frontend.PaintEvent:
		a.front.Render(a.ctrl.Paint(ev.Dirty))
	case frontend.InsertEvent:
		a.composer.InsertText(ev.Text, core.RangeNone)
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.SetMarkedEvent:
		a.composer.SetMarkedText(ev.Text, ev.Selected, ev.Replacement)
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.UnmarkEvent:
		a.composer.UnmarkText()
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.RemoveMarkedEvent:
		a.composer.RemoveMarkedText()
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.CommandEvent:
		a.doc.SendNamed(ev.Name)
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.FocusEvent:
		a.ctrl.SetFocus(ev.Gained)
		a.requestRepaint()
	case frontend.PointerEvent:
		pos := a.ctrl.PositionForPoint(ev.Pos)
		a.doc.PointSelect(pos.Line, pos.Column)
		a.ctrl.CaretMoved()
		a.requestRepaint()
	case frontend.ResizeEvent:
		a.width, a.height = ev.Width, ev.Height
		a.requestRepaint()
	case frontend.QuitEvent:
		return ErrQuit
	default:
		return fmt.Errorf("unhandled frontend event %T", ev)
	}
	return nil
}

// applyUpdate stores pushed lines and schedules a repaint. Runs on the loop.
func (a *App) applyUpdate(u backend.Update) {
	if a.doc != nil && u.ViewID != "" && u.ViewID != a.doc.ViewID() {
		a.log.Debug("update for foreign view dropped", zap.String("view", u.ViewID))
		return
	}
	for i, line := range u.Lines {
		a.cache.Put(u.First+i, line)
	}
	a.ctrl.ContentChanged()
	a.requestRepaint()
}

// applyConfig swaps in a reloaded configuration. Runs on the loop.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	a.ctrl.SetMetrics(cfg.Metrics())
	a.requestRepaint()
}

// onBlink advances the blink phase. Runs on the loop.
func (a *App) onBlink() {
	a.blinker.Toggle()
	a.requestRepaint()
}

// requestRepaint marks the frame dirty; flushRepaint coalesces bursts of
// events into one paint.
func (a *App) requestRepaint() {
	a.repaint = true
}

// flushRepaint paints the full view if anything changed since the last
// flush.
func (a *App) flushRepaint() {
	if !a.repaint || a.front == nil || a.ctrl == nil {
		return
	}
	a.repaint = false
	a.front.Render(a.ctrl.Paint(core.Rect{X: 0, Y: 0, W: a.width, H: a.height}))
}
