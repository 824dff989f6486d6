// Package blink provides the caret blink scheduler: a periodic toggle that
// is cheap to cancel and restart. Focus changes, content changes, and caret
// moves all restart it with the caret solid, so a fast-enough typist keeps
// the caret visible.
package blink

import "time"

// DefaultInterval is the caret blink half-period.
const DefaultInterval = 500 * time.Millisecond

// Scheduler toggles caret visibility on a fixed interval. The timer callback
// runs off the event loop, so fire must only post an event; the loop then
// calls Toggle. All other methods are event-loop-only.
type Scheduler struct {
	interval time.Duration
	timer    *time.Timer
	visible  bool
	running  bool
	enabled  bool
}

// New creates a stopped scheduler. fire is invoked from the timer goroutine
// each half-period while running. A non-positive interval disables blinking
// entirely; the caret stays solid.
func New(interval time.Duration, fire func()) *Scheduler {
	enabled := interval > 0
	if !enabled {
		interval = DefaultInterval
	}
	t := time.AfterFunc(interval, fire)
	t.Stop()
	return &Scheduler{
		interval: interval,
		timer:    t,
		visible:  true,
		enabled:  enabled,
	}
}

// Start begins blinking with the caret visible.
func (s *Scheduler) Start() {
	if !s.enabled {
		return
	}
	s.running = true
	s.visible = true
	s.timer.Reset(s.interval)
}

// Stop cancels the timer and leaves the caret solid.
func (s *Scheduler) Stop() {
	s.running = false
	s.visible = true
	s.timer.Stop()
}

// Restart forces the caret visible and resets the blink phase. O(1).
func (s *Scheduler) Restart() {
	s.visible = true
	if !s.enabled {
		return
	}
	s.running = true
	s.timer.Reset(s.interval)
}

// Toggle flips visibility and re-arms the timer. Called by the event loop
// when a fire event arrives; a fire that raced a Stop is ignored.
func (s *Scheduler) Toggle() {
	if !s.running {
		return
	}
	s.visible = !s.visible
	s.timer.Reset(s.interval)
}

// Visible reports whether the caret should currently be drawn.
func (s *Scheduler) Visible() bool {
	return s.visible
}

// Running reports whether the scheduler is active.
func (s *Scheduler) Running() bool {
	return s.running
}
