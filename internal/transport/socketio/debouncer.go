package socketio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edumarques81/stellar-hero/internal/domain/hero"
)

// DefaultPushWindow bounds how often a session receives pushState.
const DefaultPushWindow = 100 * time.Millisecond

// PushDebouncer coalesces controller snapshots into at most one push per
// window. The first snapshot opens the window; later ones replace it, and the
// latest is pushed when the window closes. Unlike a trailing debounce, a
// steady stream of time updates still produces a push every window.
type PushDebouncer struct {
	window time.Duration
	clock  clockwork.Clock
	push   func(hero.Snapshot)

	mu      sync.Mutex
	pending *hero.Snapshot
	timer   clockwork.Timer
	stopped bool
}

// NewPushDebouncer creates a debouncer calling push with the latest snapshot.
func NewPushDebouncer(window time.Duration, clock clockwork.Clock, push func(hero.Snapshot)) *PushDebouncer {
	if window <= 0 {
		window = DefaultPushWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PushDebouncer{
		window: window,
		clock:  clock,
		push:   push,
	}
}

// Trigger records snap as the state to push.
func (d *PushDebouncer) Trigger(snap hero.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = &snap
	if d.timer == nil {
		d.timer = d.clock.AfterFunc(d.window, d.flush)
	}
}

// Flush pushes any pending snapshot immediately.
func (d *PushDebouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.flush()
}

func (d *PushDebouncer) flush() {
	d.mu.Lock()
	snap := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if snap != nil && !stopped && d.push != nil {
		d.push(*snap)
	}
}

// Stop prevents any further pushes.
func (d *PushDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
