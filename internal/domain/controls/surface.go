// Package controls manages the transient control surface over the hero media:
// its auto-hide timer, scrub geometry and time readout.
package controls

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultHideAfter is how long the surface stays up after a tap.
const DefaultHideAfter = 10 * time.Second

// Snapshot is a copy of the surface state.
type Snapshot struct {
	Visible      bool       `json:"visible"`
	HideDeadline *time.Time `json:"hideDeadline,omitempty"`
}

// Surface toggles control visibility on taps and hides it again after a delay.
// At most one hide timer is outstanding; arming always cancels the previous one.
type Surface struct {
	clock clockwork.Clock
	delay time.Duration
	post  func(func())

	mu       sync.Mutex
	visible  bool
	deadline time.Time
	timer    clockwork.Timer
	gen      uint64
	stopped  bool
}

// NewSurface creates a hidden surface. post receives timer expiries so the
// owner can run them on its own event loop; nil runs them on the timer goroutine.
func NewSurface(clock clockwork.Clock, delay time.Duration, post func(func())) *Surface {
	if delay <= 0 {
		delay = DefaultHideAfter
	}
	return &Surface{
		clock: clock,
		delay: delay,
		post:  post,
	}
}

// Tap handles a gesture on the media surface. A tap while visible hides
// immediately; a tap while hidden shows the surface and arms the hide timer.
// Returns the resulting visibility.
func (s *Surface) Tap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	if s.visible {
		s.visible = false
		s.cancelLocked()
		return false
	}

	s.visible = true
	s.armLocked()
	return true
}

// Visible reports whether the surface is shown.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Pending reports whether a hide timer is outstanding.
func (s *Surface) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Snapshot returns a copy of the surface state.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Visible: s.visible}
	if !s.deadline.IsZero() {
		d := s.deadline
		snap.HideDeadline = &d
	}
	return snap
}

// Stop cancels the pending timer and rejects further taps. Called on unmount.
func (s *Surface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.visible = false
	s.cancelLocked()
}

func (s *Surface) armLocked() {
	s.cancelLocked()

	gen := s.gen
	s.deadline = s.clock.Now().Add(s.delay)
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

// cancelLocked stops the outstanding timer and invalidates any expiry already
// in flight.
func (s *Surface) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
	s.gen++
}

func (s *Surface) fire(gen uint64) {
	if s.post == nil {
		s.expire(gen)
		return
	}
	s.post(func() { s.expire(gen) })
}

func (s *Surface) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.timer == nil || gen != s.gen {
		return
	}

	s.visible = false
	s.timer = nil
	s.deadline = time.Time{}
	log.Debug().Msg("Controls auto-hidden")
}
