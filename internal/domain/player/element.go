package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MediaElement is the narrow adapter over the single media element a
// controller owns. Commands flow in through Play/Pause/SetMuted/SetTime;
// progress and metadata flow out through the registered callbacks.
type MediaElement interface {
	Play() error
	Pause() error
	SetMuted(muted bool) error
	SetTime(seconds float64) error
	OnTime(fn func(seconds float64))
	OnDuration(fn func(seconds float64))
}

// ErrPlaybackBlocked is returned by MemoryElement.Play while blocking is enabled.
var ErrPlaybackBlocked = errors.New("playback blocked by autoplay policy")

// MemoryElement is an in-process media element that loops a single source.
// It is used by the development media backend and by tests.
type MemoryElement struct {
	mu        sync.Mutex
	paused    bool
	muted     bool
	current   float64
	duration  float64
	blockPlay bool
	calls     []string

	onTime     func(float64)
	onDuration func(float64)
}

// NewMemoryElement creates a paused element. A positive duration is reported
// as metadata on the next Load call.
func NewMemoryElement(duration float64) *MemoryElement {
	return &MemoryElement{
		paused:   true,
		duration: duration,
	}
}

// Load announces the source metadata, like a loadedmetadata event.
func (e *MemoryElement) Load() {
	e.mu.Lock()
	d := e.duration
	fn := e.onDuration
	e.mu.Unlock()

	if fn != nil {
		fn(d)
	}
}

// BlockPlay makes subsequent Play calls fail, simulating an autoplay policy.
func (e *MemoryElement) BlockPlay(block bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blockPlay = block
}

// Play resumes playback.
func (e *MemoryElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, "play")
	if e.blockPlay {
		return ErrPlaybackBlocked
	}
	e.paused = false
	return nil
}

// Pause pauses playback.
func (e *MemoryElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, "pause")
	e.paused = true
	return nil
}

// SetMuted sets the muted flag.
func (e *MemoryElement) SetMuted(muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if muted {
		e.calls = append(e.calls, "mute")
	} else {
		e.calls = append(e.calls, "unmute")
	}
	e.muted = muted
	return nil
}

// SetTime moves the playhead and emits a time update.
func (e *MemoryElement) SetTime(seconds float64) error {
	e.mu.Lock()
	e.calls = append(e.calls, "seek")
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.current = seconds
	fn := e.onTime
	e.mu.Unlock()

	if fn != nil {
		fn(seconds)
	}
	return nil
}

// OnTime registers the time update callback.
func (e *MemoryElement) OnTime(fn func(float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTime = fn
}

// OnDuration registers the metadata callback.
func (e *MemoryElement) OnDuration(fn func(float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDuration = fn
}

// Advance moves the playhead forward by d while playing, wrapping at the end
// of the source, and emits a time update.
func (e *MemoryElement) Advance(d time.Duration) {
	e.mu.Lock()
	if e.paused || e.duration <= 0 {
		e.mu.Unlock()
		return
	}
	e.current = math.Mod(e.current+d.Seconds(), e.duration)
	t := e.current
	fn := e.onTime
	e.mu.Unlock()

	if fn != nil {
		fn(t)
	}
}

// Run advances the element on every tick of the clock until ctx is done.
func (e *MemoryElement) Run(ctx context.Context, clock clockwork.Clock, interval time.Duration) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			e.Advance(interval)
		}
	}
}

// Paused reports whether the element is paused.
func (e *MemoryElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Muted reports whether the element is muted.
func (e *MemoryElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// CurrentTime returns the playhead position in seconds.
func (e *MemoryElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Calls returns the commands received so far, in order.
func (e *MemoryElement) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// ResetCalls clears the recorded commands.
func (e *MemoryElement) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}
