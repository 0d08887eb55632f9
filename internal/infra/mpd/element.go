package mpd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often the element reports the playhead.
const DefaultPollInterval = 250 * time.Millisecond

// ErrNoMixer is returned when muting is requested but MPD has no volume control.
var ErrNoMixer = errors.New("MPD has no mixer")

// ErrNotOwner is returned through a lease that a newer claim superseded.
var ErrNotOwner = errors.New("media element claimed by another session")

// Backend is the subset of Client used by Element.
type Backend interface {
	Status() (mpd.Attrs, error)
	Play(pos int) error
	Pause(pause bool) error
	SeekCur(seconds float64) error
	SetVolume(vol int) error
	SetRepeat(on bool) error
	SetSingle(on bool) error
	Clear() error
	Add(uri string) error
}

// Element plays a single looping source on MPD and satisfies the hero's
// media element contract. Mute is emulated by zeroing the mixer volume and
// restoring it on unmute.
type Element struct {
	backend Backend
	uri     string

	mu           sync.Mutex
	muted        bool
	savedVolume  int
	lastDuration float64
	onTime       func(float64)
	onDuration   func(float64)
	owner        uint64
}

// NewElement creates an element playing uri through backend.
func NewElement(backend Backend, uri string) *Element {
	return &Element{
		backend:     backend,
		uri:         uri,
		savedVolume: 100,
	}
}

// Load replaces the queue with the hero source and enables looping.
func (e *Element) Load() error {
	if err := e.backend.Clear(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	if err := e.backend.Add(e.uri); err != nil {
		return fmt.Errorf("failed to add %s: %w", e.uri, err)
	}
	if err := e.backend.SetRepeat(true); err != nil {
		return fmt.Errorf("failed to enable repeat: %w", err)
	}
	if err := e.backend.SetSingle(true); err != nil {
		return fmt.Errorf("failed to enable single: %w", err)
	}

	log.Info().Str("uri", e.uri).Msg("Hero media loaded")
	return nil
}

// Play starts the source or resumes it.
func (e *Element) Play() error {
	status, err := e.backend.Status()
	if err != nil {
		return err
	}
	if status["state"] == "stop" {
		return e.backend.Play(0)
	}
	return e.backend.Pause(false)
}

// Pause pauses playback.
func (e *Element) Pause() error {
	return e.backend.Pause(true)
}

// SetMuted zeroes or restores the mixer volume.
func (e *Element) SetMuted(muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if muted == e.muted {
		return nil
	}

	if muted {
		status, err := e.backend.Status()
		if err != nil {
			return err
		}
		vol, err := strconv.Atoi(status["volume"])
		if err != nil || vol < 0 {
			return ErrNoMixer
		}
		if vol > 0 {
			e.savedVolume = vol
		}
		if err := e.backend.SetVolume(0); err != nil {
			return err
		}
		e.muted = true
		return nil
	}

	if err := e.backend.SetVolume(e.savedVolume); err != nil {
		return err
	}
	e.muted = false
	return nil
}

// SetTime seeks to an absolute position in seconds.
func (e *Element) SetTime(seconds float64) error {
	return e.backend.SeekCur(seconds)
}

// OnTime registers the time update callback.
func (e *Element) OnTime(fn func(float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTime = fn
}

// OnDuration registers the metadata callback.
func (e *Element) OnDuration(fn func(float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDuration = fn
	e.lastDuration = 0
}

// Refresh reads the MPD status and emits a time update, plus a duration
// notification when the duration changed.
func (e *Element) Refresh() error {
	status, err := e.backend.Status()
	if err != nil {
		return err
	}

	elapsed, elapsedOK := parseSeconds(status["elapsed"])
	duration, durationOK := parseSeconds(status["duration"])

	e.mu.Lock()
	onTime := e.onTime
	var onDuration func(float64)
	if durationOK && duration != e.lastDuration {
		e.lastDuration = duration
		onDuration = e.onDuration
	}
	e.mu.Unlock()

	if onDuration != nil {
		onDuration(duration)
	}
	if elapsedOK && onTime != nil {
		onTime(elapsed)
	}
	return nil
}

// Run polls the status on every tick and on every player subsystem event
// until ctx is done. events may be nil.
func (e *Element) Run(ctx context.Context, clock clockwork.Clock, interval time.Duration, events <-chan string) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
		}
		if err := e.Refresh(); err != nil {
			log.Debug().Err(err).Msg("MPD status refresh failed")
		}
	}
}

// Close pauses playback when the owning controller goes away.
func (e *Element) Close() error {
	return e.backend.Pause(true)
}

// Claim hands the element to a new owner and drops the callbacks of the
// previous one.
func (e *Element) Claim() *Lease {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.owner++
	e.onTime = nil
	e.onDuration = nil
	e.lastDuration = 0
	return &Lease{element: e, token: e.owner}
}

// Lease is one owner's handle on a shared Element. Once another claim is
// made, or the lease is closed, its calls no longer reach MPD.
type Lease struct {
	element *Element
	token   uint64
}

func (l *Lease) owns() bool {
	l.element.mu.Lock()
	defer l.element.mu.Unlock()
	return l.element.owner == l.token
}

func (l *Lease) Play() error {
	if !l.owns() {
		return ErrNotOwner
	}
	return l.element.Play()
}

func (l *Lease) Pause() error {
	if !l.owns() {
		return ErrNotOwner
	}
	return l.element.Pause()
}

func (l *Lease) SetMuted(muted bool) error {
	if !l.owns() {
		return ErrNotOwner
	}
	return l.element.SetMuted(muted)
}

func (l *Lease) SetTime(seconds float64) error {
	if !l.owns() {
		return ErrNotOwner
	}
	return l.element.SetTime(seconds)
}

// OnTime registers fn if the lease still owns the element.
func (l *Lease) OnTime(fn func(float64)) {
	e := l.element
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner == l.token {
		e.onTime = fn
	}
}

// OnDuration registers fn if the lease still owns the element.
func (l *Lease) OnDuration(fn func(float64)) {
	e := l.element
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner == l.token {
		e.onDuration = fn
		e.lastDuration = 0
	}
}

// Close releases ownership and pauses playback. Closing a superseded lease
// leaves the current owner untouched.
func (l *Lease) Close() error {
	e := l.element
	e.mu.Lock()
	if e.owner != l.token {
		e.mu.Unlock()
		return nil
	}
	e.owner++
	e.onTime = nil
	e.onDuration = nil
	e.mu.Unlock()
	return e.Close()
}

func parseSeconds(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
