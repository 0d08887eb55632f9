// Package hero provides the viewport-aware playback controller for the
// profile hero media. One controller exists per mounted page session.
package hero

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-hero/internal/domain/controls"
	"github.com/edumarques81/stellar-hero/internal/domain/overlay"
	"github.com/edumarques81/stellar-hero/internal/domain/player"
	"github.com/edumarques81/stellar-hero/internal/domain/visibility"
)

// ErrUnmounted is returned when dispatching to a controller that is not mounted.
var ErrUnmounted = errors.New("controller is not mounted")

const queueSize = 64

// EventKind names an input to the controller.
type EventKind int

const (
	// EventViewport carries an intersection ratio of the media surface.
	EventViewport EventKind = iota
	// EventTap is a gesture on the media surface outside any control widget.
	EventTap
	EventTogglePlay
	EventToggleMute
	// EventSeek carries a fraction of the duration.
	EventSeek
	EventOpenOverlay
	EventCloseOverlay
	// EventTime and EventDuration are media element notifications.
	EventTime
	EventDuration
)

var eventNames = map[EventKind]string{
	EventViewport:     "viewport",
	EventTap:          "tap",
	EventTogglePlay:   "togglePlay",
	EventToggleMute:   "toggleMute",
	EventSeek:         "seek",
	EventOpenOverlay:  "openOverlay",
	EventCloseOverlay: "closeOverlay",
	EventTime:         "timeupdate",
	EventDuration:     "loadedmetadata",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one input to the controller.
type Event struct {
	Kind  EventKind
	Value float64
}

// Config configures a controller.
type Config struct {
	// OverlayVideo is the external video ID shown by the overlay.
	OverlayVideo string
	// HideAfter is the control surface auto-hide delay.
	HideAfter time.Duration
	// VisibilityThreshold is the visible fraction counting as in view.
	VisibilityThreshold float64
	// PauseOnOverlay pauses the hero media while the overlay is open.
	PauseOnOverlay bool
	Clock          clockwork.Clock
}

type envelope struct {
	event Event
	fn    func()
	reply chan Snapshot
}

// Controller funnels visibility changes, user gestures, media notifications
// and timer expiries through a single FIFO event loop. Handlers never run
// concurrently, so the subsystems need no coordination of their own.
type Controller struct {
	id      string
	cfg     Config
	element player.MediaElement

	media   *player.Service
	surface *controls.Surface
	monitor *visibility.Monitor
	overlay *overlay.Overlay

	queue   chan envelope
	done    chan struct{}
	stopped chan struct{}

	mu       sync.Mutex
	mounted  bool
	finished bool
	onChange func(Snapshot)

	// Owned by the loop goroutine.
	last          Snapshot
	overlayPaused bool
}

// New creates an unmounted controller owning element.
func New(id string, element player.MediaElement, cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.HideAfter <= 0 {
		cfg.HideAfter = controls.DefaultHideAfter
	}

	c := &Controller{
		id:      id,
		cfg:     cfg,
		element: element,
		media:   player.NewService(element),
		overlay: overlay.New(cfg.OverlayVideo),
		queue:   make(chan envelope, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	c.surface = controls.NewSurface(cfg.Clock, cfg.HideAfter, c.post)
	c.monitor = visibility.NewMonitor(c.media, cfg.VisibilityThreshold)
	return c
}

// ID returns the session ID the controller was created for.
func (c *Controller) ID() string {
	return c.id
}

// OnChange registers a callback invoked on the loop goroutine after every
// event that changed the snapshot. Set it before Mount.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Mount subscribes to the element, starts the event loop and autoplays the
// media muted.
func (c *Controller) Mount() error {
	c.mu.Lock()
	if c.mounted || c.finished {
		c.mu.Unlock()
		return errors.New("controller already mounted")
	}
	c.mounted = true
	c.mu.Unlock()

	c.element.OnTime(func(t float64) {
		// Time updates are superseded by the next one, so a saturated
		// queue drops them rather than blocking the element.
		select {
		case c.queue <- envelope{event: Event{Kind: EventTime, Value: t}}:
		default:
			log.Debug().Str("session", c.id).Msg("Dropped time update")
		}
	})
	c.element.OnDuration(func(d float64) {
		_ = c.Dispatch(Event{Kind: EventDuration, Value: d})
	})
	c.monitor.Attach()

	go c.run()

	c.post(c.media.Start)

	log.Info().Str("session", c.id).Msg("Hero controller mounted")
	return nil
}

// Unmount tears the controller down: the visibility subscription is detached,
// the hide timer cancelled and the loop stopped. Safe to call more than once.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted || c.finished {
		c.finished = true
		c.mu.Unlock()
		return
	}
	c.finished = true
	c.mu.Unlock()

	c.monitor.Detach()
	close(c.done)
	<-c.stopped
	c.surface.Stop()

	c.element.OnTime(nil)
	c.element.OnDuration(nil)
	if closer, ok := c.element.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Str("session", c.id).Msg("Failed to release media element")
		}
	}

	log.Info().Str("session", c.id).Msg("Hero controller unmounted")
}

// Dispatch queues an event. Events are handled in the order they are dispatched.
func (c *Controller) Dispatch(e Event) error {
	if !c.isMounted() {
		return ErrUnmounted
	}
	select {
	case c.queue <- envelope{event: e}:
		return nil
	case <-c.done:
		return ErrUnmounted
	}
}

// Snapshot returns the controller state after every previously dispatched
// event has been handled.
func (c *Controller) Snapshot() (Snapshot, error) {
	if !c.isMounted() {
		return Snapshot{}, ErrUnmounted
	}

	reply := make(chan Snapshot, 1)
	select {
	case c.queue <- envelope{reply: reply}:
	case <-c.done:
		return Snapshot{}, ErrUnmounted
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-c.done:
		return Snapshot{}, ErrUnmounted
	}
}

func (c *Controller) isMounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted && !c.finished
}

// post runs fn on the loop. Work posted after unmount is dropped.
func (c *Controller) post(fn func()) {
	select {
	case c.queue <- envelope{fn: fn}:
	case <-c.done:
	}
}

func (c *Controller) run() {
	defer close(c.stopped)

	for {
		select {
		case <-c.done:
			return
		case env := <-c.queue:
			c.handle(env)
		}
	}
}

func (c *Controller) handle(env envelope) {
	if env.reply != nil {
		env.reply <- c.snapshot()
		return
	}

	if env.fn != nil {
		env.fn()
	} else {
		c.apply(env.event)
	}

	snap := c.snapshot()
	if snapshotEqual(snap, c.last) {
		return
	}
	c.last = snap

	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (c *Controller) apply(e Event) {
	switch e.Kind {
	case EventViewport:
		c.monitor.Observe(visibility.Entry{Ratio: e.Value})
	case EventTime:
		c.media.ReportTime(e.Value)
	case EventDuration:
		c.media.ReportDuration(e.Value)
	case EventOpenOverlay:
		if c.overlay.Open() && c.cfg.PauseOnOverlay {
			c.overlayPaused = c.media.Pause()
		}
	case EventCloseOverlay:
		if c.overlay.Close() && c.overlayPaused {
			c.overlayPaused = false
			// Resume only in view; otherwise entering view plays it.
			if inView, known := c.monitor.InView(); inView || !known {
				c.media.Play()
			}
		}
	default:
		c.applyUser(e)
	}
}

// applyUser handles gestures on the page behind the overlay. They are
// dropped while the overlay captures input.
func (c *Controller) applyUser(e Event) {
	if c.overlay.Active() {
		log.Debug().Str("session", c.id).Stringer("event", e.Kind).Msg("Input captured by overlay")
		return
	}

	switch e.Kind {
	case EventTap:
		c.surface.Tap()
	case EventTogglePlay:
		c.media.TogglePlay()
	case EventToggleMute:
		c.media.ToggleMute()
	case EventSeek:
		c.media.Seek(e.Value)
	default:
		log.Warn().Str("session", c.id).Int("kind", int(e.Kind)).Msg("Unknown controller event")
	}
}

func (c *Controller) snapshot() Snapshot {
	media := c.media.Snapshot()
	return Snapshot{
		Session:  c.id,
		Media:    media,
		Controls: c.surface.Snapshot(),
		Overlay:  c.overlay.Snapshot(),
		Display:  newDisplay(media),
	}
}
