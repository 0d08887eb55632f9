// Package carousel rotates the landing page hero slides.
package carousel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is the time each slide stays up.
const DefaultInterval = 5 * time.Second

// ErrSlideNotFound is returned for an index outside the slide list.
var ErrSlideNotFound = errors.New("slide not found")

// Slide is one carousel image.
type Slide struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Path  string `json:"-"`
}

// State is the carousel as rendered by the client.
type State struct {
	Index  int     `json:"index"`
	Slides []Slide `json:"slides"`
}

// Rotator advances through the slides on a fixed interval.
type Rotator struct {
	slides   []Slide
	interval time.Duration
	clock    clockwork.Clock

	mu       sync.Mutex
	index    int
	onChange func(int)
}

// NewRotator creates a rotator starting at the first slide.
func NewRotator(slides []Slide, interval time.Duration, clock clockwork.Clock) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	for i := range slides {
		slides[i].Index = i
	}
	return &Rotator{
		slides:   slides,
		interval: interval,
		clock:    clock,
	}
}

// OnChange registers a callback receiving the new index after every change.
func (r *Rotator) OnChange(fn func(int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Current returns the displayed slide index.
func (r *Rotator) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// State returns the current index with the slide list.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	slides := make([]Slide, len(r.slides))
	copy(slides, r.slides)
	return State{Index: r.index, Slides: slides}
}

// Slide returns the slide at index i.
func (r *Rotator) Slide(i int) (Slide, error) {
	if i < 0 || i >= len(r.slides) {
		return Slide{}, ErrSlideNotFound
	}
	return r.slides[i], nil
}

// Next advances to the following slide, wrapping at the end. With fewer
// than two slides nothing changes and no change is reported.
func (r *Rotator) Next() int {
	r.mu.Lock()
	if len(r.slides) < 2 {
		idx := r.index
		r.mu.Unlock()
		return idx
	}
	r.index = (r.index + 1) % len(r.slides)
	idx := r.index
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(idx)
	}
	return idx
}

// Select jumps to slide i. The rotation interval is not reset.
func (r *Rotator) Select(i int) error {
	r.mu.Lock()
	if i < 0 || i >= len(r.slides) {
		r.mu.Unlock()
		return ErrSlideNotFound
	}
	changed := r.index != i
	r.index = i
	fn := r.onChange
	r.mu.Unlock()

	if changed && fn != nil {
		fn(i)
	}
	return nil
}

// Run advances the carousel every interval until ctx is done.
func (r *Rotator) Run(ctx context.Context) {
	if len(r.slides) < 2 {
		return
	}

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Int("slides", len(r.slides)).Dur("interval", r.interval).Msg("Carousel rotation started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Carousel rotation stopped")
			return
		case <-ticker.Chan():
			r.Next()
		}
	}
}
