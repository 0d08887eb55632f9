// Package visibility gates hero playback on how much of the media surface is
// inside the viewport.
package visibility

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultThreshold is the visible fraction at which the media counts as in view.
const DefaultThreshold = 0.25

// Entry is one intersection observation of the media surface.
type Entry struct {
	// Ratio is the visible fraction of the surface, in [0, 1].
	Ratio float64 `json:"ratio"`
}

// Commander receives the coarse playback commands the monitor issues.
// *player.Service satisfies it.
type Commander interface {
	Play() bool
	Pause() bool
	ForceMute() bool
}

// Monitor turns intersection observations into play/pause/mute commands.
// Leaving view pauses and mutes; entering view plays and leaves mute alone.
type Monitor struct {
	threshold float64
	target    Commander

	mu       sync.Mutex
	attached bool
	known    bool
	inView   bool
}

// NewMonitor creates a detached monitor. A threshold outside (0, 1] falls
// back to DefaultThreshold.
func NewMonitor(target Commander, threshold float64) *Monitor {
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return &Monitor{
		threshold: threshold,
		target:    target,
	}
}

// Threshold returns the in-view threshold.
func (m *Monitor) Threshold() float64 {
	return m.threshold
}

// Attach starts accepting observations.
func (m *Monitor) Attach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = true
}

// Detach stops accepting observations. Called on unmount.
func (m *Monitor) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = false
	m.known = false
}

// InView reports the last observed side of the threshold and whether any
// observation has been made.
func (m *Monitor) InView() (inView, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inView, m.known
}

// Observe applies one observation. Observations that stay on the same side of
// the threshold are no-ops. Returns whether a transition was issued.
func (m *Monitor) Observe(e Entry) bool {
	m.mu.Lock()
	if !m.attached || math.IsNaN(e.Ratio) {
		m.mu.Unlock()
		return false
	}

	inView := e.Ratio >= m.threshold
	if m.known && m.inView == inView {
		m.mu.Unlock()
		return false
	}
	m.known = true
	m.inView = inView
	m.mu.Unlock()

	if inView {
		log.Debug().Float64("ratio", e.Ratio).Msg("Media entered view")
		m.target.Play()
		return true
	}

	log.Debug().Float64("ratio", e.Ratio).Msg("Media left view")
	m.target.Pause()
	m.target.ForceMute()
	return true
}
