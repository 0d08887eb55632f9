// Package player provides the playback state machine for the hero media element.
package player

import "sync"

// Status constants for the playing axis of the state.
const (
	StatusPlay  = "play"
	StatusPause = "pause"
)

// Snapshot is an immutable copy of the media state.
type Snapshot struct {
	Status      string  `json:"status"`
	Playing     bool    `json:"playing"`
	Muted       bool    `json:"muted"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// State represents the current media state.
// It is safe for concurrent access.
type State struct {
	mu sync.RWMutex

	Playing bool
	Muted   bool

	// CurrentTime and Duration are in seconds. Duration is 0 until metadata is known.
	CurrentTime float64
	Duration    float64
}

// NewState creates the mount-time state: autoplaying and muted.
func NewState() *State {
	return &State{
		Playing: true,
		Muted:   true,
	}
}

// SetPlaying sets the playing axis. Returns false if nothing changed.
func (s *State) SetPlaying(playing bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Playing == playing {
		return false
	}
	s.Playing = playing
	return true
}

// SetMuted sets the muted axis. Returns false if nothing changed.
func (s *State) SetMuted(muted bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Muted == muted {
		return false
	}
	s.Muted = muted
	return true
}

// UpdateTime sets the current time, clamped to [0, duration] once duration is known.
func (s *State) UpdateTime(t float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = clampTime(t, s.Duration)
	if s.CurrentTime == t {
		return false
	}
	s.CurrentTime = t
	return true
}

// UpdateDuration sets the duration and re-clamps the current time against it.
func (s *State) UpdateDuration(d float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	if s.Duration == d {
		return false
	}
	s.Duration = d
	s.CurrentTime = clampTime(s.CurrentTime, d)
	return true
}

// Snapshot returns a copy of the state suitable for JSON serialization.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := StatusPause
	if s.Playing {
		status = StatusPlay
	}
	return Snapshot{
		Status:      status,
		Playing:     s.Playing,
		Muted:       s.Muted,
		CurrentTime: s.CurrentTime,
		Duration:    s.Duration,
	}
}

func clampTime(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if duration > 0 && t > duration {
		return duration
	}
	return t
}
