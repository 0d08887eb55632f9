// Package overlay holds the full-screen external video handoff state.
package overlay

import (
	"net/url"
	"sync"
)

// DefaultEmbedBase is the embed endpoint the external video ID is appended to.
const DefaultEmbedBase = "https://www.youtube.com/embed/"

// Snapshot is a copy of the overlay state.
type Snapshot struct {
	Active   bool   `json:"active"`
	EmbedURL string `json:"embedUrl,omitempty"`
}

// Overlay tracks whether the external video surface is displayed. The
// external surface has its own playback and shares no state with the hero media.
type Overlay struct {
	videoID   string
	embedBase string

	mu     sync.Mutex
	active bool
}

// New creates a closed overlay for the given external video ID.
func New(videoID string) *Overlay {
	return &Overlay{
		videoID:   videoID,
		embedBase: DefaultEmbedBase,
	}
}

// Open shows the overlay. Returns false if it was already open.
func (o *Overlay) Open() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active {
		return false
	}
	o.active = true
	return true
}

// Close hides the overlay. Returns false if it was already closed.
func (o *Overlay) Close() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.active {
		return false
	}
	o.active = false
	return true
}

// Active reports whether the overlay is displayed and capturing input.
func (o *Overlay) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// EmbedURL returns the autoplaying embed URL of the external video.
func (o *Overlay) EmbedURL() string {
	if o.videoID == "" {
		return ""
	}
	return o.embedBase + url.PathEscape(o.videoID) + "?autoplay=1"
}

// Snapshot returns a copy of the overlay state. The embed URL is only
// included while the overlay is active.
func (o *Overlay) Snapshot() Snapshot {
	snap := Snapshot{Active: o.Active()}
	if snap.Active {
		snap.EmbedURL = o.EmbedURL()
	}
	return snap
}
