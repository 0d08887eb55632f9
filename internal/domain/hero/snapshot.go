package hero

import (
	"time"

	"github.com/edumarques81/stellar-hero/internal/domain/controls"
	"github.com/edumarques81/stellar-hero/internal/domain/overlay"
	"github.com/edumarques81/stellar-hero/internal/domain/player"
)

// Display is the rendered control readout derived from the media state.
type Display struct {
	Readout string  `json:"readout"` // "m:ss / m:ss"
	Fill    float64 `json:"fill"`    // progress fill in percent
}

// Snapshot is the full controller state pushed to the client.
type Snapshot struct {
	Session  string            `json:"session"`
	Media    player.Snapshot   `json:"media"`
	Controls controls.Snapshot `json:"controls"`
	Overlay  overlay.Snapshot  `json:"overlay"`
	Display  Display           `json:"display"`
}

func newDisplay(media player.Snapshot) Display {
	return Display{
		Readout: controls.FormatReadout(media.CurrentTime, media.Duration),
		Fill:    controls.FillPercent(media.CurrentTime, media.Duration),
	}
}

// snapshotEqual compares two snapshots for equality.
func snapshotEqual(a, b Snapshot) bool {
	return a.Session == b.Session &&
		a.Media == b.Media &&
		a.Controls.Visible == b.Controls.Visible &&
		deadlineEqual(a.Controls.HideDeadline, b.Controls.HideDeadline) &&
		a.Overlay == b.Overlay &&
		a.Display == b.Display
}

func deadlineEqual(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
