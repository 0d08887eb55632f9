package controls

import (
	"fmt"
	"math"
)

// ScrubFraction maps a pointer position on the progress track to a fraction
// of the duration, clamped to [0, 1].
func ScrubFraction(pointerX, trackLeft, trackWidth float64) float64 {
	if trackWidth <= 0 || math.IsNaN(pointerX) || math.IsNaN(trackLeft) {
		return 0
	}
	return clamp01((pointerX - trackLeft) / trackWidth)
}

// FillPercent returns the progress fill width in percent. It is 0 while the
// duration is unknown.
func FillPercent(current, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp01(current/duration) * 100
}

// FormatClock renders seconds as m:ss. Fractional seconds are truncated and
// minutes are not wrapped into hours.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatReadout renders the "current / duration" readout.
func FormatReadout(current, duration float64) string {
	return FormatClock(current) + " / " + FormatClock(duration)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
