package player

import (
	"testing"
	"time"
)

func TestMemoryElementAdvanceLoops(t *testing.T) {
	el := NewMemoryElement(10)
	var last float64
	el.OnTime(func(s float64) { last = s })

	el.Advance(3 * time.Second)
	if last != 0 {
		t.Errorf("paused element should not advance, got %v", last)
	}

	if err := el.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	el.Advance(4 * time.Second)
	el.Advance(8 * time.Second)

	if last != 2 {
		t.Errorf("expected playhead to wrap to 2, got %v", last)
	}
}

func TestMemoryElementLoadReportsDuration(t *testing.T) {
	el := NewMemoryElement(42)
	var got float64
	el.OnDuration(func(d float64) { got = d })

	el.Load()

	if got != 42 {
		t.Errorf("expected duration 42, got %v", got)
	}
}

func TestMemoryElementSetTimeClamps(t *testing.T) {
	el := NewMemoryElement(10)

	_ = el.SetTime(99)
	if el.CurrentTime() != 10 {
		t.Errorf("expected clamp to 10, got %v", el.CurrentTime())
	}
	_ = el.SetTime(-1)
	if el.CurrentTime() != 0 {
		t.Errorf("expected clamp to 0, got %v", el.CurrentTime())
	}
}
