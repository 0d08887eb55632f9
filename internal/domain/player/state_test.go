package player_test

import (
	"testing"

	"github.com/edumarques81/stellar-hero/internal/domain/player"
)

func TestNewState(t *testing.T) {
	state := player.NewState()

	if !state.Playing {
		t.Error("expected playing to be true on mount")
	}
	if !state.Muted {
		t.Error("expected muted to be true on mount")
	}
	if state.CurrentTime != 0 || state.Duration != 0 {
		t.Errorf("expected zero time and duration, got %v/%v", state.CurrentTime, state.Duration)
	}
}

func TestStateSetPlayingIdempotent(t *testing.T) {
	state := player.NewState()

	if state.SetPlaying(true) {
		t.Error("expected no change when already playing")
	}
	if !state.SetPlaying(false) {
		t.Error("expected change when pausing")
	}
	if state.SetPlaying(false) {
		t.Error("expected no change on second pause")
	}
}

func TestStateUpdateTime(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		time     float64
		expected float64
	}{
		{"unknown duration keeps value", 0, 42, 42},
		{"negative clamps to zero", 100, -3, 0},
		{"within range", 100, 12.5, 12.5},
		{"past end clamps to duration", 100, 140, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := player.NewState()
			state.UpdateDuration(tt.duration)
			state.UpdateTime(tt.time)

			if state.CurrentTime != tt.expected {
				t.Errorf("expected current time %v, got %v", tt.expected, state.CurrentTime)
			}
		})
	}
}

func TestStateUpdateDurationReclampsTime(t *testing.T) {
	state := player.NewState()
	state.UpdateTime(90)
	state.UpdateDuration(60)

	if state.CurrentTime != 60 {
		t.Errorf("expected current time clamped to 60, got %v", state.CurrentTime)
	}
}

func TestStateSnapshot(t *testing.T) {
	state := player.NewState()
	state.SetPlaying(false)
	state.UpdateDuration(30)
	state.UpdateTime(10)

	snap := state.Snapshot()

	if snap.Status != player.StatusPause {
		t.Errorf("expected status %q, got %q", player.StatusPause, snap.Status)
	}
	if snap.Playing || !snap.Muted {
		t.Errorf("unexpected axes in snapshot: %+v", snap)
	}
	if snap.CurrentTime != 10 || snap.Duration != 30 {
		t.Errorf("unexpected times in snapshot: %+v", snap)
	}
}
