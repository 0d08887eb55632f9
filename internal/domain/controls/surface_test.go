package controls_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edumarques81/stellar-hero/internal/domain/controls"
)

// eventually polls cond until it holds or a second has passed. Fake clock
// timers may run their callbacks on a separate goroutine.
func eventually(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSurfaceTapShowsAndAutoHides(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := controls.NewSurface(clock, controls.DefaultHideAfter, nil)

	if !s.Tap() {
		t.Fatal("first tap should show the surface")
	}
	if !s.Pending() {
		t.Error("expected a pending hide timer")
	}

	snap := s.Snapshot()
	if snap.HideDeadline == nil || !snap.HideDeadline.Equal(clock.Now().Add(10*time.Second)) {
		t.Errorf("expected hide deadline 10s ahead, got %v", snap.HideDeadline)
	}

	clock.Advance(9 * time.Second)
	if !s.Visible() {
		t.Error("surface should still be visible before the deadline")
	}

	clock.Advance(time.Second)
	eventually(t, "surface should auto-hide after 10s", func() bool {
		return !s.Visible() && !s.Pending()
	})
}

func TestSurfaceSecondTapHidesImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := controls.NewSurface(clock, controls.DefaultHideAfter, nil)

	s.Tap()
	if s.Tap() {
		t.Error("second tap should hide the surface")
	}
	if s.Pending() {
		t.Error("expected no pending timer after second tap")
	}
	if s.Snapshot().HideDeadline != nil {
		t.Error("expected hide deadline cleared")
	}
}

func TestSurfaceStaleTimerDoesNotHideNewArm(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := controls.NewSurface(clock, controls.DefaultHideAfter, nil)

	s.Tap() // armed for t=10s
	clock.Advance(6 * time.Second)
	s.Tap() // hide
	s.Tap() // re-armed for t=16s

	clock.Advance(5 * time.Second) // t=11s, past the first deadline
	time.Sleep(20 * time.Millisecond)
	if !s.Visible() {
		t.Fatal("cancelled timer must not hide the re-armed surface")
	}

	clock.Advance(5 * time.Second) // t=16s
	eventually(t, "re-armed timer should hide the surface", func() bool {
		return !s.Visible()
	})
}

func TestSurfaceRunsExpiryThroughPoster(t *testing.T) {
	clock := clockwork.NewFakeClock()
	queue := make(chan func(), 1)
	s := controls.NewSurface(clock, time.Second, func(fn func()) { queue <- fn })

	s.Tap()
	clock.Advance(time.Second)

	var fn func()
	select {
	case fn = <-queue:
	case <-time.After(time.Second):
		t.Fatal("expiry was not posted")
	}

	if !s.Visible() {
		t.Error("surface should stay visible until the posted expiry runs")
	}
	fn()
	if s.Visible() {
		t.Error("surface should be hidden after the posted expiry runs")
	}
}

func TestSurfaceStopCancelsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := controls.NewSurface(clock, controls.DefaultHideAfter, nil)

	s.Tap()
	s.Stop()

	if s.Pending() {
		t.Error("expected no pending timer after stop")
	}
	if s.Tap() {
		t.Error("taps after stop should be ignored")
	}
}
