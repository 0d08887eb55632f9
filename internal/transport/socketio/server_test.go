package socketio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edumarques81/stellar-hero/internal/domain/carousel"
	"github.com/edumarques81/stellar-hero/internal/domain/hero"
	"github.com/edumarques81/stellar-hero/internal/domain/player"
)

type fakeClient struct {
	mu     sync.Mutex
	events []string
	last   map[string]any
}

func newFakeClient() *fakeClient {
	return &fakeClient{last: make(map[string]any)}
}

func (f *fakeClient) Emit(ev string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if len(args) > 0 {
		f.last[ev] = args[0]
	}
	return nil
}

func (f *fakeClient) lastState() (hero.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.last["pushState"].(hero.Snapshot)
	return snap, ok
}

func (f *fakeClient) count(ev string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == ev {
			n++
		}
	}
	return n
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

type testServer struct {
	*Server
	clock    clockwork.FakeClock
	elements map[string]*player.MemoryElement
	mu       sync.Mutex
}

func newTestServer(t *testing.T, maxSessions int, rotator *carousel.Rotator) *testServer {
	t.Helper()
	ts := &testServer{
		clock:    clockwork.NewFakeClock(),
		elements: make(map[string]*player.MemoryElement),
	}
	factory := func(id string) (player.MediaElement, error) {
		el := player.NewMemoryElement(125)
		ts.mu.Lock()
		ts.elements[id] = el
		ts.mu.Unlock()
		return el, nil
	}

	srv, err := NewServer(factory, rotator, Options{
		MaxSessions: maxSessions,
		PushWindow:  50 * time.Millisecond,
		Clock:       ts.clock,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	ts.Server = srv
	return ts
}

func (ts *testServer) element(id string) *player.MemoryElement {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.elements[id]
}

func TestNewServerRequiresFactory(t *testing.T) {
	if _, err := NewServer(nil, nil, Options{}); err == nil {
		t.Error("expected error without element factory")
	}
}

func TestOpenSessionMountsController(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	client := newFakeClient()

	sess, err := ts.openSession("c1", "10.0.0.5", client, nil)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	if ts.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", ts.SessionCount())
	}

	el := ts.element(sess.id)
	eventually(t, func() bool { return !el.Paused() && el.Muted() }, "expected muted autoplay on mount")

	ts.handleEvent("c1", "getState")
	snap, ok := client.lastState()
	if !ok {
		t.Fatal("expected pushState after getState")
	}
	if snap.Session != sess.id || !snap.Media.Playing || !snap.Media.Muted {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestHandleEventsDriveController(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	client := newFakeClient()

	sess, err := ts.openSession("c1", "10.0.0.5", client, nil)
	if err != nil {
		t.Fatal(err)
	}
	el := ts.element(sess.id)
	el.Load()

	ts.handleEvent("c1", "toggleMute")
	ts.handleEvent("c1", "tap")
	ts.handleEvent("c1", "seek", map[string]any{"value": 0.5})

	snap, err := sess.controller.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Media.Muted {
		t.Error("expected unmuted after toggleMute")
	}
	if !snap.Controls.Visible {
		t.Error("expected controls visible after tap")
	}
	if snap.Media.CurrentTime != 62.5 {
		t.Errorf("expected seek to 62.5s, got %v", snap.Media.CurrentTime)
	}

	ts.handleEvent("c1", "viewport", 0.1)
	snap, _ = sess.controller.Snapshot()
	if snap.Media.Playing || !snap.Media.Muted {
		t.Errorf("expected paused and muted out of view, got %+v", snap.Media)
	}
}

func TestScrubEventSeeksByPointer(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	sess, err := ts.openSession("c1", "10.0.0.5", newFakeClient(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ts.element(sess.id).Load()

	ts.handleEvent("c1", "scrub", map[string]any{"x": 150.0, "left": 100.0, "width": 200.0})

	snap, _ := sess.controller.Snapshot()
	if snap.Media.CurrentTime != 31.25 {
		t.Errorf("expected 31.25s, got %v", snap.Media.CurrentTime)
	}
}

func TestStatePushesAreCoalesced(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	client := newFakeClient()

	sess, err := ts.openSession("c1", "10.0.0.5", client, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts.element(sess.id).Load()
	for i := 0; i < 5; i++ {
		ts.handleEvent("c1", "toggleMute")
	}
	if _, err := sess.controller.Snapshot(); err != nil {
		t.Fatal(err)
	}

	ts.clock.Advance(50 * time.Millisecond)
	eventually(t, func() bool { return client.count("pushState") == 1 }, "expected a single coalesced push")

	snap, _ := client.lastState()
	if snap.Media.Muted {
		t.Error("expected the latest state (unmuted after odd toggles)")
	}
}

func TestGetStateFlushesPendingPush(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	client := newFakeClient()

	sess, err := ts.openSession("c1", "10.0.0.5", client, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts.handleEvent("c1", "toggleMute")
	if _, err := sess.controller.Snapshot(); err != nil {
		t.Fatal(err)
	}

	ts.handleEvent("c1", "getState")
	if n := client.count("pushState"); n != 2 {
		t.Fatalf("expected pending push and reply, got %d pushes", n)
	}
	snap, _ := client.lastState()
	if snap.Media.Muted {
		t.Error("expected the reply to carry the latest state")
	}

	ts.clock.Advance(50 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if n := client.count("pushState"); n != 2 {
		t.Errorf("expected no push after the flushed window, got %d", n)
	}
}

func TestSessionLimitEvictsOldest(t *testing.T) {
	ts := newTestServer(t, 1, nil)

	disconnected := make(chan struct{}, 1)
	first, err := ts.openSession("c1", "10.0.0.5", newFakeClient(), func() { disconnected <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	firstEl := ts.element(first.id)
	eventually(t, func() bool { return !firstEl.Paused() }, "expected first session to autoplay")

	if _, err := ts.openSession("c2", "10.0.0.6", newFakeClient(), nil); err != nil {
		t.Fatal(err)
	}

	select {
	case <-disconnected:
	default:
		t.Error("expected oldest client to be disconnected")
	}
	if ts.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", ts.SessionCount())
	}
	if _, err := first.controller.Snapshot(); err != hero.ErrUnmounted {
		t.Errorf("expected evicted controller unmounted, got %v", err)
	}
}

func TestConcurrentOpensKeepSingleOwner(t *testing.T) {
	ts := newTestServer(t, 1, nil)

	const clients = 8
	var disconnects atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			if _, err := ts.openSession(id, "10.0.0.5", newFakeClient(), func() { disconnects.Add(1) }); err != nil {
				t.Errorf("openSession %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if ts.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", ts.SessionCount())
	}
	if got := disconnects.Load(); got != clients-1 {
		t.Errorf("expected %d evicted clients disconnected, got %d", clients-1, got)
	}
	if ts.limiter.Len() != 1 {
		t.Errorf("expected limiter to track 1 session, got %d", ts.limiter.Len())
	}
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	ts := newTestServer(t, 0, nil)
	if _, err := ts.openSession("c1", "10.0.0.5", newFakeClient(), nil); err != nil {
		t.Fatal(err)
	}

	ts.closeSession("c1")
	ts.closeSession("c1")
	ts.handleEvent("c1", "tap")

	if ts.SessionCount() != 0 {
		t.Errorf("expected no sessions, got %d", ts.SessionCount())
	}
}

func TestCarouselPushedOnConnectAndBroadcast(t *testing.T) {
	rotator := carousel.NewRotator([]carousel.Slide{{Name: "a.jpg"}, {Name: "b.jpg"}}, 0, clockwork.NewFakeClock())
	ts := newTestServer(t, 0, rotator)
	client := newFakeClient()

	if _, err := ts.openSession("c1", "10.0.0.5", client, nil); err != nil {
		t.Fatal(err)
	}
	if client.count("pushCarousel") != 1 {
		t.Fatalf("expected carousel on connect, got %d", client.count("pushCarousel"))
	}

	ts.handleEvent("c1", "selectSlide", map[string]any{"index": 1.0})

	if client.count("pushCarousel") != 2 {
		t.Errorf("expected broadcast after slide change, got %d", client.count("pushCarousel"))
	}
	client.mu.Lock()
	state := client.last["pushCarousel"].(carousel.State)
	client.mu.Unlock()
	if state.Index != 1 {
		t.Errorf("expected index 1, got %d", state.Index)
	}
}

func TestNumberArg(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want float64
		ok   bool
	}{
		{"bare", []any{0.4}, 0.4, true},
		{"object", []any{map[string]any{"ratio": 0.3}}, 0.3, true},
		{"missing key", []any{map[string]any{"other": 1.0}}, 0, false},
		{"empty", nil, 0, false},
		{"string", []any{"0.5"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numberArg(tt.args, "ratio")
			if got != tt.want || ok != tt.ok {
				t.Errorf("numberArg = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
