package main

import (
	"context"
	"testing"
	"time"
)

func TestNewMediaBackendUnknown(t *testing.T) {
	if _, err := newMediaBackend(context.Background(), mediaConfig{Kind: "vlc"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewMediaBackendMPDUnreachable(t *testing.T) {
	_, err := newMediaBackend(context.Background(), mediaConfig{Kind: "mpd", MPDHost: "localhost", MPDPort: 16600})
	if err == nil {
		t.Error("expected error when MPD is unreachable")
	}
}

func TestMemoryElementReportsDurationOnSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := newMediaBackend(ctx, mediaConfig{Kind: "memory", Duration: 90})
	if err != nil {
		t.Fatal(err)
	}
	if backend.SingleOwner() {
		t.Error("memory backend should allow concurrent sessions")
	}

	el, err := backend.NewElement("s1")
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan float64, 1)
	el.OnDuration(func(d float64) { got <- d })

	select {
	case d := <-got:
		if d != 90 {
			t.Errorf("expected duration 90, got %v", d)
		}
	case <-time.After(time.Second):
		t.Fatal("expected duration after subscribing")
	}

	if closer, ok := el.(interface{ Close() error }); !ok || closer.Close() != nil {
		t.Error("expected memory element to be closable")
	}
}
