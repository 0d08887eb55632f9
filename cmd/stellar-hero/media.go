package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-hero/internal/domain/player"
	"github.com/edumarques81/stellar-hero/internal/infra/mpd"
)

const memoryTick = 250 * time.Millisecond

type mediaConfig struct {
	Kind        string
	URI         string
	Duration    float64
	MPDHost     string
	MPDPort     int
	MPDPassword string
}

// mediaBackend hands out the element each hero session owns.
type mediaBackend interface {
	NewElement(sessionID string) (player.MediaElement, error)
	Ping() error
	// SingleOwner reports whether only one session may drive the media.
	SingleOwner() bool
	Close() error
}

func newMediaBackend(ctx context.Context, cfg mediaConfig) (mediaBackend, error) {
	switch cfg.Kind {
	case "memory":
		return &memoryBackend{ctx: ctx, duration: cfg.Duration, clock: clockwork.NewRealClock()}, nil
	case "mpd":
		return newMPDBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Kind)
	}
}

// memoryBackend gives every session its own simulated element.
type memoryBackend struct {
	ctx      context.Context
	duration float64
	clock    clockwork.Clock
}

func (b *memoryBackend) NewElement(string) (player.MediaElement, error) {
	ctx, cancel := context.WithCancel(b.ctx)
	el := &memoryElement{MemoryElement: player.NewMemoryElement(b.duration), cancel: cancel}
	go el.Run(ctx, b.clock, memoryTick)
	return el, nil
}

func (b *memoryBackend) Ping() error       { return nil }
func (b *memoryBackend) SingleOwner() bool { return false }
func (b *memoryBackend) Close() error      { return nil }

// memoryElement announces its metadata as soon as a listener subscribes and
// stops its clock when released.
type memoryElement struct {
	*player.MemoryElement
	cancel context.CancelFunc
}

func (e *memoryElement) OnDuration(fn func(float64)) {
	e.MemoryElement.OnDuration(fn)
	if fn != nil {
		go e.Load()
	}
}

func (e *memoryElement) Close() error {
	e.cancel()
	return nil
}

// mpdBackend drives one physical output, shared by whichever session
// currently owns it.
type mpdBackend struct {
	client  *mpd.Client
	element *mpd.Element
}

func newMPDBackend(ctx context.Context, cfg mediaConfig) (*mpdBackend, error) {
	client := mpd.NewClient(cfg.MPDHost, cfg.MPDPort, cfg.MPDPassword)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("MPD ping failed: %w", err)
	}
	log.Info().Msg("MPD connection verified")

	element := mpd.NewElement(client, cfg.URI)
	if err := element.Load(); err != nil {
		client.Close()
		return nil, err
	}

	events, err := client.Watch("player")
	if err != nil {
		log.Warn().Err(err).Msg("MPD watcher unavailable, polling only")
	}
	go element.Run(ctx, clockwork.NewRealClock(), mpd.DefaultPollInterval, events)

	return &mpdBackend{client: client, element: element}, nil
}

func (b *mpdBackend) NewElement(string) (player.MediaElement, error) {
	return b.element.Claim(), nil
}

func (b *mpdBackend) Ping() error       { return b.client.Ping() }
func (b *mpdBackend) SingleOwner() bool { return true }

func (b *mpdBackend) Close() error {
	if err := b.client.Stop(); err != nil {
		log.Debug().Err(err).Msg("MPD stop failed")
	}
	return b.client.Close()
}
