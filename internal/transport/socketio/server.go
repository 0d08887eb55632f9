// Package socketio provides the Socket.io server the hero page talks to.
// Every connection mounts its own hero controller; a disconnect unmounts it.
package socketio

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/edumarques81/stellar-hero/internal/domain/carousel"
	"github.com/edumarques81/stellar-hero/internal/domain/controls"
	"github.com/edumarques81/stellar-hero/internal/domain/hero"
	"github.com/edumarques81/stellar-hero/internal/domain/player"
)

// ElementFactory returns the media element a new session will own.
type ElementFactory func(sessionID string) (player.MediaElement, error)

// Options configures the server.
type Options struct {
	// Hero is the template configuration for every session's controller.
	Hero hero.Config
	// MaxSessions caps concurrent sessions; <= 0 means unlimited.
	MaxSessions int
	// PushWindow bounds how often a session receives pushState.
	PushWindow time.Duration
	Clock      clockwork.Clock
}

// emitter is the part of a socket the server writes to.
type emitter interface {
	Emit(ev string, args ...any) error
}

type session struct {
	id         string
	clientID   string
	client     emitter
	disconnect func()
	controller *hero.Controller
	pushes     *PushDebouncer
}

// Server handles Socket.io connections and events.
type Server struct {
	io         *socket.Server
	opts       Options
	newElement ElementFactory
	carousel   *carousel.Rotator
	limiter    *SessionLimiter

	// opening serializes openSession so an evicted session is always
	// registered before the next one claims the media.
	opening sync.Mutex

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewServer creates a new Socket.io server. rotator may be nil.
func NewServer(newElement ElementFactory, rotator *carousel.Rotator, opts Options) (*Server, error) {
	if newElement == nil {
		return nil, fmt.Errorf("element factory is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Hero.Clock == nil {
		opts.Hero.Clock = opts.Clock
	}

	serverOpts := socket.DefaultServerOptions()
	serverOpts.SetPingTimeout(20 * time.Second)
	serverOpts.SetPingInterval(25 * time.Second)
	serverOpts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:         socket.NewServer(nil, serverOpts),
		opts:       opts,
		newElement: newElement,
		carousel:   rotator,
		limiter:    NewSessionLimiter(opts.MaxSessions),
		sessions:   make(map[string]*session),
	}

	if rotator != nil {
		rotator.OnChange(func(int) { s.BroadcastCarousel() })
	}

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		addr := client.Handshake().Address

		log.Info().Str("id", clientID).Str("addr", addr).Msg("Client connected")

		if _, err := s.openSession(clientID, addr, client, func() { client.Disconnect(true) }); err != nil {
			log.Error().Err(err).Str("id", clientID).Msg("Failed to open hero session")
			client.Disconnect(true)
			return
		}

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")
			s.closeSession(clientID)
		})

		for _, name := range []string{
			"viewport", "tap", "togglePlay", "toggleMute", "seek", "scrub",
			"openOverlay", "closeOverlay", "getState", "getCarousel", "selectSlide",
		} {
			event := name
			client.On(event, func(args ...any) {
				s.handleEvent(clientID, event, args...)
			})
		}
	})
}

// openSession mounts a controller for a new client, evicting the oldest
// session when the limit is reached.
func (s *Server) openSession(clientID, addr string, client emitter, disconnect func()) (*session, error) {
	s.opening.Lock()
	defer s.opening.Unlock()

	if evicted := s.limiter.TryAdd(clientID, addr); evicted != "" {
		log.Info().Str("evicted", evicted).Str("id", clientID).Msg("Session limit reached, evicting oldest session")
		s.evict(evicted)
	}

	sessionID := uuid.NewString()
	element, err := s.newElement(sessionID)
	if err != nil {
		s.limiter.Remove(clientID)
		return nil, fmt.Errorf("failed to create media element: %w", err)
	}

	sess := &session{
		id:         sessionID,
		clientID:   clientID,
		client:     client,
		disconnect: disconnect,
		controller: hero.New(sessionID, element, s.opts.Hero),
	}
	sess.pushes = NewPushDebouncer(s.opts.PushWindow, s.opts.Clock, func(snap hero.Snapshot) {
		s.emit(sess, "pushState", snap)
	})
	sess.controller.OnChange(sess.pushes.Trigger)

	if err := sess.controller.Mount(); err != nil {
		s.limiter.Remove(clientID)
		return nil, err
	}

	s.mu.Lock()
	s.sessions[clientID] = sess
	s.mu.Unlock()

	if s.carousel != nil {
		s.emit(sess, "pushCarousel", s.carousel.State())
	}
	return sess, nil
}

// closeSession unmounts the client's controller. Safe to call more than once.
func (s *Server) closeSession(clientID string) {
	s.mu.Lock()
	sess, ok := s.sessions[clientID]
	delete(s.sessions, clientID)
	s.mu.Unlock()

	s.limiter.Remove(clientID)
	if !ok {
		return
	}

	sess.pushes.Stop()
	sess.controller.Unmount()
}

func (s *Server) evict(clientID string) {
	s.mu.RLock()
	sess, ok := s.sessions[clientID]
	s.mu.RUnlock()

	s.closeSession(clientID)
	if ok && sess.disconnect != nil {
		sess.disconnect()
	}
}

func (s *Server) session(clientID string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[clientID]
	return sess, ok
}

// handleEvent routes one client event to the session's controller.
func (s *Server) handleEvent(clientID, name string, args ...any) {
	sess, ok := s.session(clientID)
	if !ok {
		log.Debug().Str("id", clientID).Str("event", name).Msg("Event for unknown session")
		return
	}

	log.Debug().Str("id", clientID).Str("event", name).Interface("data", args).Msg("Client event")

	var e hero.Event
	switch name {
	case "viewport":
		ratio, ok := numberArg(args, "ratio")
		if !ok {
			log.Warn().Str("id", clientID).Msg("viewport without ratio")
			return
		}
		e = hero.Event{Kind: hero.EventViewport, Value: ratio}
	case "tap":
		e = hero.Event{Kind: hero.EventTap}
	case "togglePlay":
		e = hero.Event{Kind: hero.EventTogglePlay}
	case "toggleMute":
		e = hero.Event{Kind: hero.EventToggleMute}
	case "seek":
		fraction, ok := numberArg(args, "value")
		if !ok {
			return
		}
		e = hero.Event{Kind: hero.EventSeek, Value: fraction}
	case "scrub":
		x, okX := numberArg(args, "x")
		left, okL := numberArg(args, "left")
		width, okW := numberArg(args, "width")
		if !okX || !okL || !okW {
			return
		}
		e = hero.Event{Kind: hero.EventSeek, Value: controls.ScrubFraction(x, left, width)}
	case "openOverlay":
		e = hero.Event{Kind: hero.EventOpenOverlay}
	case "closeOverlay":
		e = hero.Event{Kind: hero.EventCloseOverlay}
	case "getState":
		// A pending push is older than the reply; send it first.
		sess.pushes.Flush()
		s.pushState(sess)
		return
	case "getCarousel":
		if s.carousel != nil {
			s.emit(sess, "pushCarousel", s.carousel.State())
		}
		return
	case "selectSlide":
		idx, ok := numberArg(args, "index")
		if !ok || s.carousel == nil {
			return
		}
		if err := s.carousel.Select(int(idx)); err != nil {
			log.Warn().Err(err).Int("index", int(idx)).Msg("selectSlide failed")
		}
		return
	default:
		return
	}

	if err := sess.controller.Dispatch(e); err != nil {
		log.Warn().Err(err).Str("id", clientID).Str("event", name).Msg("Dispatch failed")
	}
}

// pushState sends the session's current state to its client.
func (s *Server) pushState(sess *session) {
	snap, err := sess.controller.Snapshot()
	if err != nil {
		log.Error().Err(err).Str("session", sess.id).Msg("Failed to get state")
		return
	}
	s.emit(sess, "pushState", snap)
}

func (s *Server) emit(sess *session, ev string, payload any) {
	if err := sess.client.Emit(ev, payload); err != nil {
		log.Warn().Err(err).Str("session", sess.id).Str("event", ev).Msg("Emit failed")
	}
}

// BroadcastCarousel sends the carousel state to every connected client.
func (s *Server) BroadcastCarousel() {
	if s.carousel == nil {
		return
	}
	state := s.carousel.State()

	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		s.emit(sess, "pushCarousel", state)
	}

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		log.Debug().RawJSON("carousel", data).Int("clients", len(sessions)).Msg("Broadcast carousel")
	}
}

// SessionCount returns the number of mounted sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close unmounts every session and closes the Socket.io server.
func (s *Server) Close() error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.closeSession(id)
	}

	s.io.Close(nil)
	return nil
}

// numberArg reads a number sent either bare or as a field of an object.
func numberArg(args []any, key string) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case map[string]any:
		n, ok := v[key].(float64)
		return n, ok
	}
	return 0, false
}
