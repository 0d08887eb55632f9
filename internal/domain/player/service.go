package player

import (
	"math"

	"github.com/rs/zerolog/log"
)

// Command names a transition of the playback state machine.
type Command int

const (
	CmdPlay Command = iota
	CmdPause
	CmdTogglePlay
	CmdToggleMute
	CmdForceMute
	CmdSeek
	CmdReportTime
	CmdReportDuration
)

var commandNames = map[Command]string{
	CmdPlay:           "play",
	CmdPause:          "pause",
	CmdTogglePlay:     "togglePlay",
	CmdToggleMute:     "toggleMute",
	CmdForceMute:      "forceMute",
	CmdSeek:           "seek",
	CmdReportTime:     "reportTime",
	CmdReportDuration: "reportDuration",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Service is the playback state machine. It owns the media state and is the
// only component allowed to command the media element.
//
// Service is not safe for concurrent commands; callers serialize them through
// a single event loop.
type Service struct {
	state   *State
	element MediaElement
}

// NewService creates a state machine commanding the given element.
func NewService(element MediaElement) *Service {
	return &Service{
		state:   NewState(),
		element: element,
	}
}

// Start issues the mount-time autoplay: muted first, then play.
// A rejected play is swallowed; the state keeps recording the intent.
func (s *Service) Start() {
	if err := s.element.SetMuted(true); err != nil {
		log.Warn().Err(err).Msg("Initial mute failed")
	}
	if err := s.element.Play(); err != nil {
		log.Debug().Err(err).Msg("Autoplay blocked")
	}
}

// Snapshot returns the current media state.
func (s *Service) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// Apply runs one command through the state machine and reports whether the
// state changed. arg carries the seek fraction or the reported time/duration
// and is ignored by the other commands.
func (s *Service) Apply(cmd Command, arg float64) bool {
	switch cmd {
	case CmdPlay:
		return s.play()
	case CmdPause:
		return s.pause()
	case CmdTogglePlay:
		if s.state.Snapshot().Playing {
			return s.pause()
		}
		return s.play()
	case CmdToggleMute:
		return s.setMuted(!s.state.Snapshot().Muted)
	case CmdForceMute:
		return s.setMuted(true)
	case CmdSeek:
		return s.seek(arg)
	case CmdReportTime:
		if !finite(arg) {
			return false
		}
		return s.state.UpdateTime(arg)
	case CmdReportDuration:
		if !finite(arg) {
			return false
		}
		return s.state.UpdateDuration(arg)
	}
	log.Warn().Int("command", int(cmd)).Msg("Unknown playback command")
	return false
}

// Play sets playing and commands the element to play.
func (s *Service) Play() bool { return s.Apply(CmdPlay, 0) }

// Pause clears playing and commands the element to pause.
func (s *Service) Pause() bool { return s.Apply(CmdPause, 0) }

// TogglePlay inverts playing.
func (s *Service) TogglePlay() bool { return s.Apply(CmdTogglePlay, 0) }

// ToggleMute inverts muted.
func (s *Service) ToggleMute() bool { return s.Apply(CmdToggleMute, 0) }

// ForceMute sets muted regardless of its previous value.
func (s *Service) ForceMute() bool { return s.Apply(CmdForceMute, 0) }

// Seek moves to fraction of the duration. No-op while duration is unknown.
func (s *Service) Seek(fraction float64) bool { return s.Apply(CmdSeek, fraction) }

// ReportTime records an element-originated time update.
func (s *Service) ReportTime(t float64) bool { return s.Apply(CmdReportTime, t) }

// ReportDuration records element-originated metadata.
func (s *Service) ReportDuration(d float64) bool { return s.Apply(CmdReportDuration, d) }

func (s *Service) play() bool {
	if !s.state.SetPlaying(true) {
		return false
	}
	if err := s.element.Play(); err != nil {
		// Intent stays recorded; the next visibility change or gesture retries.
		log.Debug().Err(err).Msg("Play rejected by media element")
	}
	return true
}

func (s *Service) pause() bool {
	if !s.state.SetPlaying(false) {
		return false
	}
	if err := s.element.Pause(); err != nil {
		log.Warn().Err(err).Msg("Pause failed")
	}
	return true
}

func (s *Service) setMuted(muted bool) bool {
	if !s.state.SetMuted(muted) {
		return false
	}
	if err := s.element.SetMuted(muted); err != nil {
		log.Warn().Err(err).Bool("muted", muted).Msg("SetMuted failed")
	}
	return true
}

func (s *Service) seek(fraction float64) bool {
	duration := s.state.Snapshot().Duration
	if duration <= 0 || math.IsNaN(fraction) {
		return false
	}

	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	target := fraction * duration
	if !s.state.UpdateTime(target) {
		return false
	}
	if err := s.element.SetTime(target); err != nil {
		log.Warn().Err(err).Float64("target", target).Msg("Seek failed")
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
