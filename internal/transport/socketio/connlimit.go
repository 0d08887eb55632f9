package socketio

import (
	"sync"
)

// SessionLimiter caps the number of concurrent hero sessions. When a new
// session exceeds the cap, the oldest session is evicted. A media backend
// with a single physical output runs with a cap of one, so the newest
// visitor always owns playback.
type SessionLimiter struct {
	mu          sync.Mutex
	maxSessions int
	// ordered slice of client IDs (oldest first)
	order []string
	// clientID -> remote address
	sessions map[string]string
}

// NewSessionLimiter creates a limiter allowing up to maxSessions concurrent
// sessions. A value <= 0 disables the cap.
func NewSessionLimiter(maxSessions int) *SessionLimiter {
	return &SessionLimiter{
		maxSessions: maxSessions,
		order:       make([]string, 0),
		sessions:    make(map[string]string),
	}
}

// TryAdd registers a session and returns the ID of any evicted session
// (empty string if none).
func (l *SessionLimiter) TryAdd(clientID, remoteAddr string) (evictedID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.sessions[clientID]; exists {
		return ""
	}

	l.sessions[clientID] = remoteAddr
	l.order = append(l.order, clientID)

	if l.maxSessions > 0 && len(l.order) > l.maxSessions {
		evictedID = l.order[0]
		l.order = l.order[1:]
		delete(l.sessions, evictedID)
		return evictedID
	}

	return ""
}

// Remove unregisters a session when its client disconnects.
func (l *SessionLimiter) Remove(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.sessions[clientID]; !exists {
		return
	}
	delete(l.sessions, clientID)

	for i, id := range l.order {
		if id == clientID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of tracked sessions.
func (l *SessionLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
