package session

import (
	"errors"
	"sync"
	"time"

	"indigo/internal/view"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("session registry is closed")

// Session is one browser view: its controller, pending alerts and the live
// listeners waiting for changes.
type Session struct {
	ID         string
	controller *view.Controller

	mu        sync.Mutex
	lastSeen  time.Time
	flash     []string
	listeners map[chan struct{}]struct{}
	closeOnce sync.Once
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		lastSeen:  now,
		listeners: make(map[chan struct{}]struct{}),
	}
}

func (s *Session) Controller() *view.Controller {
	return s.controller
}

// Alert queues a blocking message for the next page render. Empty messages
// are ignored.
func (s *Session) Alert(msg string) {
	if msg == "" {
		return
	}
	s.mu.Lock()
	s.flash = append(s.flash, msg)
	s.mu.Unlock()
	s.notify()
}

// TakeAlerts returns and clears the queued messages.
func (s *Session) TakeAlerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flash
	s.flash = nil
	return out
}

// Listen registers a change listener. The channel holds at most one pending
// signal; cancel must be called when the listener goes away.
func (s *Session) Listen() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, ch)
			s.mu.Unlock()
		})
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close(logger *zerolog.Logger) {
	s.closeOnce.Do(func() {
		if s.controller == nil {
			return
		}
		if err := s.controller.Close(); err != nil {
			logger.Warn().Err(err).Str("session", s.ID).Msg("failed to close session view")
		}
	})
}
