package session

import (
	"context"
	"sync"
	"time"

	"indigo/internal/metrics"
	"indigo/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Factory builds the controller of a new session. onChange must be passed
// to the controller so live listeners hear about every state change.
type Factory func(onChange func()) *view.Controller

// Registry maps browser session ids to their own view controller.
// A session id only selects a view; it grants nothing.
type Registry struct {
	factory Factory
	idleTTL time.Duration
	logger  *zerolog.Logger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(factory Factory, idleTTL time.Duration, logger *zerolog.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		factory:  factory,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id, or starts a new one under a fresh
// id when id is unknown. created reports the latter.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool, err error) {
	if s, ok := r.Get(id); ok {
		return s, false, nil
	}

	s = newSession(uuid.NewString(), r.now())
	s.controller = r.factory(s.notify)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false, ErrClosed
	}
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	if out := s.controller.Start(r.ctx); !out.OK() {
		r.logger.Warn().Err(out.Err).Str("session", s.ID).Msg("session started without a live menu")
	}
	metrics.SetActiveSessions(count)
	r.logger.Debug().Str("session", s.ID).Msg("session created")
	return s, true, nil
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were evicted.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.close(r.logger)
	}
	if len(expired) > 0 {
		metrics.SetActiveSessions(count)
		r.logger.Info().Int("evicted", len(expired)).Int("active", count).Msg("idle sessions evicted")
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close tears down every session. Later GetOrCreate calls fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.close(r.logger)
	}
	r.cancel()
	metrics.SetActiveSessions(0)
	return nil
}
