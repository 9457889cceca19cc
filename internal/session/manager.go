package session

import (
	"context"
	"sync"
	"time"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
)

const (
	// DefaultTTL is how long a session is honored after login. There is no
	// sliding renewal; the window is fixed at issue time.
	DefaultTTL = 20 * time.Minute

	defaultSweepInterval = 60 * time.Second
)

// Session is a time-bounded proof of identity issued at login.
type Session struct {
	Token    string
	Username string
	IssuedAt time.Time
}

func (s Session) expiredAt(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.IssuedAt.Add(ttl))
}

// Manager is an in-memory registry of live sessions. It owns expiration:
// entries are evicted lazily when a lookup finds them expired and in bulk
// by the periodic sweep. All methods are safe for concurrent use. State is
// process-local; a restart invalidates every session.
type Manager struct {
	clock         clock.Clock
	ttl           time.Duration
	sweepInterval time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

type Option func(*Manager)

// WithTTL overrides the default session lifetime.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithSweepInterval overrides how often Run sweeps expired sessions.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

func NewManager(clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		clock:         clk,
		ttl:           DefaultTTL,
		sweepInterval: defaultSweepInterval,
		sessions:      make(map[string]Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL reports the configured session lifetime, e.g. for cookie max-age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create registers a session for username and returns its token.
func (m *Manager) Create(username string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[token] = Session{
		Token:    token,
		Username: username,
		IssuedAt: m.clock.Now(),
	}
	m.mu.Unlock()

	return token, nil
}

// Lookup resolves a token to its username. A session found past its TTL is
// evicted on the spot and reported absent, so a repeated lookup stays
// absent.
func (m *Manager) Lookup(token string) (string, bool) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if s.expiredAt(now, m.ttl) {
		delete(m.sessions, token)
		return "", false
	}
	return s.Username, true
}

// Revoke removes the session for token. Revoking an unknown token is a
// no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Sweep evicts every expired session and reports how many were removed.
// Sweep and concurrent lookups converge on the same state; eviction is
// idempotent either way.
func (m *Manager) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, s := range m.sessions {
		if s.expiredAt(now, m.ttl) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of registered sessions, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps expired sessions on a ticker until ctx is done. It never
// blocks request serving; callers start it on its own goroutine.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
