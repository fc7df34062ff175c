// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartful-labs/cartful/internal/cache"
	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/logging"
	"github.com/cartful-labs/cartful/internal/metrics"
	"github.com/cartful-labs/cartful/internal/reactive"
	"github.com/cartful-labs/cartful/internal/views"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

const sessionCookie = "cartful_session"

// Session is one analyst's dashboard: its filter graph, its output set and
// its session-scoped result cache. Sessions share the process-wide query
// cache and connection pool but nothing else.
type Session struct {
	ID          string
	Graph       *reactive.Graph
	Views       *views.Views
	Cache       *cache.SessionCache
	UserChoices []string

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionManager creates sessions on first contact, identifies them by a
// uuid cookie and expires them after the configured idle timeout.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	exec     warehouse.Executor
	queries  *cache.QueryCache
	cfg      config.DashboardConfig
	cacheCfg config.CacheConfig
}

func NewSessionManager(exec warehouse.Executor, queries *cache.QueryCache, cfg config.DashboardConfig, cacheCfg config.CacheConfig) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		exec:     exec,
		queries:  queries,
		cfg:      cfg,
		cacheCfg: cacheCfg,
	}
}

// Get returns the request's session, creating one and setting its cookie if
// the request carries none (or an expired ID).
func (m *SessionManager) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		m.mu.Lock()
		s, ok := m.sessions[c.Value]
		m.mu.Unlock()
		if ok {
			s.touch()
			return s
		}
	}
	return m.create(w, r)
}

// Lookup returns an existing session without creating one.
func (m *SessionManager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) create(w http.ResponseWriter, r *http.Request) *Session {
	sessionCache := cache.NewSessionCache(m.cacheCfg.SessionCapacity)
	v := views.New(m.exec, m.queries, sessionCache, m.cfg)
	g := reactive.NewGraph(reactive.Snapshot{MinOrders: m.cfg.MinOrdersDefault})

	s := &Session{
		ID:       uuid.NewString(),
		Graph:    g,
		Views:    v,
		Cache:    sessionCache,
		lastSeen: time.Now(),
	}
	if err := v.RegisterAll(g); err != nil {
		// Only possible with a duplicate output name, which is a programming
		// error; surface it loudly.
		logging.Fatal().Err(err).Msg("Failed to register dashboard outputs")
	}

	// The user selector's choice list loads once per session, independent of
	// the filter state. A store failure degrades to an empty selector.
	choices, err := v.LoadUserChoices(r.Context())
	if err != nil {
		logging.Error().Err(err).Str("session", s.ID).Msg("Failed to load user choices")
	}
	s.UserChoices = choices

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()
	metrics.ActiveSessions.Set(float64(count))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logging.Info().Str("session", s.ID).Int("user_choices", len(choices)).Msg("Dashboard session created")
	return s
}

// Sweep removes idle sessions until ctx is canceled. Dropping a session
// frees its session cache and last artifacts; the shared query cache is
// unaffected.
func (m *SessionManager) Sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.expireIdle(time.Now())
		}
	}
}

func (m *SessionManager) expireIdle(now time.Time) {
	cutoff := now.Add(-m.cfg.SessionIdleTimeout)
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	for _, id := range expired {
		logging.Info().Str("session", id).Msg("Dashboard session expired")
	}
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
