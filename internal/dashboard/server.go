// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/logging"
)

// Server runs the dashboard: HTTP listener, WebSocket hub and the session
// janitor. Start blocks until ctx is canceled, then shuts everything down.
type Server struct {
	http     *http.Server
	hub      *Hub
	sessions *SessionManager
}

func NewServer(cfg config.ServerConfig, handler *Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Timeout,
			// No WriteTimeout: the WebSocket endpoint holds its connection
			// open for the life of the session.
			IdleTimeout: 120 * time.Second,
		},
		hub:      handler.hub,
		sessions: handler.sessions,
	}
}

// Start serves until ctx is canceled. The returned error is nil on clean
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		// Run returns ctx.Err() on shutdown, which is expected.
		_ = s.hub.Run(ctx)
	}()
	go s.sessions.Sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.http.Addr).Msg("Dashboard server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	logging.Info().Msg("Dashboard server stopped")
	return nil
}
