// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/logging"
)

// Pinger reports warehouse reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the dashboard page and its JSON API.
type Handler struct {
	sessions  *SessionManager
	hub       *Hub
	store     Pinger
	cfg       config.DashboardConfig
	startTime time.Time
	upgrader  websocket.Upgrader
}

func NewHandler(sessions *SessionManager, hub *Hub, store Pinger, cfg config.DashboardConfig) *Handler {
	return &Handler{
		sessions:  sessions,
		hub:       hub,
		store:     store,
		cfg:       cfg,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-origin dashboard; the page and the socket share a host.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Outputs returns every output's last artifact, computing any that are
// stale or have never run.
func (h *Handler) Outputs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := h.sessions.Get(w, r)
	s.Graph.Recompute(r.Context())
	respondData(w, s.Graph.Artifacts(), start)
}

// Output returns one named output's artifact.
func (h *Handler) Output(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := h.sessions.Get(w, r)
	s.Graph.Recompute(r.Context())

	name := chi.URLParam(r, "name")
	art, ok := s.Graph.Artifact(name)
	if !ok {
		respondError(w, http.StatusNotFound, "UNKNOWN_OUTPUT",
			fmt.Sprintf("no output named %q", name), nil)
		return
	}
	respondData(w, art, start)
}

// filtersRequest carries a partial filter update. Absent fields leave the
// corresponding filter untouched.
type filtersRequest struct {
	MinOrders *int    `json:"min_orders"`
	UserID    *string `json:"user_id"`
}

// SetFilters applies a filter change, recomputes exactly the invalidated
// outputs and pushes their names over the session's WebSocket.
func (h *Handler) SetFilters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := h.sessions.Get(w, r)

	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", err)
		return
	}

	var invalidated []string
	if req.MinOrders != nil {
		v := *req.MinOrders
		if v < h.cfg.MinOrdersFloor || v > h.cfg.MinOrdersCeil {
			respondError(w, http.StatusBadRequest, "INVALID_FILTER",
				fmt.Sprintf("min_orders must be between %d and %d", h.cfg.MinOrdersFloor, h.cfg.MinOrdersCeil), nil)
			return
		}
		invalidated = append(invalidated, s.Graph.SetMinOrders(v)...)
	}
	if req.UserID != nil {
		invalidated = append(invalidated, s.Graph.SetUserID(*req.UserID)...)
	}

	recomputed := s.Graph.Recompute(r.Context())
	h.hub.NotifySession(s.ID, recomputed)

	logging.Debug().
		Str("session", s.ID).
		Strs("invalidated", invalidated).
		Msg("Filters updated")
	respondData(w, map[string]any{
		"state":       s.Graph.State(),
		"recomputed":  recomputed,
		"invalidated": invalidated,
	}, start)
}

// Users returns the session's user selector choices.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := h.sessions.Get(w, r)
	respondData(w, map[string]any{"users": s.UserChoices}, start)
}

// Health reports process and warehouse status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	code := http.StatusOK
	var storeErr string
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		storeErr = err.Error()
	}

	respondJSON(w, code, &APIResponse{
		Status: "success",
		Data: map[string]any{
			"status":         status,
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"sessions":       h.sessions.Count(),
			"ws_clients":     h.hub.ClientCount(),
			"store_error":    storeErr,
		},
		Metadata: Metadata{
			Timestamp:     time.Now(),
			ElapsedMillis: time.Since(start).Milliseconds(),
		},
	})
}

// WebSocket upgrades the connection and attaches it to the request's
// session so filter-change notices reach this client.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	NewClient(h.hub, conn, s.ID).Start()
}
