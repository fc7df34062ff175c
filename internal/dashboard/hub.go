// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package dashboard

import (
	"context"
	"sync"

	"github.com/cartful-labs/cartful/internal/logging"
)

// WebSocket message types.
const (
	MessageTypeOutputsInvalidated = "outputs_invalidated"
	MessageTypePing               = "ping"
	MessageTypePong               = "pong"
)

// WSMessage is one WebSocket frame. For outputs_invalidated the data is the
// list of output names the client should re-fetch.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sessionMessage routes a message to the clients of one session.
type sessionMessage struct {
	sessionID string
	msg       WSMessage
}

// Hub tracks connected dashboard clients per session and pushes
// invalidation notices so a client re-fetches only the outputs a filter
// change actually touched.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan sessionMessage

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan sessionMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// NotifySession queues an invalidation push for every client of a session.
// Never blocks; if the hub's queue is full the notice is dropped and the
// client falls back to its next poll.
func (h *Hub) NotifySession(sessionID string, outputs []string) {
	if len(outputs) == 0 {
		return
	}
	m := sessionMessage{
		sessionID: sessionID,
		msg:       WSMessage{Type: MessageTypeOutputsInvalidated, Data: outputs},
	}
	select {
	case h.broadcast <- m:
	default:
		logging.Warn().Str("session", sessionID).Msg("WebSocket broadcast queue full, dropping notice")
	}
}

// Run processes client lifecycle and broadcasts until ctx is canceled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			logging.Info().Str("session", c.sessionID).Int("total_clients", n).Msg("WebSocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.Info().Str("session", c.sessionID).Int("total_clients", n).Msg("WebSocket client disconnected")

		case m := <-h.broadcast:
			h.send(m)
		}
	}
}

func (h *Hub) send(m sessionMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.sessionID != m.sessionID {
			continue
		}
		select {
		case c.send <- m.msg:
		default:
			// Slow client; drop the frame rather than stall the hub.
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
