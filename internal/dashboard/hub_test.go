// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package dashboard

import (
	"context"
	"testing"
	"time"
)

// registerClient attaches a pumpless client directly so broadcast routing
// can be tested without a real connection.
func registerClient(t *testing.T, h *Hub, sessionID string) *Client {
	t.Helper()
	c := NewClient(h, nil, sessionID)
	select {
	case h.register <- c:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
	return c
}

func TestHub_NotifySessionRoutesBySession(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx) //nolint:errcheck

	a := registerClient(t, h, "session-a")
	b := registerClient(t, h, "session-b")

	h.NotifySession("session-a", []string{"order_distribution"})

	select {
	case msg := <-a.send:
		if msg.Type != MessageTypeOutputsInvalidated {
			t.Errorf("type = %q", msg.Type)
		}
		outputs, _ := msg.Data.([]string)
		if len(outputs) != 1 || outputs[0] != "order_distribution" {
			t.Errorf("data = %v", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("session-a client received nothing")
	}

	select {
	case msg := <-b.send:
		t.Errorf("session-b client received %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmptyInvalidationIsNotPushed(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx) //nolint:errcheck

	c := registerClient(t, h, "session-a")
	h.NotifySession("session-a", nil)

	select {
	case msg := <-c.send:
		t.Errorf("received %+v for empty invalidation", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx) //nolint:errcheck

	c := registerClient(t, h, "session-a")
	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on shutdown")
	}
	if h.ClientCount() != 0 {
		t.Errorf("clients = %d after shutdown", h.ClientCount())
	}
}
