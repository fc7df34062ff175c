// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package dashboard is Cartful's HTTP boundary: one page, a small JSON API
// over the session's rendered outputs, and a WebSocket channel that tells
// the client which outputs a filter change invalidated.
package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the chi handler tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.Index)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Use(metricsMiddleware)

		r.Get("/outputs", h.Outputs)
		r.Get("/outputs/{name}", h.Output)
		r.Post("/filters", h.SetFilters)
		r.Get("/users", h.Users)
		r.Get("/health", h.Health)
		r.Get("/ws", h.WebSocket)
	})

	return r
}
