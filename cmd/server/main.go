// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package main is the entry point for the Cartful dashboard server.
//
// Cartful is a self-hosted analytics dashboard over a PostgreSQL warehouse
// of grocery e-commerce order data: order volume, timing patterns, product
// and department breakdowns, per-user purchase history and aisle-overlap
// product recommendations.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: .env file, config.yaml and environment variables (Koanf v2)
//  2. Warehouse: PostgreSQL connection pool via pgx; startup ping is fatal
//  3. Query cache: process-wide LRU for parameterless aggregate results
//  4. WebSocket hub: pushes filter invalidation notices to dashboard clients
//  5. HTTP server: dashboard page, JSON API and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// A .env file in the working directory is loaded first if present.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests, closes WebSocket
// clients and releases the warehouse pool.
//
// # Example Usage
//
//	export DB_USER=cartful
//	export DB_PASSWORD=secret
//	export DB_HOST=localhost
//	export DB_NAME=instacart
//	./cartful
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cartful-labs/cartful/internal/cache"
	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/dashboard"
	"github.com/cartful-labs/cartful/internal/logging"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cartful: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logging.Debug().Msg("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Cartful")

	db, err := warehouse.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close warehouse pool")
		}
	}()

	queries := cache.NewQueryCache(db, cfg.Cache.QueryCapacity)
	sessions := dashboard.NewSessionManager(db, queries, cfg.Dashboard, cfg.Cache)
	hub := dashboard.NewHub()
	handler := dashboard.NewHandler(sessions, hub, db, cfg.Dashboard)
	server := dashboard.NewServer(cfg.Server, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logging.Info().Msg("Cartful stopped")
	return nil
}
