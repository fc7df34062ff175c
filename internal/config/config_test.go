// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment for Load to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "analyst")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "instacart")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.PoolSize != 10 {
		t.Errorf("expected default pool size 10, got %d", cfg.Database.PoolSize)
	}
	if cfg.Database.PoolOverflow != 20 {
		t.Errorf("expected default pool overflow 20, got %d", cfg.Database.PoolOverflow)
	}
	if cfg.Database.MaxOpenConns() != 30 {
		t.Errorf("expected max open conns 30, got %d", cfg.Database.MaxOpenConns())
	}
	if cfg.Cache.QueryCapacity != 32 {
		t.Errorf("expected query cache capacity 32, got %d", cfg.Cache.QueryCapacity)
	}
	if cfg.Dashboard.MinOrdersDefault != 5 {
		t.Errorf("expected min_orders default 5, got %d", cfg.Dashboard.MinOrdersDefault)
	}
	if cfg.Dashboard.MinOrdersFloor != 1 || cfg.Dashboard.MinOrdersCeil != 20 {
		t.Errorf("expected min_orders bounds [1,20], got [%d,%d]",
			cfg.Dashboard.MinOrdersFloor, cfg.Dashboard.MinOrdersCeil)
	}
	if cfg.Dashboard.RecommendMinFrequency != 10 || cfg.Dashboard.RecommendLimit != 20 {
		t.Errorf("unexpected recommendation defaults: freq=%d limit=%d",
			cfg.Dashboard.RecommendMinFrequency, cfg.Dashboard.RecommendLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "4")
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_QUERY_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.PoolSize != 4 {
		t.Errorf("expected pool size 4, got %d", cfg.Database.PoolSize)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Database.QueryTimeout != 10*time.Second {
		t.Errorf("expected query timeout 10s, got %v", cfg.Database.QueryTimeout)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected Load() to fail without DB credentials")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		User:     "analyst",
		Password: "p@ss/word",
		Host:     "db.internal",
		Port:     5433,
		Name:     "instacart",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("DSN missing scheme: %q", dsn)
	}
	if !strings.Contains(dsn, "db.internal:5433/instacart") {
		t.Errorf("DSN missing host/db: %q", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("DSN missing sslmode: %q", dsn)
	}
	if strings.Contains(dsn, "p@ss/word") {
		t.Errorf("DSN should escape password special characters: %q", dsn)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DB_USER", "database.user"},
		{"DB_HOST", "database.host"},
		{"HTTP_PORT", "server.port"},
		{"MIN_ORDERS_DEFAULT", "dashboard.min_orders_default"},
		{"QUERY_CACHE_CAPACITY", "cache.query_capacity"},
		{"LOG_FORMAT", "logging.format"},
		{"PATH", ""},   // unrelated env vars must not leak in
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
