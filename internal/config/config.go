// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds PostgreSQL warehouse connection settings.
//
// Environment Variables:
//   - DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME: connection credentials
//   - DB_SSL_MODE: sslmode parameter (default: disable)
//   - DB_QUERY_TIMEOUT: per-query timeout (default: 30s)
//
// The pool is sized as PoolSize base connections plus PoolOverflow extra
// connections under load. Failure to reach the warehouse at startup is fatal.
type DatabaseConfig struct {
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,min=1,max=65535"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// PoolSize is the number of base (idle-retained) connections.
	PoolSize int `koanf:"pool_size" validate:"min=1"`

	// PoolOverflow is the number of additional connections allowed beyond
	// PoolSize under concurrent load.
	PoolOverflow int `koanf:"pool_overflow" validate:"min=0"`

	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=1s"`

	// BreakerEnabled wraps query execution in a circuit breaker so repeated
	// store failures fail fast instead of holding pooled connections.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// DSN returns the PostgreSQL connection string assembled from the
// environment-provided credentials.
func (c *DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Name, sslMode)
}

// MaxOpenConns returns the hard connection cap (base + overflow).
func (c *DatabaseConfig) MaxOpenConns() int {
	return c.PoolSize + c.PoolOverflow
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"required,min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// DashboardConfig holds dashboard behavior settings: filter input bounds,
// choice-list sizing, recommendation tuning, and session lifetime.
type DashboardConfig struct {
	// MinOrders slider bounds and default (inclusive).
	MinOrdersFloor   int `koanf:"min_orders_floor" validate:"min=1"`
	MinOrdersCeil    int `koanf:"min_orders_ceil" validate:"gtefield=MinOrdersFloor"`
	MinOrdersDefault int `koanf:"min_orders_default" validate:"gtefield=MinOrdersFloor,ltefield=MinOrdersCeil"`

	// UserChoiceLimit caps the user-selector choice list loaded at session start.
	UserChoiceLimit int `koanf:"user_choice_limit" validate:"min=1"`

	// RecommendMinFrequency is the minimum cross-user purchase count for a
	// candidate product to qualify as a recommendation.
	RecommendMinFrequency int `koanf:"recommend_min_frequency" validate:"min=0"`

	// RecommendLimit is the number of recommendations returned.
	RecommendLimit int `koanf:"recommend_limit" validate:"min=1"`

	// SessionIdleTimeout expires dashboard sessions (and their session-scoped
	// caches) after this much inactivity.
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout" validate:"min=1m"`
}

// CacheConfig holds cache tier sizing.
type CacheConfig struct {
	// QueryCapacity is the slot count of the process-wide LRU cache for
	// parameterless query results.
	QueryCapacity int `koanf:"query_capacity" validate:"min=1"`

	// SessionCapacity bounds each session-scoped result cache. The source
	// this dashboard descends from grew that cache without bound; a bounded
	// LRU caps memory when a session cycles through many users.
	SessionCapacity int `koanf:"session_capacity" validate:"min=1"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}
