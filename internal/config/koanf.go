// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cartful/config.yaml",
	"/etc/cartful/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are applied
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			User:           "",
			Password:       "",
			Host:           "localhost",
			Port:           5432,
			Name:           "instacart",
			SSLMode:        "disable",
			PoolSize:       10,
			PoolOverflow:   20,
			QueryTimeout:   30 * time.Second,
			BreakerEnabled: true,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8040,
			Timeout: 30 * time.Second,
		},
		Dashboard: DashboardConfig{
			MinOrdersFloor:        1,
			MinOrdersCeil:         20,
			MinOrdersDefault:      5,
			UserChoiceLimit:       100,
			RecommendMinFrequency: 10,
			RecommendLimit:        20,
			SessionIdleTimeout:    30 * time.Minute,
		},
		Cache: CacheConfig{
			QueryCapacity:   32,
			SessionCapacity: 128,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// DB_HOST -> database.host, HTTP_PORT -> server.port, etc.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are ignored so unrelated process environment does not
// leak into the configuration.
//
// Examples:
//   - DB_USER -> database.user
//   - DB_QUERY_TIMEOUT -> database.query_timeout
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// Warehouse connection (matches the conventional DB_* credentials)
		"db_user":            "database.user",
		"db_password":        "database.password",
		"db_host":            "database.host",
		"db_port":            "database.port",
		"db_name":            "database.name",
		"db_ssl_mode":        "database.ssl_mode",
		"db_pool_size":       "database.pool_size",
		"db_pool_overflow":   "database.pool_overflow",
		"db_query_timeout":   "database.query_timeout",
		"db_breaker_enabled": "database.breaker_enabled",

		// HTTP server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Dashboard behavior
		"min_orders_floor":        "dashboard.min_orders_floor",
		"min_orders_ceil":         "dashboard.min_orders_ceil",
		"min_orders_default":      "dashboard.min_orders_default",
		"user_choice_limit":       "dashboard.user_choice_limit",
		"recommend_min_frequency": "dashboard.recommend_min_frequency",
		"recommend_limit":         "dashboard.recommend_limit",
		"session_idle_timeout":    "dashboard.session_idle_timeout",

		// Cache tiers
		"query_cache_capacity":   "cache.query_capacity",
		"session_cache_capacity": "cache.session_capacity",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
