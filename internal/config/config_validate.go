// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package config

import (
	"fmt"

	"github.com/cartful-labs/cartful/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct-level rules are expressed as `validate` tags; the checks here cover
// what tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Database.User == "" || c.Database.Password == "" {
		return fmt.Errorf("DB_USER and DB_PASSWORD are required")
	}

	if c.Cache.QueryCapacity < 1 {
		return fmt.Errorf("QUERY_CACHE_CAPACITY must be at least 1, got %d", c.Cache.QueryCapacity)
	}

	return nil
}
