// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinerec/internal/validation"
)

// Validate checks field ranges with struct tags, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if err := c.validateMongo(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateMongo() error {
	if c.Mongo.MinPoolSize > c.Mongo.MaxPoolSize {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE (%d) must not exceed MONGO_MAX_POOL_SIZE (%d)",
			c.Mongo.MinPoolSize, c.Mongo.MaxPoolSize)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultUserN > r.MaxN {
		return fmt.Errorf("RECOMMEND_DEFAULT_N (%d) must not exceed RECOMMEND_MAX_N (%d)", r.DefaultUserN, r.MaxN)
	}
	if r.DefaultSimilarN > r.MaxN {
		return fmt.Errorf("RECOMMEND_SIMILAR_N (%d) must not exceed RECOMMEND_MAX_N (%d)", r.DefaultSimilarN, r.MaxN)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
