// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"fmt"
	"time"
)

// Config contains the tunables of the serving engine.
type Config struct {
	// DefaultUserN is the result count for user recommendations when n is omitted.
	DefaultUserN int

	// DefaultSimilarN is the result count for similar items when n is omitted.
	DefaultSimilarN int

	// MaxN is the largest accepted n.
	MaxN int

	// OverfetchFactor multiplies n to size the model candidate pool before
	// category filtering.
	OverfetchFactor int

	// TrendingOverfetch multiplies n to size the trending candidate pool.
	TrendingOverfetch int

	// PreferenceWindow is how far back recent playback counts toward preferences.
	PreferenceWindow time.Duration

	// TrendingWindow is how far back playback counts toward trending.
	TrendingWindow time.Duration
}

// DefaultConfig returns the defaults used by the serving process.
func DefaultConfig() *Config {
	return &Config{
		DefaultUserN:      8,
		DefaultSimilarN:   12,
		MaxN:              50,
		OverfetchFactor:   5,
		TrendingOverfetch: 3,
		PreferenceWindow:  60 * 24 * time.Hour,
		TrendingWindow:    30 * 24 * time.Hour,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxN < 1 {
		return fmt.Errorf("max_n must be positive, got %d", c.MaxN)
	}
	if c.DefaultUserN < 1 || c.DefaultUserN > c.MaxN {
		return fmt.Errorf("default_user_n must be in [1, %d], got %d", c.MaxN, c.DefaultUserN)
	}
	if c.DefaultSimilarN < 1 || c.DefaultSimilarN > c.MaxN {
		return fmt.Errorf("default_similar_n must be in [1, %d], got %d", c.MaxN, c.DefaultSimilarN)
	}
	if c.OverfetchFactor < 1 {
		return fmt.Errorf("overfetch_factor must be at least 1, got %d", c.OverfetchFactor)
	}
	if c.TrendingOverfetch < 1 {
		return fmt.Errorf("trending_overfetch must be at least 1, got %d", c.TrendingOverfetch)
	}
	if c.PreferenceWindow <= 0 {
		return fmt.Errorf("preference_window must be positive, got %s", c.PreferenceWindow)
	}
	if c.TrendingWindow <= 0 {
		return fmt.Errorf("trending_window must be positive, got %s", c.TrendingWindow)
	}
	return nil
}
