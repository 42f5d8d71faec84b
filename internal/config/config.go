// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package config loads Cinerec configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
//
// The short environment names shared by the server and the exporter
// (MONGO_URL, DB_NAME, WATCH_COLLECTION, ...) map onto the nested keys:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	addr := cfg.Server.Addr()
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Mongo     MongoConfig     `koanf:"mongo"`
	Model     ModelConfig     `koanf:"model"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// MongoConfig describes the catalog database and its collections.
type MongoConfig struct {
	URI      string `koanf:"uri" validate:"required,startswith=mongodb"`
	Database string `koanf:"database" validate:"required"`

	// Collection names. Playback holds one document per user and title with
	// userId, movieId, seasonNumber, episodeNumber, progressPct, finished
	// and lastActionAt.
	PlaybackCollection string `koanf:"playback_collection" validate:"required"`
	UsersCollection    string `koanf:"users_collection" validate:"required"`
	MoviesCollection   string `koanf:"movies_collection" validate:"required"`
	SeriesCollection   string `koanf:"series_collection" validate:"required"`

	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`

	// QueryTimeout bounds every catalog call made while serving a request.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`

	MinPoolSize uint64 `koanf:"min_pool_size"`
	MaxPoolSize uint64 `koanf:"max_pool_size" validate:"min=1"`
}

// ModelConfig locates the factor model artifacts.
type ModelConfig struct {
	ArtifactsDir string `koanf:"artifacts_dir" validate:"required"`

	// File names inside ArtifactsDir. Empty means the default name.
	UserMapFile string `koanf:"user_map_file"`
	ItemMapFile string `koanf:"item_map_file"`
	FactorsFile string `koanf:"factors_file"`

	// Watch reloads the model when files in ArtifactsDir change.
	Watch bool `koanf:"watch"`

	// ReloadDebounce waits for a burst of file events to settle before reloading.
	ReloadDebounce time.Duration `koanf:"reload_debounce" validate:"gte=0"`
}

// RecommendConfig holds the serving engine tunables.
type RecommendConfig struct {
	DefaultUserN      int           `koanf:"default_user_n" validate:"min=1"`
	DefaultSimilarN   int           `koanf:"default_similar_n" validate:"min=1"`
	MaxN              int           `koanf:"max_n" validate:"min=1,max=50"`
	OverfetchFactor   int           `koanf:"overfetch_factor" validate:"min=1,max=100"`
	TrendingOverfetch int           `koanf:"trending_overfetch" validate:"min=1,max=100"`
	PreferenceWindow  time.Duration `koanf:"preference_window" validate:"gt=0"`
	TrendingWindow    time.Duration `koanf:"trending_window" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// AdminToken guards POST /admin/reload. The route is not mounted when empty.
	AdminToken string `koanf:"admin_token"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is json (production) or console (development).
	Format string `koanf:"format" validate:"oneof=json console"`

	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
