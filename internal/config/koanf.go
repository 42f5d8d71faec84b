// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

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

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinerec/config.yaml",
	"/etc/cinerec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Mongo: MongoConfig{
			URI:                "mongodb://localhost:27017",
			Database:           "Movie-web",
			PlaybackCollection: "playback_state",
			UsersCollection:    "users",
			MoviesCollection:   "movies",
			SeriesCollection:   "series",
			ConnectTimeout:     10 * time.Second,
			QueryTimeout:       5 * time.Second,
			MinPoolSize:        0,
			MaxPoolSize:        50,
		},
		Model: ModelConfig{
			ArtifactsDir:   "artifacts",
			UserMapFile:    "",
			ItemMapFile:    "",
			FactorsFile:    "",
			Watch:          true,
			ReloadDebounce: 2 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultUserN:      8,
			DefaultSimilarN:   12,
			MaxN:              50,
			OverfetchFactor:   5,
			TrendingOverfetch: 3,
			PreferenceWindow:  60 * 24 * time.Hour,
			TrendingWindow:    30 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8002,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AdminToken:      "",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//  1. Defaults from defaultConfig
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MONGO_URL -> mongo.uri, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
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

// findConfigFile returns the first existing config file, or "".
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

// sliceConfigPaths are parsed as comma-separated lists when set from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated string values for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Catalog database (names shared with the exporter)
	"mongo_url":             "mongo.uri",
	"db_name":               "mongo.database",
	"watch_collection":      "mongo.playback_collection",
	"users_collection":      "mongo.users_collection",
	"movies_collection":     "mongo.movies_collection",
	"series_collection":     "mongo.series_collection",
	"mongo_connect_timeout": "mongo.connect_timeout",
	"mongo_query_timeout":   "mongo.query_timeout",
	"mongo_min_pool_size":   "mongo.min_pool_size",
	"mongo_max_pool_size":   "mongo.max_pool_size",

	// Model artifacts
	"artifacts_dir":         "model.artifacts_dir",
	"user_map_file":         "model.user_map_file",
	"item_map_file":         "model.item_map_file",
	"factors_file":          "model.factors_file",
	"model_watch":           "model.watch",
	"model_reload_debounce": "model.reload_debounce",

	// Engine
	"recommend_default_n":          "recommend.default_user_n",
	"recommend_similar_n":          "recommend.default_similar_n",
	"recommend_max_n":              "recommend.max_n",
	"recommend_overfetch_factor":   "recommend.overfetch_factor",
	"recommend_trending_overfetch": "recommend.trending_overfetch",
	"recommend_preference_window":  "recommend.preference_window",
	"recommend_trending_window":    "recommend.trending_window",

	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"admin_token":      "server.admin_token",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// returns "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
