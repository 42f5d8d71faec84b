// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies the built-in defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("Mongo.URI = %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "Movie-web" {
		t.Errorf("Mongo.Database = %q, want Movie-web", cfg.Mongo.Database)
	}
	if cfg.Mongo.PlaybackCollection != "playback_state" {
		t.Errorf("Mongo.PlaybackCollection = %q, want playback_state", cfg.Mongo.PlaybackCollection)
	}
	if cfg.Model.ArtifactsDir != "artifacts" {
		t.Errorf("Model.ArtifactsDir = %q, want artifacts", cfg.Model.ArtifactsDir)
	}
	if cfg.Server.Port != 8002 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server = %s, want 0.0.0.0:8002", cfg.Server.Addr())
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}

	r := cfg.Recommend
	if r.DefaultUserN != 8 || r.DefaultSimilarN != 12 || r.MaxN != 50 {
		t.Errorf("Recommend n defaults = %d/%d/%d, want 8/12/50", r.DefaultUserN, r.DefaultSimilarN, r.MaxN)
	}
	if r.OverfetchFactor != 5 || r.TrendingOverfetch != 3 {
		t.Errorf("Recommend over-fetch = %d/%d, want 5/3", r.OverfetchFactor, r.TrendingOverfetch)
	}
	if r.PreferenceWindow != 60*24*time.Hour || r.TrendingWindow != 30*24*time.Hour {
		t.Errorf("Recommend windows = %v/%v", r.PreferenceWindow, r.TrendingWindow)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"MONGO_URL", "mongo.uri"},
		{"DB_NAME", "mongo.database"},
		{"WATCH_COLLECTION", "mongo.playback_collection"},
		{"SERIES_COLLECTION", "mongo.series_collection"},
		{"ARTIFACTS_DIR", "model.artifacts_dir"},
		{"HTTP_PORT", "server.port"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"RECOMMEND_OVERFETCH_FACTOR", "recommend.overfetch_factor"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

// isolate points config file discovery at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Chdir(dir)
	return dir
}

func TestLoadWithKoanf_EnvVars(t *testing.T) {
	isolate(t)

	t.Setenv("MONGO_URL", "mongodb://catalog.internal:27017")
	t.Setenv("DB_NAME", "films")
	t.Setenv("WATCH_COLLECTION", "watch_events")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RECOMMEND_TRENDING_WINDOW", "168h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Mongo.URI != "mongodb://catalog.internal:27017" {
		t.Errorf("Mongo.URI = %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "films" || cfg.Mongo.PlaybackCollection != "watch_events" {
		t.Errorf("Mongo = %s/%s", cfg.Mongo.Database, cfg.Mongo.PlaybackCollection)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Recommend.TrendingWindow != 7*24*time.Hour {
		t.Errorf("TrendingWindow = %v, want 168h", cfg.Recommend.TrendingWindow)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Unset values keep their defaults.
	if cfg.Mongo.UsersCollection != "users" {
		t.Errorf("UsersCollection = %q, want users", cfg.Mongo.UsersCollection)
	}
	if cfg.Recommend.MaxN != 50 {
		t.Errorf("MaxN = %d, want 50", cfg.Recommend.MaxN)
	}
}

func TestLoadWithKoanf_ConfigFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)

	content := `
mongo:
  database: from-file
  movies_collection: films
model:
  artifacts_dir: /srv/models
  watch: false
recommend:
  default_user_n: 10
server:
  port: 8100
`
	path := filepath.Join(dir, "cinerec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8200")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Mongo.Database != "from-file" || cfg.Mongo.MoviesCollection != "films" {
		t.Errorf("Mongo = %+v", cfg.Mongo)
	}
	if cfg.Model.ArtifactsDir != "/srv/models" || cfg.Model.Watch {
		t.Errorf("Model = %+v", cfg.Model)
	}
	if cfg.Recommend.DefaultUserN != 10 {
		t.Errorf("DefaultUserN = %d, want 10", cfg.Recommend.DefaultUserN)
	}
	if cfg.Server.Port != 8200 {
		t.Errorf("Server.Port = %d, want 8200 (env over file)", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_Validation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{
			name:    "non-mongo uri",
			envVars: map[string]string{"MONGO_URL": "postgres://localhost"},
			errMsg:  "URI must start with mongodb",
		},
		{
			name:    "max n above 50",
			envVars: map[string]string{"RECOMMEND_MAX_N": "80"},
			errMsg:  "MaxN must be at most 50",
		},
		{
			name:    "default above max",
			envVars: map[string]string{"RECOMMEND_MAX_N": "5"},
			errMsg:  "RECOMMEND_DEFAULT_N (8) must not exceed RECOMMEND_MAX_N (5)",
		},
		{
			name:    "bad port",
			envVars: map[string]string{"HTTP_PORT": "70000"},
			errMsg:  "HTTP_PORT must be between 1 and 65535",
		},
		{
			name:    "bad log format",
			envVars: map[string]string{"LOG_FORMAT": "xml"},
			errMsg:  "Format must be one of",
		},
		{
			name:    "rate limit window too small",
			envVars: map[string]string{"RATE_LIMIT_WINDOW": "10ms"},
			errMsg:  "RATE_LIMIT_WINDOW must be between",
		},
		{
			name:    "pool sizes inverted",
			envVars: map[string]string{"MONGO_MIN_POOL_SIZE": "20", "MONGO_MAX_POOL_SIZE": "10"},
			errMsg:  "MONGO_MIN_POOL_SIZE (20) must not exceed MONGO_MAX_POOL_SIZE (10)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadWithKoanf_RateLimitDisabledSkipsBounds(t *testing.T) {
	isolate(t)
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("RateLimitDisabled should be true")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv(ConfigPathEnvVar, "")
	if got := findConfigFile(); got != "" && !strings.HasPrefix(got, "/etc/") {
		t.Errorf("findConfigFile() = %q, want none", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	custom := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8002}
	if got := s.Addr(); got != "0.0.0.0:8002" {
		t.Errorf("Addr() = %q", got)
	}
	if got := (ServerConfig{Host: "::1", Port: 80}).Addr(); got != "[::1]:80" {
		t.Errorf("Addr() = %q", got)
	}
}
