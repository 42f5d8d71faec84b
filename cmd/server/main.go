// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package main is the entry point for the Cinerec recommendation server.
//
// Cinerec serves personalized movie and series recommendations from a trained
// matrix-factorization model. Titles, playback history, likes and trending
// counts are read from MongoDB at request time; the model artifacts (identity
// maps and factor matrices) are read from disk and hot-reloaded when the
// exporter or training job writes new ones.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml and environment variables (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Catalog: MongoDB client wrapped in a circuit breaker
//  4. Model: artifacts loaded into an atomically swapped bundle
//  5. Engine and HTTP router
//  6. Supervisor tree: model watcher and HTTP server
//
// # Configuration
//
// The common settings keep their historical environment names:
//
//	MONGO_URL=mongodb://localhost:27017
//	DB_NAME=Movie-web
//	ARTIFACTS_DIR=artifacts
//	HTTP_PORT=8002
//	CORS_ORIGINS=http://localhost:3000
//	ADMIN_TOKEN=...           # enables POST /admin/reload
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the supervisor tree: the HTTP server drains
// in-flight requests, the watcher stops, and the MongoDB client disconnects.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinerec/internal/api"
	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/supervisor"
	"github.com/tomtom215/cinerec/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("database", cfg.Mongo.Database).
		Str("artifacts_dir", cfg.Model.ArtifactsDir).
		Str("addr", cfg.Server.Addr()).
		Bool("model_watch", cfg.Model.Watch).
		Msg("Starting Cinerec")

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, disconnect, err := catalog.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Str("database", cfg.Mongo.Database).Msg("Failed to connect to MongoDB")
	}
	defer disconnect()

	store := catalog.NewStore(client, &cfg.Mongo)
	source := catalog.NewBreaker(store, catalog.DefaultBreakerSettings())
	logging.Info().Str("database", store.Database()).Msg("Catalog connected")

	holder := factors.NewHolder(nil)
	watcher, err := services.NewModelWatcher(services.ModelWatcherConfig{
		Paths:    artifactPaths(&cfg.Model),
		Debounce: cfg.Model.ReloadDebounce,
	}, holder, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create model watcher")
	}

	// The initial load may leave a not-ready bundle in place; the server still
	// starts and reports the reason on /health.
	if _, err := watcher.Reload(ctx); err != nil {
		logging.Warn().Err(err).Msg("Model not ready at startup; user recommendations will return 503")
	} else {
		logging.Info().Str("model", holder.Load().String()).Msg("Model loaded")
	}

	engine, err := recommend.NewEngine(recommendConfig(&cfg.Recommend), holder, source, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	handler, err := api.NewHandler(api.Dependencies{
		Engine:   engine,
		Catalog:  source,
		Database: store.Database(),
		Reloader: watcher,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	chiMiddleware := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: api.DefaultChiMiddlewareConfig().CORSAllowedMethods,
		CORSAllowedHeaders: api.DefaultChiMiddlewareConfig().CORSAllowedHeaders,
		CORSMaxAge:         api.DefaultChiMiddlewareConfig().CORSMaxAge,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})
	router := api.NewRouter(handler, chiMiddleware, cfg.Server.AdminToken)
	if cfg.Server.AdminToken == "" {
		logging.Info().Msg("ADMIN_TOKEN not set; POST /admin/reload is disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Model.Watch {
		tree.AddModelService(watcher)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // best effort report at exit
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Cinerec stopped")
}

func artifactPaths(cfg *config.ModelConfig) factors.ArtifactPaths {
	return factors.ArtifactPaths{
		Dir:     cfg.ArtifactsDir,
		UserMap: cfg.UserMapFile,
		ItemMap: cfg.ItemMapFile,
		Factors: cfg.FactorsFile,
	}
}

func recommendConfig(cfg *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		DefaultUserN:      cfg.DefaultUserN,
		DefaultSimilarN:   cfg.DefaultSimilarN,
		MaxN:              cfg.MaxN,
		OverfetchFactor:   cfg.OverfetchFactor,
		TrendingOverfetch: cfg.TrendingOverfetch,
		PreferenceWindow:  cfg.PreferenceWindow,
		TrendingWindow:    cfg.TrendingWindow,
	}
}
