// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package main is the offline interaction exporter.
//
// It scans the catalog (playback_state, users.likedItems and movies.reviews),
// weights every interaction, and writes into the artifacts directory:
//
//	user_id_map.json    {"users": [...]}   sorted user ids
//	item_id_map.json    {"items": [...]}   sorted "movie:<id>" / "series:<id>" keys
//	interactions.csv    user_idx,item_idx,score
//
// Both maps carry a "generation" fingerprint of the two lists. The training
// job reads interactions.csv and writes factors.json next to the maps with
// the same generation. A server watching the directory keeps serving its
// current model until the factors match the new maps, then swaps.
//
// The exporter shares the server's configuration (MONGO_URL, DB_NAME,
// WATCH_COLLECTION, USERS_COLLECTION, MOVIES_COLLECTION, SERIES_COLLECTION,
// ARTIFACTS_DIR). It exits non-zero when the catalog has no titles or no
// usable interactions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/export"
	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/logging"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("database", cfg.Mongo.Database).
		Str("playback_collection", cfg.Mongo.PlaybackCollection).
		Str("users_collection", cfg.Mongo.UsersCollection).
		Str("movies_collection", cfg.Mongo.MoviesCollection).
		Str("series_collection", cfg.Mongo.SeriesCollection).
		Str("artifacts_dir", cfg.Model.ArtifactsDir).
		Msg("Starting interaction export")

	client, disconnect, err := catalog.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Str("database", cfg.Mongo.Database).Msg("Failed to connect to MongoDB")
	}

	exporter := export.NewExporter(
		catalog.NewStore(client, &cfg.Mongo),
		factors.ArtifactPaths{
			Dir:     cfg.Model.ArtifactsDir,
			UserMap: cfg.Model.UserMapFile,
			ItemMap: cfg.Model.ItemMapFile,
		},
		export.DefaultWeights(),
		logging.With().Str("database", cfg.Mongo.Database).Logger(),
	)

	summary, err := exporter.Run(ctx)
	disconnect()
	if err != nil {
		logging.Err(err).Msg("Export failed")
		os.Exit(1)
	}

	logging.Info().
		Str("generation", summary.Generation).
		Int("playback", summary.Counts.Playback).
		Int("likes", summary.Counts.Likes).
		Int("reviews", summary.Counts.Reviews).
		Msg("Next: train the model on interactions.csv")
}
