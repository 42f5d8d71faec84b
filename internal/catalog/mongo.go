// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/metrics"
)

const disconnectTimeout = 10 * time.Second

// commandMonitor feeds every driver command into the Mongo metrics.
func commandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			metrics.RecordMongoCommand(evt.CommandName, true, evt.Duration)
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			metrics.RecordMongoCommand(evt.CommandName, false, evt.Duration)
		},
	}
}

// NewMongoClient connects to MongoDB and verifies the primary is reachable.
// The returned cleanup disconnects the client and must be called on shutdown.
func NewMongoClient(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("cinerec").
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMonitor(commandMonitor())

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logging.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}

	return client, cleanup, nil
}
