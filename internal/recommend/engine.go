// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/models"
)

// ErrInvalidCount is returned for a result count outside [1, MaxN].
var ErrInvalidCount = errors.New("invalid result count")

// noLowerBound asks the catalog for playback regardless of age.
var noLowerBound time.Time

// Engine serves user and similar-item recommendations from the current model
// bundle and the catalog. It is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	models  *factors.Holder
	catalog Catalog
	now     func() time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, holder *factors.Holder, catalog Catalog, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if holder == nil {
		return nil, errors.New("model holder is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	return &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		models:  holder,
		catalog: catalog,
		now:     time.Now,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// Model returns the bundle currently being served.
func (e *Engine) Model() *factors.Bundle { return e.models.Load() }

func (e *Engine) checkCount(n int) error {
	if n < 1 || n > e.config.MaxN {
		return fmt.Errorf("%w: n must be between 1 and %d, got %d", ErrInvalidCount, e.config.MaxN, n)
	}
	return nil
}

// RecommendForUser returns up to n items for a user.
//
// The request is refused with factors.ErrNotReady when the model is not
// loaded. Unknown users take the cold-start path. Known users take the model
// path and fall back to trending when it keeps nothing. Items the user has
// already played are never returned.
func (e *Engine) RecommendForUser(ctx context.Context, userID string, n int) (*UserResult, error) {
	if err := e.checkCount(n); err != nil {
		return nil, err
	}

	bundle := e.models.Load()
	if !bundle.Ready() {
		return nil, factors.ErrNotReady
	}

	logger := e.requestLogger(ctx).With().Str("user_id", userID).Logger()

	var (
		prefs    models.CategorySet
		consumed map[models.ItemKey]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs, err = e.InferPreferences(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		consumed, err = e.consumedKeys(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &UserResult{UserID: userID, Preferences: prefs}

	if !bundle.KnowsUser(userID) {
		items, err := e.Trending(ctx, prefs, n, consumed)
		if err != nil {
			return nil, err
		}
		result.Items = items
		result.ColdStart = true
		result.Path = PathColdStart
		e.record("user", result.Path, len(items))
		logger.Debug().Int("items", len(items)).Int("preferences", len(prefs)).Msg("cold start recommendation")
		return result, nil
	}

	scores, _, err := bundle.UserScores(userID)
	if err != nil {
		return nil, err
	}
	masked := exclusionMask(bundle, scores, consumed)

	items, err := e.rankForUser(ctx, bundle, masked, prefs, n)
	if err != nil {
		return nil, err
	}
	result.Path = PathModel

	if len(items) == 0 {
		items, err = e.Trending(ctx, prefs, n, consumed)
		if err != nil {
			return nil, err
		}
		result.Path = PathFallback
	}
	result.Items = items

	e.record("user", result.Path, len(items))
	logger.Debug().
		Str("path", string(result.Path)).
		Int("excluded", scores.Len()-masked.Available()).
		Int("preferences", len(prefs)).
		Int("items", len(items)).
		Msg("recommendation complete")
	return result, nil
}

// Similar returns up to n items closest to key in factor space. The source
// item is never part of the result. An unknown key yields an empty list.
func (e *Engine) Similar(ctx context.Context, key models.ItemKey, n int) (*SimilarResult, error) {
	if err := e.checkCount(n); err != nil {
		return nil, err
	}

	bundle := e.models.Load()
	if !bundle.Ready() {
		return nil, factors.ErrNotReady
	}

	result := &SimilarResult{ItemKey: key, Items: []models.RecommendedItem{}}

	scores, ok, err := bundle.SimilarScores(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Path = PathUnknownItem
		e.record("similar", result.Path, 0)
		return result, nil
	}

	take := n
	if limit := scores.Len() - 1; take > limit {
		take = limit
	}
	items, err := e.filterCandidates(ctx, bundle, TopK(scores, take), models.NewCategorySet(), n)
	if err != nil {
		return nil, err
	}
	result.Items = items
	result.Path = PathModel

	e.record("similar", result.Path, len(items))
	logger := e.requestLogger(ctx)
	logger.Debug().
		Str("item_key", key.String()).
		Int("items", len(items)).
		Msg("similar items complete")
	return result, nil
}

// requestLogger adds the request and correlation ids from ctx to the engine logger.
func (e *Engine) requestLogger(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()
	if id := logging.RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	return logCtx.Logger()
}

func (e *Engine) record(endpoint string, path Path, items int) {
	metrics.RecordRecommendation(endpoint, string(path), items)
}
