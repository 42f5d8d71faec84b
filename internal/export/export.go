// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package export builds the training input of the factor model from the
// catalog: implicit feedback from playback progress, explicit likes and
// movie review ratings, summed per user and item.
//
// Only items that still exist in the movie or series collections are kept.
// The output is the pair of identity maps the server loads plus an
// interactions table (user_idx,item_idx,score) for the training job. Both
// maps carry a generation; the server only serves factors stamped with the
// same generation, so a fresh export never pairs with stale factors.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/models"
)

var (
	// ErrNoActiveItems is returned when both title collections are empty.
	ErrNoActiveItems = errors.New("no active movies or series found")

	// ErrNoInteractions is returned when no interaction survives filtering.
	ErrNoInteractions = errors.New("no interactions found")
)

// Source streams the catalog collections the export reads.
type Source interface {
	ActiveIDs(ctx context.Context, t models.MediaType) (map[string]struct{}, error)
	EachPlayback(ctx context.Context, fn func(models.PlaybackRecord) error) error
	EachUserLikes(ctx context.Context, fn func(userID string, likes []models.LikedItem) error) error
	EachMovieReview(ctx context.Context, fn func(movieID string, reviews []models.Review) error) error
}

// Summary describes a finished export.
type Summary struct {
	Generation   string
	Users        int
	Items        int
	Interactions int
	Counts       Counts
	Duration     time.Duration
}

// Exporter reads a Source and writes the training artifacts.
type Exporter struct {
	source  Source
	paths   factors.ArtifactPaths
	weights Weights
	logger  zerolog.Logger
}

// NewExporter creates an exporter writing into paths.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExporter(source Source, paths factors.ArtifactPaths, weights Weights, logger zerolog.Logger) *Exporter {
	return &Exporter{
		source:  source,
		paths:   paths,
		weights: weights,
		logger:  logger.With().Str("component", "exporter").Logger(),
	}
}

// Build reads the catalog and returns the indexed dataset without writing it.
func (e *Exporter) Build(ctx context.Context) (*Dataset, Counts, error) {
	active, err := e.activeItems(ctx)
	if err != nil {
		return nil, Counts{}, err
	}
	if active.Empty() {
		return nil, Counts{}, ErrNoActiveItems
	}
	e.logger.Info().
		Int("movies", len(active.Movies)).
		Int("series", len(active.Series)).
		Msg("Active items loaded")

	acc := NewAccumulator(e.weights, active)

	if err := e.source.EachPlayback(ctx, func(r models.PlaybackRecord) error {
		acc.AddPlayback(r)
		return nil
	}); err != nil {
		return nil, Counts{}, fmt.Errorf("read playback: %w", err)
	}
	e.logger.Info().Int("interactions", acc.Counts().Playback).Msg("Playback interactions read")

	if err := e.source.EachUserLikes(ctx, func(userID string, likes []models.LikedItem) error {
		for _, l := range likes {
			acc.AddLike(userID, l)
		}
		return nil
	}); err != nil {
		return nil, Counts{}, fmt.Errorf("read liked items: %w", err)
	}
	e.logger.Info().Int("interactions", acc.Counts().Likes).Msg("Liked item interactions read")

	if err := e.source.EachMovieReview(ctx, func(movieID string, reviews []models.Review) error {
		for _, rv := range reviews {
			acc.AddReview(movieID, rv)
		}
		return nil
	}); err != nil {
		return nil, Counts{}, fmt.Errorf("read reviews: %w", err)
	}
	e.logger.Info().Int("interactions", acc.Counts().Reviews).Msg("Review interactions read")

	if acc.Len() == 0 {
		return nil, acc.Counts(), ErrNoInteractions
	}
	return acc.Dataset(), acc.Counts(), nil
}

// Run builds the dataset and writes the artifacts.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	ds, counts, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := Write(e.paths, ds); err != nil {
		return nil, err
	}

	summary := &Summary{
		Generation:   ds.Generation,
		Users:        len(ds.Users),
		Items:        len(ds.Items),
		Interactions: len(ds.Interactions),
		Counts:       counts,
		Duration:     time.Since(start),
	}
	e.logger.Info().
		Str("generation", summary.Generation).
		Int("users", summary.Users).
		Int("items", summary.Items).
		Int("interactions", summary.Interactions).
		Dur("duration", summary.Duration).
		Str("dir", e.paths.Dir).
		Msg("Export complete")
	return summary, nil
}

func (e *Exporter) activeItems(ctx context.Context) (ActiveItems, error) {
	var active ActiveItems
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active.Movies, err = e.source.ActiveIDs(gctx, models.MediaMovie)
		if err != nil {
			return fmt.Errorf("active movies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		active.Series, err = e.source.ActiveIDs(gctx, models.MediaSeries)
		if err != nil {
			return fmt.Errorf("active series: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ActiveItems{}, err
	}
	return active, nil
}
