// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/models"
)

// InferPreferences derives the user's category set from playback inside the
// preference window and from liked items. Categories are normalized and
// empties dropped; an empty set is a valid answer.
func (e *Engine) InferPreferences(ctx context.Context, userID string) (models.CategorySet, error) {
	since := e.now().Add(-e.config.PreferenceWindow)

	var (
		recent []models.PlaybackRecord
		likes  []models.LikedItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = e.catalog.UserPlayback(gctx, userID, since)
		if err != nil {
			return fmt.Errorf("recent playback: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		likes, err = e.catalog.LikedItems(gctx, userID)
		if err != nil {
			return fmt.Errorf("liked items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[models.ItemKey]struct{}, len(recent)+len(likes))
	keys := make([]models.ItemKey, 0, len(recent)+len(likes))
	addKey := func(k models.ItemKey) {
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, r := range recent {
		if r.ItemID != "" {
			addKey(r.Key())
		}
	}
	for _, l := range likes {
		if k, ok := l.Key(); ok {
			addKey(k)
		}
	}

	prefs := models.NewCategorySet()
	if len(keys) == 0 {
		metrics.RecordPreferenceSet(0)
		return prefs, nil
	}

	meta, err := e.catalog.Metadata(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("preference metadata: %w", err)
	}
	for _, m := range meta {
		prefs.Add(m.Category)
	}

	metrics.RecordPreferenceSet(len(prefs))
	return prefs, nil
}
