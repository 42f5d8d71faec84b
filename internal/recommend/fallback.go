// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinerec/internal/models"
)

// Trending returns up to n popular items from the trending window, in count
// order. Each id resolves to a movie if a movie document exists, otherwise to
// a series; ids with neither are skipped. Items in exclude are skipped. When
// prefs is non-empty only matching categories are kept, and an empty result
// stays empty.
//
// Trending never reads the factor model.
func (e *Engine) Trending(ctx context.Context, prefs models.CategorySet, n int, exclude map[models.ItemKey]struct{}) ([]models.RecommendedItem, error) {
	if n <= 0 {
		return []models.RecommendedItem{}, nil
	}

	since := e.now().Add(-e.config.TrendingWindow)
	entries, err := e.catalog.Trending(ctx, since, n*e.config.TrendingOverfetch)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	if len(entries) == 0 {
		return []models.RecommendedItem{}, nil
	}

	keys := make([]models.ItemKey, 0, 2*len(entries))
	for _, entry := range entries {
		if entry.ItemID == "" {
			continue
		}
		keys = append(keys,
			models.NewItemKey(models.MediaMovie, entry.ItemID),
			models.NewItemKey(models.MediaSeries, entry.ItemID),
		)
	}
	meta, err := e.catalog.Metadata(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("trending metadata: %w", err)
	}

	out := make([]models.RecommendedItem, 0, n)
	seen := make(map[models.ItemKey]struct{}, n)
	for _, entry := range entries {
		key, m, ok := resolveTrending(entry.ItemID, meta)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if _, skip := exclude[key]; skip {
			continue
		}
		if !prefs.Allows(m.Category) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.NewRecommendedItem(key, m))
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

// resolveTrending types an untyped trending id, movie first.
func resolveTrending(id string, meta map[models.ItemKey]models.Metadata) (models.ItemKey, models.Metadata, bool) {
	if id == "" {
		return models.ItemKey{}, models.Metadata{}, false
	}
	movie := models.NewItemKey(models.MediaMovie, id)
	if m, ok := meta[movie]; ok {
		return movie, m, true
	}
	series := models.NewItemKey(models.MediaSeries, id)
	if m, ok := meta[series]; ok {
		return series, m, true
	}
	return models.ItemKey{}, models.Metadata{}, false
}
