// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/models"
)

// consumedKeys collects every item the user has playback for, typed by Classify.
func (e *Engine) consumedKeys(ctx context.Context, userID string) (map[models.ItemKey]struct{}, error) {
	records, err := e.catalog.UserPlayback(ctx, userID, noLowerBound)
	if err != nil {
		return nil, fmt.Errorf("consumed items: %w", err)
	}
	keys := make(map[models.ItemKey]struct{}, len(records))
	for _, r := range records {
		if r.ItemID == "" {
			continue
		}
		keys[r.Key()] = struct{}{}
	}
	return keys, nil
}

// exclusionMask masks the dense indices of consumed items. Consumed items the
// model does not know are ignored.
func exclusionMask(bundle *factors.Bundle, scores factors.Scores, consumed map[models.ItemKey]struct{}) factors.Scores {
	if len(consumed) == 0 {
		return scores
	}
	indices := make([]int, 0, len(consumed))
	for key := range consumed {
		if idx, ok := bundle.ItemIndex(key); ok {
			indices = append(indices, idx)
		}
	}
	return scores.Exclude(indices...)
}

// filterCandidates enriches candidates in rank order and keeps those with
// metadata whose category passes prefs, stopping at n.
func (e *Engine) filterCandidates(ctx context.Context, bundle *factors.Bundle, candidates []Candidate, prefs models.CategorySet, n int) ([]models.RecommendedItem, error) {
	if len(candidates) == 0 {
		return []models.RecommendedItem{}, nil
	}

	keys := make([]models.ItemKey, len(candidates))
	for i, c := range candidates {
		keys[i] = bundle.Item(c.Index)
	}
	meta, err := e.catalog.Metadata(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("candidate metadata: %w", err)
	}

	out := make([]models.RecommendedItem, 0, n)
	for _, key := range keys {
		m, ok := meta[key]
		if !ok {
			continue
		}
		if !prefs.Allows(m.Category) {
			continue
		}
		out = append(out, models.NewRecommendedItem(key, m))
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

// rankForUser runs the model path: mask, over-fetch, enrich, filter.
func (e *Engine) rankForUser(ctx context.Context, bundle *factors.Bundle, scores factors.Scores, prefs models.CategorySet, n int) ([]models.RecommendedItem, error) {
	take := OverfetchCount(n, e.config.OverfetchFactor, scores.Len())
	return e.filterCandidates(ctx, bundle, TopK(scores, take), prefs, n)
}
