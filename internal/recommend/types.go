// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/cinerec/internal/models"
)

// Catalog is the engine's view of the document store. It is implemented by
// the catalog package; tests use an in-memory fake.
type Catalog interface {
	// UserPlayback returns the user's playback records with LastActionAt at or
	// after since. A zero since returns all records. Unknown users yield none.
	UserPlayback(ctx context.Context, userID string, since time.Time) ([]models.PlaybackRecord, error)

	// LikedItems returns the user's explicit likes.
	LikedItems(ctx context.Context, userID string) ([]models.LikedItem, error)

	// Metadata resolves item keys to display metadata. Keys without a catalog
	// document are absent from the result.
	Metadata(ctx context.Context, keys []models.ItemKey) (map[models.ItemKey]models.Metadata, error)

	// Trending returns item ids by playback count since the given time,
	// highest count first, at most limit entries.
	Trending(ctx context.Context, since time.Time, limit int) ([]models.TrendingEntry, error)
}

// Path names how a recommendation response was produced.
type Path string

const (
	PathModel       Path = "model"
	PathFallback    Path = "fallback"
	PathColdStart   Path = "cold_start"
	PathUnknownItem Path = "unknown_item"
)

// UserResult is the outcome of a user recommendation request.
type UserResult struct {
	UserID      string
	Items       []models.RecommendedItem
	ColdStart   bool
	Path        Path
	Preferences models.CategorySet
}

// SimilarResult is the outcome of a similar-items request.
type SimilarResult struct {
	ItemKey models.ItemKey
	Items   []models.RecommendedItem
	Path    Path
}

// Candidate is a scored item position before enrichment.
type Candidate struct {
	Index int
	Score float64
}
