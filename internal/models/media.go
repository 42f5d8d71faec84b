// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidMediaType is returned when a media type is neither movie nor series.
var ErrInvalidMediaType = errors.New("media type must be 'movie' or 'series'")

// MediaType distinguishes the two catalog collections. Movie and series ids
// live in separate id spaces, so an id is only meaningful together with its type.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
)

// ParseMediaType validates a lowercase media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaMovie, MediaSeries:
		return MediaType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
}

// ItemKey is the composite identity of a catalog item.
type ItemKey struct {
	Type MediaType
	ID   string
}

// NewItemKey builds an item key.
func NewItemKey(t MediaType, id string) ItemKey {
	return ItemKey{Type: t, ID: id}
}

// String formats the key as "<type>:<id>", the form used in model artifacts.
func (k ItemKey) String() string {
	return string(k.Type) + ":" + k.ID
}

// ParseItemKey splits an artifact key on its first colon. Keys without a
// type prefix are movie keys.
func ParseItemKey(s string) (ItemKey, error) {
	prefix, id, found := strings.Cut(s, ":")
	if !found {
		prefix, id = string(MediaMovie), s
	}
	if id == "" {
		return ItemKey{}, fmt.Errorf("item key %q has an empty id", s)
	}
	t, err := ParseMediaType(prefix)
	if err != nil {
		return ItemKey{}, fmt.Errorf("item key %q: %w", s, err)
	}
	return ItemKey{Type: t, ID: id}, nil
}

// PlaybackRecord is one watch-progress document for a user and a movie or an episode.
// SeasonNumber and EpisodeNumber are nil when the document does not carry them.
type PlaybackRecord struct {
	UserID        string
	ItemID        string
	SeasonNumber  *int
	EpisodeNumber *int
	ProgressPct   float64
	Finished      bool
	LastActionAt  time.Time
}

// Classify reports which collection a playback record refers to.
// A record with a season number or an episode number is a series record;
// anything else is a movie record.
func Classify(r PlaybackRecord) MediaType {
	if r.SeasonNumber != nil || r.EpisodeNumber != nil {
		return MediaSeries
	}
	return MediaMovie
}

// Key returns the item key the record refers to.
func (r PlaybackRecord) Key() ItemKey {
	return ItemKey{Type: Classify(r), ID: r.ItemID}
}

// LikedItem is an explicit like stored on the user document.
// Kind is "Movie" or "Series"; other kinds are ignored.
type LikedItem struct {
	RefID string
	Kind  string
}

// Key maps the like to an item key. ok is false for unknown kinds or empty refs.
func (l LikedItem) Key() (ItemKey, bool) {
	if l.RefID == "" {
		return ItemKey{}, false
	}
	switch strings.TrimSpace(l.Kind) {
	case "Movie":
		return ItemKey{Type: MediaMovie, ID: l.RefID}, true
	case "Series":
		return ItemKey{Type: MediaSeries, ID: l.RefID}, true
	default:
		return ItemKey{}, false
	}
}

// TrendingEntry is a popularity count for an item id over a time window.
// The id is untyped: playback records store movie and series ids in the same field.
type TrendingEntry struct {
	ItemID string
	Count  int64
}

// NormalizeCategory trims and lowercases a category. Category comparison
// always happens on normalized values.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CategorySet is a set of normalized categories.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from raw category strings, skipping empties.
func NewCategorySet(categories ...string) CategorySet {
	set := make(CategorySet, len(categories))
	for _, c := range categories {
		set.Add(c)
	}
	return set
}

// Add normalizes and inserts a category. Empty categories are ignored.
func (s CategorySet) Add(category string) {
	if c := NormalizeCategory(category); c != "" {
		s[c] = struct{}{}
	}
}

// Contains reports membership of an already normalized category.
func (s CategorySet) Contains(category string) bool {
	_, ok := s[category]
	return ok
}

// Allows reports whether an item with the given raw category passes a
// preference filter built from this set. An empty set allows everything.
func (s CategorySet) Allows(category string) bool {
	return len(s) == 0 || s.Contains(NormalizeCategory(category))
}

// Sorted returns the categories in lexical order.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Review is one entry of a movie document's reviews array.
type Review struct {
	UserID string
	Rating float64
}
