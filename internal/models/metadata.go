// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package models

// Metadata is the display record for a movie or series.
//
// Title, PosterURL and Category are always present (possibly empty) after
// resolution from the catalog; Image, TitleImage and Year are nil when the
// source document does not carry them. Category is the trimmed display
// value in its catalog casing; preference matching normalizes it through
// CategorySet.
type Metadata struct {
	Title      string
	PosterURL  string
	Image      *string
	TitleImage *string
	Year       *int
	Category   string
	Rating     float64
}

// RecommendedItem is one entry of a recommendation response.
type RecommendedItem struct {
	Type       MediaType `json:"type"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	PosterURL  string    `json:"posterUrl"`
	Image      *string   `json:"image,omitempty"`
	TitleImage *string   `json:"titleImage,omitempty"`
	Year       *int      `json:"year,omitempty"`
	Category   string    `json:"category"`
	Rating     float64   `json:"rating"`
}

// NewRecommendedItem joins an item key with its metadata.
//
//nolint:gocritic // hugeParam: Metadata is copied into the response value
func NewRecommendedItem(key ItemKey, meta Metadata) RecommendedItem {
	return RecommendedItem{
		Type:       key.Type,
		ID:         key.ID,
		Title:      meta.Title,
		PosterURL:  meta.PosterURL,
		Image:      meta.Image,
		TitleImage: meta.TitleImage,
		Year:       meta.Year,
		Category:   meta.Category,
		Rating:     meta.Rating,
	}
}
