// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cinerec/internal/models"
)

// playbackDoc is one playback_state document. Ids are decoded loosely since
// older documents store them as strings.
type playbackDoc struct {
	UserID        interface{} `bson:"userId"`
	MovieID       interface{} `bson:"movieId"`
	SeasonNumber  *int        `bson:"seasonNumber"`
	EpisodeNumber *int        `bson:"episodeNumber"`
	ProgressPct   interface{} `bson:"progressPct"`
	Finished      bool        `bson:"finished"`
	LastActionAt  time.Time   `bson:"lastActionAt"`
}

var playbackProjection = bson.M{
	"userId": 1, "movieId": 1, "seasonNumber": 1, "episodeNumber": 1,
	"progressPct": 1, "finished": 1, "lastActionAt": 1,
}

func (d *playbackDoc) record() models.PlaybackRecord {
	pct, _ := number(d.ProgressPct)
	return models.PlaybackRecord{
		UserID:        idString(d.UserID),
		ItemID:        idString(d.MovieID),
		SeasonNumber:  d.SeasonNumber,
		EpisodeNumber: d.EpisodeNumber,
		ProgressPct:   pct,
		Finished:      d.Finished,
		LastActionAt:  d.LastActionAt,
	}
}

type likedItemDoc struct {
	RefID interface{} `bson:"refId"`
	Kind  string      `bson:"kind"`
}

type userDoc struct {
	ID         interface{}    `bson:"_id"`
	LikedItems []likedItemDoc `bson:"likedItems"`
}

func (d *userDoc) likes() []models.LikedItem {
	out := make([]models.LikedItem, 0, len(d.LikedItems))
	for _, it := range d.LikedItems {
		ref := idString(it.RefID)
		if ref == "" {
			continue
		}
		out = append(out, models.LikedItem{RefID: ref, Kind: it.Kind})
	}
	return out
}

// titleDoc is the projected shape of a movies or series document.
type titleDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Title      string             `bson:"title"`
	Name       string             `bson:"name"`
	PosterURL  string             `bson:"posterUrl"`
	Image      *string            `bson:"image"`
	TitleImage *string            `bson:"titleImage"`
	Year       interface{}        `bson:"year"`
	Category   string             `bson:"category"`
	Rate       interface{}        `bson:"rate"`
}

var titleProjection = bson.M{
	"title": 1, "name": 1, "posterUrl": 1, "image": 1, "titleImage": 1,
	"year": 1, "category": 1, "rate": 1,
}

// metadata applies the display fallbacks: title then name, and posterUrl
// then image then titleImage.
func (d *titleDoc) metadata() models.Metadata {
	m := models.Metadata{
		Title:      d.Title,
		PosterURL:  d.PosterURL,
		Image:      nonEmpty(d.Image),
		TitleImage: nonEmpty(d.TitleImage),
		Category:   strings.TrimSpace(d.Category),
	}
	if m.Title == "" {
		m.Title = d.Name
	}
	if m.PosterURL == "" && m.Image != nil {
		m.PosterURL = *m.Image
	}
	if m.PosterURL == "" && m.TitleImage != nil {
		m.PosterURL = *m.TitleImage
	}
	if year, ok := number(d.Year); ok && year > 0 {
		y := int(year)
		m.Year = &y
	}
	if rate, ok := number(d.Rate); ok {
		m.Rating = rate
	}
	return m
}

type trendingDoc struct {
	ID    interface{} `bson:"_id"`
	Count int64       `bson:"c"`
}

// idString renders an ObjectID or string id as hex text. Anything else is "".
func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		if id.IsZero() {
			return ""
		}
		return id.Hex()
	case string:
		return strings.TrimSpace(id)
	default:
		return ""
	}
}

// objectIDs parses hex ids, dropping the ones that are not valid ObjectIDs.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

// number converts the numeric BSON types and numeric strings to float64.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
