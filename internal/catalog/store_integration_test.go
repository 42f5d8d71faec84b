// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

//go:build integration

package catalog

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/models"
	"github.com/tomtom215/cinerec/internal/testinfra"
)

type fixture struct {
	store *Store
	user  primitive.ObjectID
	movie primitive.ObjectID
	show  primitive.ObjectID
	other primitive.ObjectID
	now   time.Time
}

func setupStore(t *testing.T) *fixture {
	t.Helper()

	container := testinfra.StartMongo(t)
	cfg := &config.MongoConfig{
		URI:                container.URI,
		Database:           "cinerec_test",
		PlaybackCollection: "playback_state",
		UsersCollection:    "users",
		MoviesCollection:   "movies",
		SeriesCollection:   "series",
		ConnectTimeout:     20 * time.Second,
		QueryTimeout:       10 * time.Second,
		MaxPoolSize:        10,
	}

	ctx := context.Background()
	client, cleanup, err := NewMongoClient(ctx, cfg)
	if err != nil {
		t.Fatalf("NewMongoClient() error = %v", err)
	}
	t.Cleanup(cleanup)

	f := &fixture{
		store: NewStore(client, cfg),
		user:  primitive.NewObjectID(),
		movie: primitive.NewObjectID(),
		show:  primitive.NewObjectID(),
		other: primitive.NewObjectID(),
		now:   time.Now().UTC().Truncate(time.Millisecond),
	}

	db := client.Database(cfg.Database)
	mustInsert := func(coll string, docs ...interface{}) {
		t.Helper()
		if _, err := db.Collection(coll).InsertMany(ctx, docs); err != nil {
			t.Fatalf("insert into %s: %v", coll, err)
		}
	}

	mustInsert("movies",
		bson.M{"_id": f.movie, "title": "Heat", "posterUrl": "heat.jpg", "category": "Crime", "year": 1995, "rate": 4.5,
			"reviews": bson.A{bson.M{"userId": f.user, "rating": 4}, bson.M{"rating": 5}}},
		bson.M{"_id": f.other, "name": "Alien", "image": "alien.jpg", "category": "Horror"},
	)
	mustInsert("series",
		bson.M{"_id": f.show, "title": "Dark", "titleImage": "dark.jpg", "category": "Mystery"},
	)
	mustInsert("users", bson.M{"_id": f.user, "likedItems": bson.A{
		bson.M{"refId": f.other, "kind": "Movie"},
		bson.M{"refId": f.show, "kind": "Series"},
	}})

	other := primitive.NewObjectID()
	mustInsert("playback_state",
		bson.M{"userId": f.user, "movieId": f.movie, "finished": true, "lastActionAt": f.now.Add(-90 * 24 * time.Hour)},
		bson.M{"userId": f.user, "movieId": f.show, "seasonNumber": 1, "episodeNumber": 2, "lastActionAt": f.now.Add(-time.Hour)},
		bson.M{"userId": other, "movieId": f.show, "seasonNumber": 1, "lastActionAt": f.now.Add(-2 * time.Hour)},
		bson.M{"userId": other, "movieId": f.other, "lastActionAt": f.now.Add(-3 * time.Hour)},
	)

	return f
}

func TestStore_Integration(t *testing.T) {
	f := setupStore(t)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		if err := f.store.Ping(ctx); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
	})

	t.Run("full playback history", func(t *testing.T) {
		records, err := f.store.UserPlayback(ctx, f.user.Hex(), time.Time{})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		keys := map[string]bool{}
		for _, r := range records {
			keys[r.Key().String()] = true
		}
		if !keys["movie:"+f.movie.Hex()] || !keys["series:"+f.show.Hex()] {
			t.Errorf("keys = %v", keys)
		}
	})

	t.Run("windowed playback", func(t *testing.T) {
		records, err := f.store.UserPlayback(ctx, f.user.Hex(), f.now.Add(-60*24*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 || records[0].ItemID != f.show.Hex() {
			t.Errorf("records = %+v, want only the recent episode", records)
		}
	})

	t.Run("invalid user id", func(t *testing.T) {
		records, err := f.store.UserPlayback(ctx, "u99", time.Time{})
		if err != nil || len(records) != 0 {
			t.Errorf("UserPlayback(u99) = %v, %v", records, err)
		}
		likes, err := f.store.LikedItems(ctx, "u99")
		if err != nil || len(likes) != 0 {
			t.Errorf("LikedItems(u99) = %v, %v", likes, err)
		}
	})

	t.Run("liked items", func(t *testing.T) {
		likes, err := f.store.LikedItems(ctx, f.user.Hex())
		if err != nil {
			t.Fatal(err)
		}
		want := []models.LikedItem{{RefID: f.other.Hex(), Kind: "Movie"}, {RefID: f.show.Hex(), Kind: "Series"}}
		if !reflect.DeepEqual(likes, want) {
			t.Errorf("likes = %+v, want %+v", likes, want)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		heat := models.NewItemKey(models.MediaMovie, f.movie.Hex())
		alien := models.NewItemKey(models.MediaMovie, f.other.Hex())
		dark := models.NewItemKey(models.MediaSeries, f.show.Hex())
		wrongType := models.NewItemKey(models.MediaSeries, f.movie.Hex())
		bogus := models.NewItemKey(models.MediaMovie, "not-an-id")

		meta, err := f.store.Metadata(ctx, []models.ItemKey{heat, alien, dark, wrongType, bogus})
		if err != nil {
			t.Fatal(err)
		}
		if len(meta) != 3 {
			t.Fatalf("got %d entries, want 3", len(meta))
		}
		if m := meta[heat]; m.Title != "Heat" || m.Year == nil || *m.Year != 1995 || m.Rating != 4.5 {
			t.Errorf("heat = %+v", m)
		}
		if m := meta[alien]; m.Title != "Alien" || m.PosterURL != "alien.jpg" || m.Rating != 0 {
			t.Errorf("alien = %+v", m)
		}
		if m := meta[dark]; m.PosterURL != "dark.jpg" || m.Category != "Mystery" {
			t.Errorf("dark = %+v", m)
		}
	})

	t.Run("trending", func(t *testing.T) {
		entries, err := f.store.Trending(ctx, f.now.Add(-30*24*time.Hour), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].ItemID != f.show.Hex() || entries[0].Count != 2 {
			t.Errorf("top entry = %+v, want the show with 2 plays", entries[0])
		}

		limited, err := f.store.Trending(ctx, f.now.Add(-30*24*time.Hour), 1)
		if err != nil || len(limited) != 1 {
			t.Errorf("limited = %v, %v", limited, err)
		}
	})

	t.Run("export scans", func(t *testing.T) {
		movies, err := f.store.ActiveIDs(ctx, models.MediaMovie)
		if err != nil {
			t.Fatal(err)
		}
		series, err := f.store.ActiveIDs(ctx, models.MediaSeries)
		if err != nil {
			t.Fatal(err)
		}
		if len(movies) != 2 || len(series) != 1 {
			t.Errorf("active movies=%d series=%d, want 2/1", len(movies), len(series))
		}

		var playback int
		if err := f.store.EachPlayback(ctx, func(models.PlaybackRecord) error {
			playback++
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if playback != 4 {
			t.Errorf("scanned %d playback records, want 4", playback)
		}

		likes := map[string]int{}
		if err := f.store.EachUserLikes(ctx, func(userID string, l []models.LikedItem) error {
			likes[userID] = len(l)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if likes[f.user.Hex()] != 2 {
			t.Errorf("likes = %v", likes)
		}

		var reviews []models.Review
		if err := f.store.EachMovieReview(ctx, func(movieID string, rv []models.Review) error {
			if movieID == f.movie.Hex() {
				reviews = rv
			}
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		want := []models.Review{{UserID: f.user.Hex(), Rating: 4}}
		if !reflect.DeepEqual(reviews, want) {
			t.Errorf("reviews = %+v, want %+v", reviews, want)
		}
	})
}
