// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/models"
)

// Full collection scans used by the interaction exporter. They run without
// the per-query timeout; the caller's context bounds them.

const scanBatchSize = 1000

type reviewDoc struct {
	UserID interface{} `bson:"userId"`
	Rating interface{} `bson:"rating"`
}

type reviewedMovieDoc struct {
	ID      interface{} `bson:"_id"`
	Reviews []reviewDoc `bson:"reviews"`
}

type idDoc struct {
	ID interface{} `bson:"_id"`
}

// ActiveIDs returns the ids of every document in the movie or series collection.
func (s *Store) ActiveIDs(ctx context.Context, t models.MediaType) (ids map[string]struct{}, err error) {
	coll := s.movies
	if t == models.MediaSeries {
		coll = s.series
	}

	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("active_ids", coll.Name(), time.Since(start), err)
	}()

	ids = make(map[string]struct{})
	err = scan(ctx, coll, bson.M{"_id": 1}, func(cur *mongo.Cursor) error {
		var doc idDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if id := idString(doc.ID); id != "" {
			ids[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EachPlayback calls fn for every playback document with a user and an item id.
func (s *Store) EachPlayback(ctx context.Context, fn func(models.PlaybackRecord) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("scan_playback", s.playback.Name(), time.Since(start), err)
	}()

	return scan(ctx, s.playback, playbackProjection, func(cur *mongo.Cursor) error {
		var doc playbackDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		r := doc.record()
		if r.UserID == "" || r.ItemID == "" {
			return nil
		}
		return fn(r)
	})
}

// EachUserLikes calls fn with the liked items of every user document that has any.
func (s *Store) EachUserLikes(ctx context.Context, fn func(userID string, likes []models.LikedItem) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("scan_likes", s.users.Name(), time.Since(start), err)
	}()

	return scan(ctx, s.users, bson.M{"likedItems": 1}, func(cur *mongo.Cursor) error {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		userID := idString(doc.ID)
		likes := doc.likes()
		if userID == "" || len(likes) == 0 {
			return nil
		}
		return fn(userID, likes)
	})
}

// EachMovieReview calls fn with the reviews of every movie document that has any.
// Reviews without a user id are dropped; ratings that are not numbers read as 0.
func (s *Store) EachMovieReview(ctx context.Context, fn func(movieID string, reviews []models.Review) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("scan_reviews", s.movies.Name(), time.Since(start), err)
	}()

	return scan(ctx, s.movies, bson.M{"reviews": 1}, func(cur *mongo.Cursor) error {
		var doc reviewedMovieDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		movieID := idString(doc.ID)
		if movieID == "" || len(doc.Reviews) == 0 {
			return nil
		}
		reviews := make([]models.Review, 0, len(doc.Reviews))
		for _, rv := range doc.Reviews {
			userID := idString(rv.UserID)
			if userID == "" {
				continue
			}
			rating, _ := number(rv.Rating)
			reviews = append(reviews, models.Review{UserID: userID, Rating: rating})
		}
		if len(reviews) == 0 {
			return nil
		}
		return fn(movieID, reviews)
	})
}

// scan iterates every document of coll with the given projection.
func scan(ctx context.Context, coll *mongo.Collection, projection bson.M, each func(*mongo.Cursor) error) error {
	opts := options.Find().SetProjection(projection).SetBatchSize(scanBatchSize)
	cur, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("%w: scan %s: %w", ErrQuery, coll.Name(), err)
	}
	defer cur.Close(ctx) //nolint:errcheck // read-only cursor

	for cur.Next(ctx) {
		if err := each(cur); err != nil {
			return fmt.Errorf("scan %s: %w", coll.Name(), err)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %w", ErrQuery, coll.Name(), err)
	}
	return nil
}
