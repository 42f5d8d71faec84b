// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package catalog reads titles, playback history, likes and trending counts
// from the MongoDB document store. Store talks to the database directly;
// Breaker wraps any Source with a circuit breaker and is what the serving
// process hands to the recommendation engine.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/models"
)

// ErrQuery wraps every failed catalog read.
var ErrQuery = errors.New("catalog query failed")

// Source is everything the serving process reads from the catalog.
type Source interface {
	UserPlayback(ctx context.Context, userID string, since time.Time) ([]models.PlaybackRecord, error)
	LikedItems(ctx context.Context, userID string) ([]models.LikedItem, error)
	Metadata(ctx context.Context, keys []models.ItemKey) (map[models.ItemKey]models.Metadata, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]models.TrendingEntry, error)
	Ping(ctx context.Context) error
}

// Store is the MongoDB-backed catalog.
type Store struct {
	db       *mongo.Database
	playback *mongo.Collection
	users    *mongo.Collection
	movies   *mongo.Collection
	series   *mongo.Collection
	timeout  time.Duration
}

// NewStore binds the configured collections of client.
func NewStore(client *mongo.Client, cfg *config.MongoConfig) *Store {
	db := client.Database(cfg.Database)
	return &Store{
		db:       db,
		playback: db.Collection(cfg.PlaybackCollection),
		users:    db.Collection(cfg.UsersCollection),
		movies:   db.Collection(cfg.MoviesCollection),
		series:   db.Collection(cfg.SeriesCollection),
		timeout:  cfg.QueryTimeout,
	}
}

// Database returns the database name.
func (s *Store) Database() string { return s.db.Name() }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Ping checks that the primary answers.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// UserPlayback returns the user's playback records touched at or after since.
// A zero since returns the full history. User ids that are not ObjectIDs have
// no history.
func (s *Store) UserPlayback(ctx context.Context, userID string, since time.Time) (records []models.PlaybackRecord, err error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("user_playback", s.playback.Name(), time.Since(start), err)
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"userId": oid}
	if !since.IsZero() {
		filter["lastActionAt"] = bson.M{"$gte": since}
	}

	cur, err := s.playback.Find(ctx, filter, options.Find().SetProjection(playbackProjection))
	if err != nil {
		return nil, fmt.Errorf("%w: find playback for %s: %w", ErrQuery, userID, err)
	}

	var docs []playbackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode playback for %s: %w", ErrQuery, userID, err)
	}

	records = make([]models.PlaybackRecord, 0, len(docs))
	for i := range docs {
		r := docs[i].record()
		if r.ItemID == "" {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// LikedItems returns the likedItems array of the user document.
func (s *Store) LikedItems(ctx context.Context, userID string) (likes []models.LikedItem, err error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("liked_items", s.users.Name(), time.Since(start), err)
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc userDoc
	opts := options.FindOne().SetProjection(bson.M{"likedItems": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user %s: %w", ErrQuery, userID, err)
	}
	return doc.likes(), nil
}

// Metadata looks up movie and series keys in their collections concurrently.
// Keys whose id is not an ObjectID, or that have no document, are absent.
func (s *Store) Metadata(ctx context.Context, keys []models.ItemKey) (map[models.ItemKey]models.Metadata, error) {
	var movieIDs, seriesIDs []string
	for _, k := range keys {
		switch k.Type {
		case models.MediaMovie:
			movieIDs = append(movieIDs, k.ID)
		case models.MediaSeries:
			seriesIDs = append(seriesIDs, k.ID)
		}
	}

	var movies, series map[string]models.Metadata
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = s.titles(gctx, s.movies, movieIDs)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = s.titles(gctx, s.series, seriesIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[models.ItemKey]models.Metadata, len(movies)+len(series))
	for id, m := range movies {
		out[models.NewItemKey(models.MediaMovie, id)] = m
	}
	for id, m := range series {
		out[models.NewItemKey(models.MediaSeries, id)] = m
	}
	return out, nil
}

// titles fetches projected documents by id from coll, keyed by hex id.
func (s *Store) titles(ctx context.Context, coll *mongo.Collection, ids []string) (out map[string]models.Metadata, err error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("metadata", coll.Name(), time.Since(start), err)
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(titleProjection))
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %w", ErrQuery, coll.Name(), err)
	}

	var docs []titleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrQuery, coll.Name(), err)
	}

	out = make(map[string]models.Metadata, len(docs))
	for i := range docs {
		out[docs[i].ID.Hex()] = docs[i].metadata()
	}
	return out, nil
}

// Trending counts playback documents per title id since the given time,
// highest count first. Equal counts are ordered by id so repeated calls agree.
func (s *Store) Trending(ctx context.Context, since time.Time, limit int) (entries []models.TrendingEntry, err error) {
	if limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordCatalogQuery("trending", s.playback.Name(), time.Since(start), err)
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"lastActionAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$movieId", "c": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "c", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cur, err := s.playback.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate trending: %w", ErrQuery, err)
	}

	var docs []trendingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode trending: %w", ErrQuery, err)
	}

	entries = make([]models.TrendingEntry, 0, len(docs))
	for _, d := range docs {
		id := idString(d.ID)
		if id == "" {
			continue
		}
		entries = append(entries, models.TrendingEntry{ItemID: id, Count: d.Count})
	}
	return entries, nil
}
