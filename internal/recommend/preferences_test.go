// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/cinerec/internal/models"
)

func TestInferPreferences(t *testing.T) {
	t.Parallel()

	episode := 3
	catalog := newMockCatalog()
	catalog.addItem(models.MediaMovie, "recent", " Action ")
	catalog.addItem(models.MediaMovie, "old", "Western")
	catalog.addItem(models.MediaSeries, "show", "Anime")
	catalog.addItem(models.MediaMovie, "show", "Documentary")
	catalog.addItem(models.MediaMovie, "liked", "Drama")
	catalog.addItem(models.MediaSeries, "likedshow", "")
	catalog.addItem(models.MediaMovie, "other", "Horror")

	catalog.watch("u1", models.PlaybackRecord{ItemID: "recent", LastActionAt: fixedNow.Add(-59 * 24 * time.Hour)})
	catalog.watch("u1", models.PlaybackRecord{ItemID: "old", LastActionAt: fixedNow.Add(-61 * 24 * time.Hour)})
	catalog.watch("u1", models.PlaybackRecord{ItemID: "show", EpisodeNumber: &episode})
	catalog.likes["u1"] = []models.LikedItem{
		{RefID: "liked", Kind: "Movie"},
		{RefID: "likedshow", Kind: "Series"},
		{RefID: "other", Kind: "Person"},
	}
	engine := newTestEngine(t, identityBundle(t), catalog)

	prefs, err := engine.InferPreferences(context.Background(), "u1")
	if err != nil {
		t.Fatalf("InferPreferences() error = %v", err)
	}

	want := []string{"action", "anime", "drama"}
	if got := prefs.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("preferences = %v, want %v", got, want)
	}

	wantSince := fixedNow.Add(-60 * 24 * time.Hour)
	if len(catalog.playbackSince) != 1 || !catalog.playbackSince[0].Equal(wantSince) {
		t.Errorf("playback since = %v, want [%v]", catalog.playbackSince, wantSince)
	}
}

func TestInferPreferences_NoHistory(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, identityBundle(t), newMockCatalog())

	prefs, err := engine.InferPreferences(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(prefs) != 0 {
		t.Errorf("preferences = %v, want empty", prefs.Sorted())
	}
}

func TestInferPreferences_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*mockCatalog)
	}{
		{"likes", func(m *mockCatalog) { m.likesErr = errors.New("boom") }},
		{"metadata", func(m *mockCatalog) {
			m.likes["u1"] = []models.LikedItem{{RefID: "x", Kind: "Movie"}}
			m.metadataErr = errors.New("boom")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog := newMockCatalog()
			tt.setup(catalog)
			engine := newTestEngine(t, identityBundle(t), catalog)
			if _, err := engine.InferPreferences(context.Background(), "u1"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTrending_MovieFirstAndExclusion(t *testing.T) {
	t.Parallel()

	catalog := newMockCatalog()
	catalog.addItem(models.MediaMovie, "both", "Action")
	catalog.addItem(models.MediaSeries, "both", "Anime")
	catalog.addItem(models.MediaSeries, "seen", "Anime")
	catalog.addItem(models.MediaMovie, "x", "Action")
	catalog.addItem(models.MediaMovie, "y", "Action")
	catalog.trending = []models.TrendingEntry{
		{ItemID: "both", Count: 10},
		{ItemID: "seen", Count: 8},
		{ItemID: "x", Count: 5},
		{ItemID: "y", Count: 2},
	}
	engine := newTestEngine(t, identityBundle(t), catalog)

	exclude := map[models.ItemKey]struct{}{models.NewItemKey(models.MediaSeries, "seen"): {}}
	items, err := engine.Trending(context.Background(), models.NewCategorySet(), 2, exclude)
	if err != nil {
		t.Fatal(err)
	}
	if got := itemKeys(items); !reflect.DeepEqual(got, []string{"movie:both", "movie:x"}) {
		t.Errorf("items = %v, want [movie:both movie:x]", got)
	}
	if catalog.trendingLimit != 6 {
		t.Errorf("trending limit = %d, want 6", catalog.trendingLimit)
	}
}
