// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package export

import (
	"testing"

	"github.com/tomtom215/cinerec/internal/models"
)

func TestWeights_Playback(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	tests := []struct {
		name   string
		record models.PlaybackRecord
		want   float64
	}{
		{name: "finished", record: models.PlaybackRecord{Finished: true, ProgressPct: 10}, want: 3.0},
		{name: "exactly half", record: models.PlaybackRecord{ProgressPct: 50}, want: 2.0},
		{name: "most of it", record: models.PlaybackRecord{ProgressPct: 95}, want: 2.0},
		{name: "just started", record: models.PlaybackRecord{ProgressPct: 49.9}, want: 1.0},
		{name: "no progress", record: models.PlaybackRecord{}, want: 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := w.Playback(tt.record); got != tt.want {
				t.Errorf("Playback() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeights_Review(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	if got, ok := w.Review(4); !ok || got != 4 {
		t.Errorf("Review(4) = %v, %v; want 4, true", got, ok)
	}
	for _, rating := range []float64{0, -1} {
		if _, ok := w.Review(rating); ok {
			t.Errorf("Review(%v) accepted a non-positive rating", rating)
		}
	}

	w.RatingMult = 0.5
	if got, _ := w.Review(4); got != 2 {
		t.Errorf("Review(4) with multiplier 0.5 = %v, want 2", got)
	}
}
