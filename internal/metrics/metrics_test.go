// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// histogramCount returns how many observations h has recorded.
func histogramCount(t *testing.T, h prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := h.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a metric", h)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))

	RecordAPIRequest("GET", "/health", "200", 3*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordMongoCommand(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		succeeded bool
		status    string
	}{
		{"successful find", "find", true, "success"},
		{"failed aggregate", "aggregate", false, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := MongoCommandsTotal.WithLabelValues(tt.command, tt.status)
			before := testutil.ToFloat64(counter)

			RecordMongoCommand(tt.command, tt.succeeded, time.Millisecond)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("mongo_commands_total{%s,%s} = %v, want %v", tt.command, tt.status, got, before+1)
			}
		})
	}
}

func TestRecordCatalogQuery(t *testing.T) {
	errCounter := CatalogQueryErrors.WithLabelValues("metadata", "movies")
	before := testutil.ToFloat64(errCounter)

	RecordCatalogQuery("metadata", "movies", time.Millisecond, nil)
	if got := testutil.ToFloat64(errCounter); got != before {
		t.Errorf("error counter moved on success: %v -> %v", before, got)
	}

	RecordCatalogQuery("metadata", "movies", time.Millisecond, errors.New("timeout"))
	if got := testutil.ToFloat64(errCounter); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestSetModelState(t *testing.T) {
	SetModelState(true, 2, 3, 16)

	if got := testutil.ToFloat64(ModelReady); got != 1 {
		t.Errorf("model_ready = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ModelUsers); got != 2 {
		t.Errorf("model_users = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ModelItems); got != 3 {
		t.Errorf("model_items = %v, want 3", got)
	}
	if got := testutil.ToFloat64(ModelFactors); got != 16 {
		t.Errorf("model_latent_factors = %v, want 16", got)
	}

	SetModelState(false, 0, 0, 0)
	if got := testutil.ToFloat64(ModelReady); got != 0 {
		t.Errorf("model_ready = %v, want 0", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	counter := RecommendationsTotal.WithLabelValues("user", "cold_start")
	before := testutil.ToFloat64(counter)

	items := RecommendationItems.WithLabelValues("user")
	observed := histogramCount(t, items)

	RecordRecommendation("user", "cold_start", 5)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("recommendations_total = %v, want %v", got, before+1)
	}
	if got := histogramCount(t, items); got != observed+1 {
		t.Errorf("recommendation_items sample count = %d, want %d", got, observed+1)
	}
}

func TestRecordPreferenceSet(t *testing.T) {
	before := histogramCount(t, PreferenceSetSize)

	RecordPreferenceSet(3)
	RecordPreferenceSet(0)

	if got := histogramCount(t, PreferenceSetSize); got != before+2 {
		t.Errorf("preference_set_size sample count = %d, want %d", got, before+2)
	}
}
