// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinerec/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	t.Run("labels requests with the route pattern", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Use(PrometheusMetrics)
		r.Get("/metrics-test/user/{userId}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})

		counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/user/{userId}", "202")
		before := testutil.ToFloat64(counter)

		for _, id := range []string{"a", "b", "c"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics-test/user/"+id, nil))
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
			}
		}

		if got := testutil.ToFloat64(counter) - before; got != 3 {
			t.Errorf("counter delta = %v, want 3", got)
		}
	})

	t.Run("defaults to 200 when WriteHeader is not called", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Use(PrometheusMetrics)
		r.Get("/metrics-test/implicit", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/implicit", "200")
		before := testutil.ToFloat64(counter)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics-test/implicit", nil))

		if got := testutil.ToFloat64(counter) - before; got != 1 {
			t.Errorf("counter delta = %v, want 1", got)
		}
	})

	t.Run("records error statuses", func(t *testing.T) {
		t.Parallel()
		statusCodes := []int{
			http.StatusBadRequest,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		}

		for _, code := range statusCodes {
			t.Run(http.StatusText(code), func(t *testing.T) {
				handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(code)
				}))

				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatever", nil))

				if rec.Code != code {
					t.Errorf("status = %d, want %d", rec.Code, code)
				}
			})
		}
	})
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/no-router", nil)
	if got := RoutePattern(req); got != unmatchedRoute {
		t.Errorf("RoutePattern() = %q, want %q", got, unmatchedRoute)
	}
}

func TestStatusRecorder_FirstWriteHeaderWins(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	wrapper := newStatusRecorder(rec)
	wrapper.WriteHeader(http.StatusNotFound)
	wrapper.WriteHeader(http.StatusOK)

	if wrapper.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want %d", wrapper.statusCode, http.StatusNotFound)
	}
	if newStatusRecorder(wrapper) != wrapper {
		t.Error("wrapping a recorder twice should reuse it")
	}
}
