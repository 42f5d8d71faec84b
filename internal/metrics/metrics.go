// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package metrics holds the Prometheus collectors shared across Cinerec.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API router at /metrics. Instrumentation covers:
//   - API endpoint latency and throughput
//   - MongoDB commands (fed by the driver's command monitor) and catalog queries
//   - Model bundle state and reloads
//   - Recommendation serving paths (model, fallback, cold start)
//   - Catalog circuit breaker state
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// MongoDB Metrics (driver command monitor)
	MongoCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_commands_total",
			Help: "Total number of MongoDB commands by outcome",
		},
		[]string{"command", "status"},
	)

	MongoCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_command_duration_seconds",
			Help:    "Duration of MongoDB commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Catalog Metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of failed catalog lookups",
		},
		[]string{"operation", "collection"},
	)

	// Model Metrics
	ModelReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_ready",
			Help: "Whether the serving model bundle is ready (1) or not (0)",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Number of users in the serving model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_items",
			Help: "Number of items in the serving model",
		},
	)

	ModelFactors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_latent_factors",
			Help: "Latent dimensionality of the serving model",
		},
	)

	ModelReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_reloads_total",
			Help: "Total number of model reload attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	ModelLoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded_timestamp_seconds",
			Help: "Unix time at which the serving model bundle was installed",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation responses by endpoint and serving path",
		},
		[]string{"endpoint", "path"}, // path: "model", "fallback", "cold_start", "unknown_item"
	)

	RecommendationItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_items",
			Help:    "Number of items returned per recommendation response",
			Buckets: []float64{0, 1, 2, 4, 8, 12, 20, 30, 50},
		},
		[]string{"endpoint"},
	)

	PreferenceSetSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "preference_set_size",
			Help:    "Number of categories in inferred user preference sets",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMongoCommand records a MongoDB command observed by the driver.
func RecordMongoCommand(command string, succeeded bool, duration time.Duration) {
	status := "success"
	if !succeeded {
		status = "failed"
	}
	MongoCommandsTotal.WithLabelValues(command, status).Inc()
	MongoCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordCatalogQuery records a catalog lookup and counts it as an error when err is non-nil.
func RecordCatalogQuery(operation, collection string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(operation, collection).Inc()
	}
}

// SetModelState publishes the shape of the installed model bundle.
func SetModelState(ready bool, users, items, factors int) {
	if ready {
		ModelReady.Set(1)
	} else {
		ModelReady.Set(0)
	}
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	ModelFactors.Set(float64(factors))
	ModelLoadedTimestamp.Set(float64(time.Now().Unix()))
}

// RecordModelReload counts a reload attempt.
func RecordModelReload(result string) {
	ModelReloadsTotal.WithLabelValues(result).Inc()
}

// RecordRecommendation records one recommendation response.
func RecordRecommendation(endpoint, path string, items int) {
	RecommendationsTotal.WithLabelValues(endpoint, path).Inc()
	RecommendationItems.WithLabelValues(endpoint).Observe(float64(items))
}

// RecordPreferenceSet observes the size of an inferred preference set.
func RecordPreferenceSet(size int) {
	PreferenceSetSize.Observe(float64(size))
}
