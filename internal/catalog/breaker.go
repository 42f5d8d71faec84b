// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/models"
)

// ErrUnavailable is returned while the circuit is open or saturated.
var ErrUnavailable = errors.New("catalog unavailable")

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval resets the failure counts while closed.
	Interval time.Duration

	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration

	// MinRequests and FailureRatio decide when to open the circuit.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 requests
// and probes again after two minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "catalog-mongo",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker wraps a Source with a circuit breaker. It implements Source.
type Breaker struct {
	next Source
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewBreaker wraps next.
func NewBreaker(next Source, settings BreakerSettings) *Breaker {
	name := settings.Name

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= settings.FailureRatio
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// A caller giving up is not a database failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb, name: name}
}

// State returns the current circuit state as closed, half-open or open.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult type-asserts a breaker result. A nil result is the zero value.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping checks the catalog with circuit breaker protection.
func (b *Breaker) Ping(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Ping(ctx)
	})
	return err
}

// UserPlayback reads playback with circuit breaker protection.
func (b *Breaker) UserPlayback(ctx context.Context, userID string, since time.Time) ([]models.PlaybackRecord, error) {
	return castResult[[]models.PlaybackRecord](b.execute(func() (any, error) {
		return b.next.UserPlayback(ctx, userID, since)
	}))
}

// LikedItems reads likes with circuit breaker protection.
func (b *Breaker) LikedItems(ctx context.Context, userID string) ([]models.LikedItem, error) {
	return castResult[[]models.LikedItem](b.execute(func() (any, error) {
		return b.next.LikedItems(ctx, userID)
	}))
}

// Metadata reads titles with circuit breaker protection.
func (b *Breaker) Metadata(ctx context.Context, keys []models.ItemKey) (map[models.ItemKey]models.Metadata, error) {
	return castResult[map[models.ItemKey]models.Metadata](b.execute(func() (any, error) {
		return b.next.Metadata(ctx, keys)
	}))
}

// Trending reads trending counts with circuit breaker protection.
func (b *Breaker) Trending(ctx context.Context, since time.Time, limit int) ([]models.TrendingEntry, error) {
	return castResult[[]models.TrendingEntry](b.execute(func() (any, error) {
		return b.next.Trending(ctx, since, limit)
	}))
}
