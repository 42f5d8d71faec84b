// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

// SentinelScore is reported for excluded indices. It sorts below any real
// inner product of trained factors.
const SentinelScore = -1e9

// Scores is a score vector over dense item indices plus an exclusion mask.
// Excluding indices returns a new value and never writes to the vector, so a
// Scores can be shared between goroutines.
type Scores struct {
	values   []float64
	excluded map[int]struct{}
}

// NewScores wraps a raw score vector with an empty mask.
func NewScores(values []float64) Scores {
	return Scores{values: values}
}

// Len returns the number of scored items.
func (s Scores) Len() int { return len(s.values) }

// Excluded reports whether idx is masked out.
func (s Scores) Excluded(idx int) bool {
	_, ok := s.excluded[idx]
	return ok
}

// At returns the score at idx, or SentinelScore when idx is excluded.
func (s Scores) At(idx int) float64 {
	if s.Excluded(idx) {
		return SentinelScore
	}
	return s.values[idx]
}

// Available returns the number of indices that are not excluded.
func (s Scores) Available() int { return len(s.values) - len(s.excluded) }

// Exclude returns a copy of s with the given indices added to the mask.
// Out-of-range indices are ignored.
func (s Scores) Exclude(indices ...int) Scores {
	mask := make(map[int]struct{}, len(s.excluded)+len(indices))
	for idx := range s.excluded {
		mask[idx] = struct{}{}
	}
	for _, idx := range indices {
		if idx >= 0 && idx < len(s.values) {
			mask[idx] = struct{}{}
		}
	}
	return Scores{values: s.values, excluded: mask}
}
