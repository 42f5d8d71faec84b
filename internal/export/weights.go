// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package export

import "github.com/tomtom215/cinerec/internal/models"

// Weights are the implicit feedback strengths of each interaction kind.
type Weights struct {
	Finished   float64 // playback marked finished
	HalfOrMore float64 // progress of at least 50%
	Started    float64 // any other playback
	Like       float64
	RatingMult float64 // multiplies a positive review rating
}

// DefaultWeights returns the weights the training job was tuned with.
func DefaultWeights() Weights {
	return Weights{
		Finished:   3.0,
		HalfOrMore: 2.0,
		Started:    1.0,
		Like:       2.5,
		RatingMult: 1.0,
	}
}

// Playback scores one playback record.
func (w Weights) Playback(r models.PlaybackRecord) float64 {
	switch {
	case r.Finished:
		return w.Finished
	case r.ProgressPct/100 >= 0.5:
		return w.HalfOrMore
	default:
		return w.Started
	}
}

// Review scores a review rating. Ratings of zero or below carry no signal.
func (w Weights) Review(rating float64) (float64, bool) {
	if rating <= 0 {
		return 0, false
	}
	return rating * w.RatingMult, true
}
