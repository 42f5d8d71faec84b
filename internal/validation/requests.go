// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package validation

// UserRecommendRequest is the input of GET /recommend/user/{userId}.
// User ids are opaque; any non-empty string up to 128 characters is accepted.
type UserRecommendRequest struct {
	UserID string `name:"userId" validate:"required,max=128"`
	N      int    `name:"n" validate:"min=1,max=50"`
}

// SimilarRequest is the input of GET /recommend/similar/{type}/{id}.
type SimilarRequest struct {
	Type string `name:"type" validate:"required,oneof=movie series"`
	ID   string `name:"id" validate:"required,max=128,printascii"`
	N    int    `name:"n" validate:"min=1,max=50"`
}
