// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package models defines the catalog types shared across Cinerec.

Key Components:

  - MediaType and ItemKey: a movie or series id together with its collection
  - PlaybackRecord, LikedItem and Review: user interactions read from the catalog
  - Metadata and RecommendedItem: display fields of a title and the API item shape
  - CategorySet: normalized categories used as a preference filter

Movie and series ids are separate id spaces. Playback documents store both
in the same movieId field; Classify decides which collection a record
refers to.
*/
package models
