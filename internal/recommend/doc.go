// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package recommend decides which movies and series a user sees.
//
// # Serving Paths
//
// A user recommendation request takes one of three paths:
//
//   - Model: the user has a factor row. Items are scored with V·u, already
//     watched items are masked out, the top candidates are over-fetched,
//     enriched with catalog metadata, filtered by the user's inferred
//     categories and truncated to n.
//   - Fallback: the model path kept nothing. Trending items from the last
//     30 days replace the model output, filtered the same way.
//   - Cold start: the user has no factor row. Trending is used directly and
//     the factor matrices are never read.
//
// Similar-item requests score every item against the source item's factor row
// and drop the source item itself.
//
// # Determinism
//
// Candidate ordering depends only on the score vector: scores descending,
// ties broken by the lower dense index. Trending order is the catalog's count
// order. Two identical requests against unchanged data return identical lists.
//
// # Preferences
//
// Preference inference unions the categories of recently watched items
// (60 days) with the categories of liked items. An empty preference set
// disables category filtering. A non-empty set is never relaxed: if nothing
// matches, the response is empty.
//
// # Concurrency
//
// The engine holds no per-request state and no cache. Each request loads the
// current model bundle once and uses it throughout, so a concurrent reload is
// never observed halfway.
package recommend
