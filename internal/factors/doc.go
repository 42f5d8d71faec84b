// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package factors holds the trained latent-factor model used for serving.

# Overview

A model bundle is made of three parts, loaded together and never mutated:

  - IdentityMaps: dense indices for the known users and item keys
  - Store: the user factor matrix U and the item factor matrix V (gonum)
  - Scoring: inner products against V

	bundle := factors.LoadBundle(factors.ArtifactPaths{Dir: "artifacts"})
	if !bundle.Ready() {
	    // serve health only
	}
	scores, ok := bundle.UserScores("u1")

# Orientation Repair

Trainers disagree on whether the first matrix is user- or item-shaped. When the
row counts of U and V match the item and user lists the other way round, the
store swaps them once and validates again. Any mismatch left after that attempt
is a load failure and the bundle is not ready.

# Reload

Holder publishes bundles through an atomic pointer. A reload builds a complete
new bundle off to the side and swaps it in, so a reader sees either the old
maps and matrices or the new ones, never a mix.
*/
package factors
