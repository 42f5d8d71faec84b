// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when the factor matrices do not line up with
	// the identity maps, even after the orientation swap.
	ErrShapeMismatch = errors.New("factor matrix shape mismatch")

	// ErrNotReady is returned by serving calls against a bundle that failed to load.
	ErrNotReady = errors.New("model not ready")
)

// Store holds the user factors U (users x k) and item factors V (items x k).
// It is read-only after construction.
type Store struct {
	u       *mat.Dense
	v       *mat.Dense
	k       int
	swapped bool
}

// NewStore validates the matrices against the expected user and item counts.
//
// If U has numItems rows and V has numUsers rows, the two are swapped once
// before validation. After that, U must have numUsers rows, V numItems rows,
// and both the same positive column count.
func NewStore(u, v *mat.Dense, numUsers, numItems int) (*Store, error) {
	if u == nil || v == nil {
		return nil, fmt.Errorf("%w: missing factor matrix", ErrShapeMismatch)
	}

	s := &Store{u: u, v: v}

	uRows, _ := u.Dims()
	vRows, _ := v.Dims()
	if (uRows != numUsers || vRows != numItems) && uRows == numItems && vRows == numUsers {
		s.u, s.v = v, u
		s.swapped = true
	}

	uRows, uCols := s.u.Dims()
	vRows, vCols := s.v.Dims()
	switch {
	case uRows != numUsers:
		return nil, fmt.Errorf("%w: user factors have %d rows, user list has %d", ErrShapeMismatch, uRows, numUsers)
	case vRows != numItems:
		return nil, fmt.Errorf("%w: item factors have %d rows, item list has %d", ErrShapeMismatch, vRows, numItems)
	case uCols != vCols:
		return nil, fmt.Errorf("%w: user factors have %d columns, item factors have %d", ErrShapeMismatch, uCols, vCols)
	case uCols == 0:
		return nil, fmt.Errorf("%w: zero latent factors", ErrShapeMismatch)
	}

	s.k = uCols
	return s, nil
}

// Factors returns the latent dimensionality k.
func (s *Store) Factors() int { return s.k }

// Swapped reports whether the orientation repair was applied.
func (s *Store) Swapped() bool { return s.swapped }

// UserScores returns V·u for the user at dense index userIdx.
// The result is freshly allocated; the store is not modified.
func (s *Store) UserScores(userIdx int) []float64 {
	return s.project(s.u.RowView(userIdx))
}

// ItemScores returns V·v for the item at dense index itemIdx, including the
// item's score against itself. Callers exclude the source item through the
// Scores mask; see Bundle.SimilarScores.
func (s *Store) ItemScores(itemIdx int) []float64 {
	return s.project(s.v.RowView(itemIdx))
}

func (s *Store) project(vec mat.Vector) []float64 {
	rows, _ := s.v.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(s.v, vec)
	return out.RawVector().Data
}
