// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

import (
	"errors"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/cinerec/internal/models"
)

// identityBundle is the two-user, two-movie model with U = V = I.
func identityBundle(t *testing.T) *Bundle {
	t.Helper()

	maps, err := NewIdentityMaps([]string{"u1", "u2"}, []string{"movie:a", "movie:b"})
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		2, 2,
	)
	if err != nil {
		t.Fatal(err)
	}
	return NewBundle(maps, store)
}

func TestBundle_UserScores(t *testing.T) {
	t.Parallel()

	b := identityBundle(t)

	scores, ok, err := b.UserScores("u1")
	if err != nil || !ok {
		t.Fatalf("UserScores(u1) = ok %v, err %v", ok, err)
	}
	if scores.At(0) != 1 || scores.At(1) != 0 {
		t.Errorf("scores = [%v %v], want [1 0]", scores.At(0), scores.At(1))
	}

	_, ok, err = b.UserScores("u99")
	if ok || err != nil {
		t.Errorf("unknown user: ok %v, err %v; want false, nil", ok, err)
	}
}

func TestBundle_SimilarScoresExcludesSelf(t *testing.T) {
	t.Parallel()

	b := identityBundle(t)

	scores, ok, err := b.SimilarScores(models.NewItemKey(models.MediaMovie, "a"))
	if err != nil || !ok {
		t.Fatalf("SimilarScores(movie:a) = ok %v, err %v", ok, err)
	}
	if !scores.Excluded(0) {
		t.Error("movie:a should be excluded from its own similarity scores")
	}
	if scores.At(0) != SentinelScore {
		t.Errorf("At(self) = %v, want sentinel", scores.At(0))
	}
	if scores.At(1) != 0 {
		t.Errorf("At(1) = %v, want 0", scores.At(1))
	}
	if scores.Available() != 1 {
		t.Errorf("Available() = %d, want 1", scores.Available())
	}

	_, ok, err = b.SimilarScores(models.NewItemKey(models.MediaSeries, "a"))
	if ok || err != nil {
		t.Errorf("unknown item: ok %v, err %v; want false, nil", ok, err)
	}
}

func TestBundle_NotReady(t *testing.T) {
	t.Parallel()

	maps, _ := NewIdentityMaps([]string{"u1"}, []string{"movie:a"})
	b := NewNotReadyBundle(maps, ErrShapeMismatch)

	if b.Ready() {
		t.Fatal("bundle should not be ready")
	}
	if b.NumUsers() != 1 || b.NumItems() != 1 {
		t.Errorf("sizes = %d/%d, want 1/1", b.NumUsers(), b.NumItems())
	}
	if _, _, err := b.UserScores("u1"); !errors.Is(err, ErrNotReady) {
		t.Errorf("UserScores err = %v, want ErrNotReady", err)
	}
	if _, _, err := b.SimilarScores(models.NewItemKey(models.MediaMovie, "a")); !errors.Is(err, ErrNotReady) {
		t.Errorf("SimilarScores err = %v, want ErrNotReady", err)
	}
	if b.Factors() != 0 {
		t.Errorf("Factors() = %d, want 0", b.Factors())
	}
}

func TestScores_Exclude(t *testing.T) {
	t.Parallel()

	base := NewScores([]float64{3, 2, 1})
	masked := base.Exclude(0, 7, -1)

	if base.Excluded(0) {
		t.Error("Exclude must not modify the receiver")
	}
	if !masked.Excluded(0) || masked.Available() != 2 {
		t.Errorf("masked: excluded(0)=%v available=%d", masked.Excluded(0), masked.Available())
	}

	again := masked.Exclude(2)
	if !again.Excluded(0) || !again.Excluded(2) || again.Available() != 1 {
		t.Error("masks should accumulate")
	}
}

func TestHolder_SwapIsAtomic(t *testing.T) {
	t.Parallel()

	first := identityBundle(t)
	h := NewHolder(first)

	maps, _ := NewIdentityMaps([]string{"u1", "u2", "u3"}, []string{"movie:a", "movie:b", "movie:c"})
	store, err := NewStore(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 1, 1}), 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	second := NewBundle(maps, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				b := h.Load()
				scores, ok, err := b.UserScores("u1")
				if err != nil || !ok {
					t.Errorf("UserScores: ok %v, err %v", ok, err)
					return
				}
				if scores.Len() != b.NumItems() {
					t.Errorf("score length %d does not match item count %d", scores.Len(), b.NumItems())
					return
				}
			}
		}()
	}

	if prev := h.Swap(second); prev != first {
		t.Error("Swap should return the previous bundle")
	}
	wg.Wait()

	if h.Load() != second {
		t.Error("Load should return the swapped bundle")
	}
}

func TestNewHolder_NilInitial(t *testing.T) {
	t.Parallel()

	h := NewHolder(nil)
	if h.Load() == nil || h.Load().Ready() {
		t.Error("nil initial bundle should become a not-ready bundle")
	}
}
