// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tomtom215/cinerec/internal/models"
)

// Bundle is one immutable generation of the serving model: identity maps and
// factor store loaded from the same artifacts. A bundle that failed to load
// keeps the load error and whatever identity maps were readable.
type Bundle struct {
	maps     *IdentityMaps
	store    *Store
	err      error
	loadedAt time.Time
}

// NewBundle assembles a ready bundle.
func NewBundle(maps *IdentityMaps, store *Store) *Bundle {
	return &Bundle{maps: maps, store: store, loadedAt: time.Now()}
}

// NewNotReadyBundle records a failed load. maps may be nil.
func NewNotReadyBundle(maps *IdentityMaps, err error) *Bundle {
	if err == nil {
		err = ErrNotReady
	}
	return &Bundle{maps: maps, err: err, loadedAt: time.Now()}
}

// Ready reports whether the bundle can serve model requests.
func (b *Bundle) Ready() bool {
	return b != nil && b.err == nil && b.store != nil && b.maps != nil
}

// Err returns the load error, or nil for a ready bundle.
func (b *Bundle) Err() error {
	if b == nil {
		return ErrNotReady
	}
	return b.err
}

// LoadedAt returns when the bundle was built.
func (b *Bundle) LoadedAt() time.Time { return b.loadedAt }

// NumUsers returns the number of users in the identity map (0 when unreadable).
func (b *Bundle) NumUsers() int {
	if b == nil || b.maps == nil {
		return 0
	}
	return b.maps.NumUsers()
}

// NumItems returns the number of items in the identity map (0 when unreadable).
func (b *Bundle) NumItems() int {
	if b == nil || b.maps == nil {
		return 0
	}
	return b.maps.NumItems()
}

// Factors returns the latent dimensionality, or 0 when not ready.
func (b *Bundle) Factors() int {
	if !b.Ready() {
		return 0
	}
	return b.store.Factors()
}

// KnowsUser reports whether userID has a factor row.
func (b *Bundle) KnowsUser(userID string) bool {
	if b == nil || b.maps == nil {
		return false
	}
	_, ok := b.maps.UserIndex(userID)
	return ok
}

// ItemIndex resolves an item key to its dense index.
func (b *Bundle) ItemIndex(key models.ItemKey) (int, bool) {
	if b == nil || b.maps == nil {
		return 0, false
	}
	return b.maps.ItemIndex(key)
}

// Item returns the item key at a dense index.
func (b *Bundle) Item(idx int) models.ItemKey {
	return b.maps.Item(idx)
}

// UserScores scores every item for a known user. ok is false for an unknown user.
func (b *Bundle) UserScores(userID string) (scores Scores, ok bool, err error) {
	if !b.Ready() {
		return Scores{}, false, ErrNotReady
	}
	idx, ok := b.maps.UserIndex(userID)
	if !ok {
		return Scores{}, false, nil
	}
	return NewScores(b.store.UserScores(idx)), true, nil
}

// SimilarScores scores every item against a known item, with the item itself
// excluded. ok is false for an unknown item key.
func (b *Bundle) SimilarScores(key models.ItemKey) (scores Scores, ok bool, err error) {
	if !b.Ready() {
		return Scores{}, false, ErrNotReady
	}
	idx, ok := b.maps.ItemIndex(key)
	if !ok {
		return Scores{}, false, nil
	}
	return NewScores(b.store.ItemScores(idx)).Exclude(idx), true, nil
}

// String summarizes the bundle for logs.
func (b *Bundle) String() string {
	if b.Ready() {
		return fmt.Sprintf("ready users=%d items=%d factors=%d", b.NumUsers(), b.NumItems(), b.Factors())
	}
	return fmt.Sprintf("not ready: %v", b.Err())
}

// Holder publishes the current bundle to concurrent readers.
type Holder struct {
	current atomic.Pointer[Bundle]
}

// NewHolder creates a holder with an initial bundle.
func NewHolder(initial *Bundle) *Holder {
	h := &Holder{}
	if initial == nil {
		initial = NewNotReadyBundle(nil, ErrNotReady)
	}
	h.current.Store(initial)
	return h
}

// Load returns the current bundle. Callers should load once per request and
// use that bundle for the whole request.
func (h *Holder) Load() *Bundle {
	return h.current.Load()
}

// Swap installs next and returns the previous bundle.
func (h *Holder) Swap(next *Bundle) *Bundle {
	return h.current.Swap(next)
}
