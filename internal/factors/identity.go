// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

import (
	"fmt"

	"github.com/tomtom215/cinerec/internal/models"
)

// IdentityMaps maps user ids and item keys to the dense row indices of the
// factor matrices. Position in the source list is the dense index.
type IdentityMaps struct {
	users     []string
	items     []models.ItemKey
	userIndex map[string]int
	itemIndex map[models.ItemKey]int
}

// NewIdentityMaps builds both maps from the ordered artifact lists.
// Empty ids, unparseable item keys and duplicates are load errors.
func NewIdentityMaps(users, itemKeys []string) (*IdentityMaps, error) {
	m := &IdentityMaps{
		users:     make([]string, len(users)),
		items:     make([]models.ItemKey, len(itemKeys)),
		userIndex: make(map[string]int, len(users)),
		itemIndex: make(map[models.ItemKey]int, len(itemKeys)),
	}

	for i, u := range users {
		if u == "" {
			return nil, fmt.Errorf("user list: empty id at index %d", i)
		}
		if prev, dup := m.userIndex[u]; dup {
			return nil, fmt.Errorf("user list: %q at index %d duplicates index %d", u, i, prev)
		}
		m.users[i] = u
		m.userIndex[u] = i
	}

	for i, raw := range itemKeys {
		key, err := models.ParseItemKey(raw)
		if err != nil {
			return nil, fmt.Errorf("item list: index %d: %w", i, err)
		}
		if prev, dup := m.itemIndex[key]; dup {
			return nil, fmt.Errorf("item list: %q at index %d duplicates index %d", raw, i, prev)
		}
		m.items[i] = key
		m.itemIndex[key] = i
	}

	return m, nil
}

// UserIndex returns the dense index of a user. ok is false for unknown users,
// which is the normal cold-start case and not an error.
func (m *IdentityMaps) UserIndex(userID string) (int, bool) {
	idx, ok := m.userIndex[userID]
	return idx, ok
}

// ItemIndex returns the dense index of an item key.
func (m *IdentityMaps) ItemIndex(key models.ItemKey) (int, bool) {
	idx, ok := m.itemIndex[key]
	return idx, ok
}

// Item returns the key at a dense index. It panics on an out-of-range index.
func (m *IdentityMaps) Item(idx int) models.ItemKey {
	return m.items[idx]
}

// User returns the user id at a dense index.
func (m *IdentityMaps) User(idx int) string {
	return m.users[idx]
}

// NumUsers returns the number of known users.
func (m *IdentityMaps) NumUsers() int { return len(m.users) }

// NumItems returns the number of known items.
func (m *IdentityMaps) NumItems() int { return len(m.items) }
