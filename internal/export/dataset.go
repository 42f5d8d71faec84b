// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package export

import (
	"sort"

	"github.com/tomtom215/cinerec/internal/models"
)

// ActiveItems is the set of item ids present in the movie and series collections.
type ActiveItems struct {
	Movies map[string]struct{}
	Series map[string]struct{}
}

// Empty reports whether neither collection has documents.
func (a ActiveItems) Empty() bool {
	return len(a.Movies) == 0 && len(a.Series) == 0
}

// Contains reports whether key refers to an existing document.
func (a ActiveItems) Contains(key models.ItemKey) bool {
	var set map[string]struct{}
	switch key.Type {
	case models.MediaMovie:
		set = a.Movies
	case models.MediaSeries:
		set = a.Series
	}
	_, ok := set[key.ID]
	return ok
}

// Counts tallies the interactions accepted from each source.
type Counts struct {
	Playback int
	Likes    int
	Reviews  int
}

type pair struct {
	user string
	item string
}

// Accumulator sums weighted interactions per (user, item). Interactions with
// items that are not active are dropped.
type Accumulator struct {
	weights Weights
	active  ActiveItems
	scores  map[pair]float64
	counts  Counts
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(weights Weights, active ActiveItems) *Accumulator {
	return &Accumulator{
		weights: weights,
		active:  active,
		scores:  make(map[pair]float64),
	}
}

// AddPlayback adds one playback record.
func (a *Accumulator) AddPlayback(r models.PlaybackRecord) bool {
	if r.UserID == "" || r.ItemID == "" {
		return false
	}
	if !a.add(r.UserID, r.Key(), a.weights.Playback(r)) {
		return false
	}
	a.counts.Playback++
	return true
}

// AddLike adds one liked item. Kinds other than Movie and Series are ignored.
func (a *Accumulator) AddLike(userID string, like models.LikedItem) bool {
	key, ok := like.Key()
	if !ok || userID == "" {
		return false
	}
	if !a.add(userID, key, a.weights.Like) {
		return false
	}
	a.counts.Likes++
	return true
}

// AddReview adds one movie review.
func (a *Accumulator) AddReview(movieID string, rv models.Review) bool {
	score, ok := a.weights.Review(rv.Rating)
	if !ok || rv.UserID == "" || movieID == "" {
		return false
	}
	if !a.add(rv.UserID, models.NewItemKey(models.MediaMovie, movieID), score) {
		return false
	}
	a.counts.Reviews++
	return true
}

func (a *Accumulator) add(userID string, key models.ItemKey, score float64) bool {
	if !a.active.Contains(key) {
		return false
	}
	a.scores[pair{user: userID, item: key.String()}] += score
	return true
}

// Counts returns the accepted interactions per source.
func (a *Accumulator) Counts() Counts { return a.counts }

// Len returns the number of distinct (user, item) pairs.
func (a *Accumulator) Len() int { return len(a.scores) }

// Interaction is one row of the training table.
type Interaction struct {
	UserIdx int
	ItemIdx int
	Score   float64
}

// Dataset is the indexed training input: users and items in lexical order
// and one row per (user, item) pair ordered by user then item index.
type Dataset struct {
	Users        []string
	Items        []string
	Interactions []Interaction

	// Generation is set once the identity maps are written.
	Generation string
}

// Dataset indexes the accumulated scores.
func (a *Accumulator) Dataset() *Dataset {
	userSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})
	for p := range a.scores {
		userSet[p.user] = struct{}{}
		itemSet[p.item] = struct{}{}
	}

	users := sortedKeys(userSet)
	items := sortedKeys(itemSet)
	userIdx := indexOf(users)
	itemIdx := indexOf(items)

	rows := make([]Interaction, 0, len(a.scores))
	for p, s := range a.scores {
		rows = append(rows, Interaction{UserIdx: userIdx[p.user], ItemIdx: itemIdx[p.item], Score: s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserIdx != rows[j].UserIdx {
			return rows[i].UserIdx < rows[j].UserIdx
		}
		return rows[i].ItemIdx < rows[j].ItemIdx
	})

	return &Dataset{Users: users, Items: items, Interactions: rows}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
