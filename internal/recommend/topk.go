// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/cinerec/internal/factors"
)

// OverfetchCount sizes a candidate pool: min(max(n*factor, n), total).
func OverfetchCount(n, factor, total int) int {
	take := n * factor
	if take < n {
		take = n
	}
	if take > total {
		take = total
	}
	if take < 0 {
		return 0
	}
	return take
}

// ranksAbove is the candidate order: higher score first, lower index on ties.
func ranksAbove(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// TopK selects the k best non-excluded candidates without sorting the whole
// vector, then orders just those. NaN scores rank below every real score.
func TopK(scores factors.Scores, k int) []Candidate {
	if k <= 0 || scores.Len() == 0 {
		return nil
	}
	if avail := scores.Available(); k > avail {
		k = avail
	}

	h := worstFirstHeap{items: make([]Candidate, 0, k)}
	for i := 0; i < scores.Len(); i++ {
		if scores.Excluded(i) {
			continue
		}
		score := scores.At(i)
		if math.IsNaN(score) {
			score = math.Inf(-1)
		}
		c := Candidate{Index: i, Score: score}

		if len(h.items) < k {
			h.push(c)
			continue
		}
		if ranksAbove(c, h.items[0]) {
			h.items[0] = c
			h.bubbleDown(0)
		}
	}

	out := h.items
	sort.Slice(out, func(a, b int) bool { return ranksAbove(out[a], out[b]) })
	return out
}

// worstFirstHeap keeps the lowest-ranked candidate at the root so it can be
// replaced in O(log k) when a better one shows up.
type worstFirstHeap struct {
	items []Candidate
}

func (h *worstFirstHeap) push(c Candidate) {
	h.items = append(h.items, c)
	h.bubbleUp(len(h.items) - 1)
}

func (h *worstFirstHeap) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !ranksAbove(h.items[parent], h.items[i]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *worstFirstHeap) bubbleDown(i int) {
	n := len(h.items)
	for {
		worst := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && ranksAbove(h.items[worst], h.items[left]) {
			worst = left
		}
		if right < n && ranksAbove(h.items[worst], h.items[right]) {
			worst = right
		}
		if worst == i {
			return
		}
		h.items[i], h.items[worst] = h.items[worst], h.items[i]
		i = worst
	}
}
