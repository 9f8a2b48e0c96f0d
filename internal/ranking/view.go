// Package ranking builds the immutable, totally-ordered view of eligible
// customers that queries are answered against.
//
// ALGORITHM:
// 1. Enumerate the store, keep only customers with score > 0.
// 2. Full sort by (score DESC, customer_id ASC) (O(N log N)).
// 3. Assign dense 1-based ranks with no ties, since customer_id is a unique
//    tie-break key.
//
// A View is immutable once built; callers hold a reference and never see it
// mutated underneath them.
package ranking

import (
	"sort"

	"rankboard/internal/customerstore"
)

// RankedCustomer is a read-only projection of a Customer at its rank within
// a particular View.
type RankedCustomer struct {
	CustomerID int64
	Score      string
	Rank       int32

	score customerstore.Customer
}

// View is an immutable, totally-ordered snapshot of every customer whose
// score is strictly greater than zero.
type View struct {
	entries  []RankedCustomer
	rankByID map[int64]int // customer_id -> index into entries
}

// Empty returns a View with no entries, used before the first rebuild.
func Empty() *View {
	return &View{rankByID: map[int64]int{}}
}

// Build enumerates src and produces a new immutable View. src is read once
// per customer; the resulting View is independent of any later change to
// src.
func Build(src *customerstore.Store) *View {
	entries := make([]RankedCustomer, 0, src.Len())
	src.Range(func(c customerstore.Customer) bool {
		if c.Score.Sign() > 0 {
			entries = append(entries, RankedCustomer{
				CustomerID: c.ID,
				score:      c,
			})
		}
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		si, sj := entries[i].score.Score, entries[j].score.Score
		if !si.Equal(sj) {
			return si.GreaterThan(sj)
		}
		return entries[i].CustomerID < entries[j].CustomerID
	})

	rankByID := make(map[int64]int, len(entries))
	for i := range entries {
		entries[i].Rank = int32(i + 1)
		entries[i].Score = entries[i].score.Score.String()
		rankByID[entries[i].CustomerID] = i
	}

	return &View{entries: entries, rankByID: rankByID}
}

// Size returns the number of ranked customers in the view.
func (v *View) Size() int {
	return len(v.entries)
}

// At returns the entry at the given 0-based index. Callers must check
// bounds via Size.
func (v *View) At(i int) RankedCustomer {
	return v.entries[i]
}

// IndexOf returns the 0-based position of id in the view, or (-1, false) if
// id is not currently ranked.
func (v *View) IndexOf(id int64) (int, bool) {
	idx, ok := v.rankByID[id]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Slice returns a copy of entries at 0-based positions [from, to).
// Callers are expected to have already clamped from/to to [0, Size()].
func (v *View) Slice(from, to int) []RankedCustomer {
	if from >= to {
		return []RankedCustomer{}
	}
	out := make([]RankedCustomer, to-from)
	copy(out, v.entries[from:to])
	return out
}
