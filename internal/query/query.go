// Package query answers range and neighbor-window queries against a
// ranking.View. Both operations are stateless and non-blocking once a view
// has been obtained from the coherence controller.
package query

import (
	"errors"

	"rankboard/internal/ranking"
)

// ErrBadArgument is returned when a caller passes an invalid range or
// neighbor count.
var ErrBadArgument = errors.New("query: bad argument")

// Range returns the sub-sequence of v with start <= rank <= end (both
// 1-based, inclusive). end beyond the last rank clamps silently; start
// beyond the last rank returns an empty slice.
func Range(v *ranking.View, start, end int) ([]ranking.RankedCustomer, error) {
	if start < 1 || end < start {
		return nil, ErrBadArgument
	}

	size := v.Size()
	from := start - 1 // 0-based
	if from >= size {
		return []ranking.RankedCustomer{}, nil
	}
	to := end
	if to > size {
		to = size
	}
	return v.Slice(from, to), nil
}

// Neighbors returns the window of entries around id: up to high entries
// with a better (numerically smaller) rank, id itself, and up to low
// entries with a worse rank. If id is absent from v, returns an empty
// slice and no error.
func Neighbors(v *ranking.View, id int64, high, low int) ([]ranking.RankedCustomer, error) {
	if high < 0 || low < 0 {
		return nil, ErrBadArgument
	}

	idx, ok := v.IndexOf(id)
	if !ok {
		return []ranking.RankedCustomer{}, nil
	}

	from := idx - high
	if from < 0 {
		from = 0
	}
	to := idx + low + 1
	if size := v.Size(); to > size {
		to = size
	}
	return v.Slice(from, to), nil
}
