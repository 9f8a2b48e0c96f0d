// Package customerstore holds the primary customer_id -> score mapping.
// It is the Customer Store of the ranking index: a lock-free concurrent map
// that accepts point updates to distinct customers without contention.
package customerstore

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/shopspring/decimal"
)

// ErrOutOfRange is returned when ApplyDelta receives a delta outside [-1000, 1000].
var ErrOutOfRange = errors.New("customerstore: delta out of range")

// MinDelta and MaxDelta bound a single ApplyDelta call.
var (
	MinDelta = decimal.New(-1000, 0)
	MaxDelta = decimal.New(1000, 0)
)

// Customer is the persisted record for one customer_id.
type Customer struct {
	ID    int64
	Score decimal.Decimal
}

// Store is a concurrent customer_id -> Customer map. Reads and writes to
// distinct ids never block one another; ApplyDelta on the same id is
// linearizable via xsync's per-bucket compare-and-swap retry loop.
type Store struct {
	m *xsync.MapOf[int64, Customer]
}

// New creates an empty Store.
func New() *Store {
	return &Store{m: xsync.NewMapOf[int64, Customer]()}
}

// ApplyDelta inserts-or-updates the score for id and returns the resulting
// score. If id is absent, a new Customer is created with score == delta.
// Concurrent calls for the same id never lose updates.
func (s *Store) ApplyDelta(id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	if id <= 0 {
		return decimal.Decimal{}, errors.New("customerstore: id must be positive")
	}
	if delta.LessThan(MinDelta) || delta.GreaterThan(MaxDelta) {
		return decimal.Decimal{}, ErrOutOfRange
	}

	var result Customer
	s.m.Compute(id, func(oldValue Customer, loaded bool) (Customer, bool) {
		if !loaded {
			result = Customer{ID: id, Score: delta}
		} else {
			result = Customer{ID: id, Score: oldValue.Score.Add(delta)}
		}
		return result, false
	})
	return result.Score, nil
}

// Get returns the current Customer for id, if one has ever been written.
func (s *Store) Get(id int64) (Customer, bool) {
	return s.m.Load(id)
}

// Len returns the number of customers that have ever received an update,
// including those whose score has since fallen to zero or below.
func (s *Store) Len() int {
	return s.m.Size()
}

// Range calls f for every customer currently in the store. f must not call
// back into the Store. Iteration order is unspecified.
func (s *Store) Range(f func(Customer) bool) {
	s.m.Range(func(_ int64, c Customer) bool {
		return f(c)
	})
}
