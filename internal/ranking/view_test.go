package ranking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankboard/internal/customerstore"
)

func seedStore(t *testing.T, deltas map[int64]int64) *customerstore.Store {
	t.Helper()
	s := customerstore.New()
	for id, d := range deltas {
		_, err := s.ApplyDelta(id, decimal.NewFromInt(d))
		require.NoError(t, err)
	}
	return s
}

func TestBuildExcludesNonPositiveScores(t *testing.T) {
	s := seedStore(t, map[int64]int64{1: 50, 2: 30})
	_, err := s.ApplyDelta(1, decimal.NewFromInt(-50))
	require.NoError(t, err)

	v := Build(s)

	require.Equal(t, 1, v.Size())
	assert.Equal(t, int64(2), v.At(0).CustomerID)
}

func TestBuildOrdersByScoreDescCustomerIDAsc(t *testing.T) {
	// S1: (1,+100), (2,+200), (3,+200)
	s := seedStore(t, map[int64]int64{1: 100, 2: 200, 3: 200})

	v := Build(s)

	require.Equal(t, 3, v.Size())
	assert.Equal(t, int64(2), v.At(0).CustomerID)
	assert.Equal(t, int32(1), v.At(0).Rank)
	assert.Equal(t, int64(3), v.At(1).CustomerID)
	assert.Equal(t, int32(2), v.At(1).Rank)
	assert.Equal(t, int64(1), v.At(2).CustomerID)
	assert.Equal(t, int32(3), v.At(2).Rank)
}

func TestBuildRanksAreDenseNoGaps(t *testing.T) {
	s := seedStore(t, map[int64]int64{1: 10, 2: 10, 3: 10, 4: 10})

	v := Build(s)

	for i := 0; i < v.Size(); i++ {
		assert.Equal(t, int32(i+1), v.At(i).Rank)
	}
}

func TestIndexOfMissingCustomer(t *testing.T) {
	s := seedStore(t, map[int64]int64{1: 10})
	v := Build(s)

	_, ok := v.IndexOf(999)
	assert.False(t, ok)
}

func TestEmptyViewHasZeroSize(t *testing.T) {
	v := Empty()
	assert.Equal(t, 0, v.Size())
}
