package zset

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkConsistent asserts that both indices hold exactly the same pairs
func checkConsistent(t *testing.T, s *SortedSet) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Equal(t, len(s.scores), s.index.Len(), "forward and reverse index differ in size")
	s.index.Ascend(func(item ScoredMember) bool {
		score, ok := s.scores[item.Member]
		assert.True(t, ok, "orphaned index entry %v", item)
		assert.Equal(t, score, item.Score, "index entry %v has stale score", item)
		return true
	})
}

func TestAddAndRange(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("b", 2))
	require.NoError(t, s.Add("a", 1))
	require.NoError(t, s.Add("c", 3))

	assert.Equal(t, []ScoredMember{{1, "a"}, {2, "b"}}, s.Range(1, 2))
	assert.Equal(t, []ScoredMember{{1, "a"}, {2, "b"}, {3, "c"}}, s.Range(math.Inf(-1), math.Inf(1)))
	assert.Equal(t, 3, s.Len())
	checkConsistent(t, s)
}

func TestUpdateMovesMember(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("m", 1))
	require.NoError(t, s.Add("m", 5))

	assert.Empty(t, s.Range(0, 2))
	assert.Equal(t, []ScoredMember{{5, "m"}}, s.Range(0, 10))

	score, ok := s.Score("m")
	assert.True(t, ok)
	assert.Equal(t, 5.0, score)
	assert.Equal(t, 1, s.Len())
	checkConsistent(t, s)
}

func TestAddSameScoreIsNoop(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("m", 1))
	require.NoError(t, s.Add("m", 1))

	assert.Equal(t, []ScoredMember{{1, "m"}}, s.Range(1, 1))
	checkConsistent(t, s)
}

func TestTiesOrderedByMember(t *testing.T) {
	s := New()
	for _, m := range []string{"y", "x", "z", ""} {
		require.NoError(t, s.Add(m, 1))
	}

	assert.Equal(t, []ScoredMember{{1, ""}, {1, "x"}, {1, "y"}, {1, "z"}}, s.Range(1, 1))
}

func TestRangeReturnsHighByteMembers(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("\x7f", 1))
	require.NoError(t, s.Add("ü", 1))
	require.NoError(t, s.Add("\xff\xff", 1))

	assert.Len(t, s.Range(1, 1), 3)
}

func TestRejectsNaN(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("m", 1))

	err := s.Add("m", math.NaN())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScore))

	err = s.Add("n", math.NaN())
	assert.True(t, errors.Is(err, ErrInvalidScore))

	score, ok := s.Score("m")
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)
	_, ok = s.Score("n")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	checkConsistent(t, s)
}

func TestInfiniteScores(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("low", math.Inf(-1)))
	require.NoError(t, s.Add("mid", 0))
	require.NoError(t, s.Add("high", math.Inf(1)))

	assert.Equal(t, []ScoredMember{{math.Inf(-1), "low"}, {0, "mid"}, {math.Inf(1), "high"}},
		s.Range(math.Inf(-1), math.Inf(1)))
	assert.Equal(t, []ScoredMember{{math.Inf(1), "high"}}, s.Range(math.Inf(1), math.Inf(1)))
}

func TestRangeEdgeCases(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("a", 1))
	require.NoError(t, s.Add("b", 2))

	t.Run("MinGreaterThanMax", func(t *testing.T) {
		r := s.Range(2, 1)
		assert.NotNil(t, r)
		assert.Empty(t, r)
	})

	t.Run("NaNBounds", func(t *testing.T) {
		assert.Empty(t, s.Range(math.NaN(), 5))
		assert.Empty(t, s.Range(0, math.NaN()))
	})

	t.Run("InclusiveBounds", func(t *testing.T) {
		assert.Equal(t, []ScoredMember{{2, "b"}}, s.Range(2, 2))
	})

	t.Run("EmptySet", func(t *testing.T) {
		r := New().Range(math.Inf(-1), math.Inf(1))
		assert.NotNil(t, r)
		assert.Empty(t, r)
	})
}

func TestRemove(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("a", 1))
	require.NoError(t, s.Add("b", 2))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.False(t, s.Remove("missing"))

	assert.Equal(t, []ScoredMember{{2, "b"}}, s.Range(0, 10))
	checkConsistent(t, s)

	assert.True(t, s.Remove("b"))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Range(math.Inf(-1), math.Inf(1)))
}

func TestConcurrentUpdatesKeepIndicesInSync(t *testing.T) {
	s := New()
	const (
		workers = 16
		members = 50
		rounds  = 200
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				m := fmt.Sprintf("m-%d", (w*rounds+i)%members)
				switch i % 4 {
				case 3:
					s.Remove(m)
				default:
					_ = s.Add(m, float64((w+i)%7))
				}
				s.Range(0, 3)
			}
		}(w)
	}
	wg.Wait()

	checkConsistent(t, s)
}

func TestConcurrentDistinctMembers(t *testing.T) {
	s := New()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.Add(fmt.Sprintf("member-%03d", i), float64(i))
		}(i)
	}
	wg.Wait()

	r := s.Range(math.Inf(-1), math.Inf(1))
	require.Len(t, r, n)
	for i, item := range r {
		assert.Equal(t, float64(i), item.Score)
	}
	checkConsistent(t, s)
}
