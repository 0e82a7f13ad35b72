package zset

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrInvalidScore is returned when a score is NaN. NaN has no position in a
// total order and can therefore not be stored in the score index.
var ErrInvalidScore = errors.New("invalid score: NaN is not allowed")

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// btreeDegree is the degree of the score index
const btreeDegree = 32

// ScoredMember is a single (score, member) pair of a sorted set
type ScoredMember struct {
	Score  float64 `json:"score"`
	Member string  `json:"member"`
}

// less orders entries by score first and by member (byte-wise) second
func less(a, b ScoredMember) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// --------------------------------------------------------------------------
// Sorted Set
// --------------------------------------------------------------------------

// SortedSet stores members with a float score. Two indices are maintained:
//   - scores: member -> score (point lookups and upserts)
//   - index:  (score, member) ordered B-tree (range scans)
//
// Both indices are guarded by the same lock, so no reader ever observes a
// member in one index but not in the other.
//
// Thread-safety: All methods are thread-safe and can be called concurrently.
type SortedSet struct {
	mu     sync.RWMutex
	scores map[string]float64
	index  *btree.BTreeG[ScoredMember]
}

// New creates an empty sorted set
func New() *SortedSet {
	return &SortedSet{
		scores: make(map[string]float64),
		index:  btree.NewG[ScoredMember](btreeDegree, less),
	}
}

// Add inserts the member with the given score or moves an existing member to
// the new score. A NaN score is rejected with ErrInvalidScore and leaves the
// set untouched.
func (s *SortedSet) Add(member string, score float64) error {
	if math.IsNaN(score) {
		return errors.Wrapf(ErrInvalidScore, "member %q", member)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.scores[member]; ok {
		if old == score {
			return nil
		}
		s.index.Delete(ScoredMember{Score: old, Member: member})
	}

	s.scores[member] = score
	s.index.ReplaceOrInsert(ScoredMember{Score: score, Member: member})
	return nil
}

// Remove deletes the member from both indices.
// It returns true if the member was part of the set.
func (s *SortedSet) Remove(member string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	score, ok := s.scores[member]
	if !ok {
		return false
	}

	delete(s.scores, member)
	s.index.Delete(ScoredMember{Score: score, Member: member})
	return true
}

// Range returns all members with min <= score <= max in ascending order.
// Members with equal scores are ordered lexicographically. The result is
// never nil. A NaN bound or min > max yields an empty result.
func (s *SortedSet) Range(min, max float64) []ScoredMember {
	result := make([]ScoredMember, 0)
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return result
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// the empty string sorts before every other member, so (min, "") is the
	// lowest possible entry with score min
	pivot := ScoredMember{Score: min, Member: ""}
	s.index.AscendGreaterOrEqual(pivot, func(item ScoredMember) bool {
		if item.Score > max {
			return false
		}
		result = append(result, item)
		return true
	})

	return result
}

// Score returns the score of the member and whether the member exists
func (s *SortedSet) Score(member string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.scores[member]
	return score, ok
}

// Len returns the number of members in the set
func (s *SortedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}
