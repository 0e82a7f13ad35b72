// Package zset implements a concurrent sorted set: a collection of unique
// string members, each tagged with a float64 score.
//
// A SortedSet keeps two indices in sync:
//   - a hash map from member to score for point lookups and upserts
//   - a B-tree (github.com/google/btree) ordered by (score, member) for
//     range queries in O(log n + k)
//
// Both indices share one sync.RWMutex. Every mutation updates both of them
// inside the same critical section, so concurrent readers never observe an
// orphaned or duplicated entry.
//
// Scores must not be NaN. Add rejects NaN with ErrInvalidScore, which can be
// matched with errors.Is. Positive and negative infinity are valid scores.
package zset
