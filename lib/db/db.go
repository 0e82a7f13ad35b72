package db

import (
	"strings"

	"github.com/ValentinKolb/zKV/lib/db/zset"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplAspen Implementation = "aspen"
)

// ErrInvalidScore is returned by ZAdd for NaN scores (see zset.ErrInvalidScore)
var ErrInvalidScore = zset.ErrInvalidScore

// Feature represents database features as bit flags
type Feature uint64

const (
	FeaturePut      Feature = 1 << iota // Support for Put operations
	FeatureGet                          // Support for Get operations
	FeatureDelete                       // Support for Delete operations
	FeatureBatchPut                     // Support for BatchPut operations
	FeatureListGet                      // Support for ListGet operations
	FeatureZAdd                         // Support for ZAdd operations
	FeatureZRemove                      // Support for ZRemove operations
	FeatureZRange                       // Support for ZRange operations
	FeatureZScore                       // Support for ZScore operations
	FeatureZCard                        // Support for ZCard operations
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeaturePut, "Put"},
	{FeatureGet, "Get"},
	{FeatureDelete, "Delete"},
	{FeatureBatchPut, "BatchPut"},
	{FeatureListGet, "ListGet"},
	{FeatureZAdd, "ZAdd"},
	{FeatureZRemove, "ZRemove"},
	{FeatureZRange, "ZRange"},
	{FeatureZScore, "ZScore"},
	{FeatureZCard, "ZCard"},
}

// String returns the name of the feature. Combined flags are joined with "|".
func (f Feature) String() string {
	var names []string
	for _, fn := range featureNames {
		if f&fn.f != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, "|")
}

// KeyValue is a single text entry, used by BatchPut and ListGet
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for in-memory key-value database implementations.
// A key holds either a text value or a sorted set. Writing one kind of value
// to a key that holds the other kind replaces it.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Text Operations
	// --------------------------------------------------------------------------

	// Put inserts or overwrites the text value for key, replacing a sorted set if present.
	Put(key, value string)

	// Delete removes any value stored at key. Deleting a missing key is a no-op.
	Delete(key string)

	// Get returns the text value for key. The boolean is false if the key is
	// missing or holds a sorted set.
	Get(key string) (value string, loaded bool)

	// BatchPut applies Put for each entry in order. There is no atomicity
	// across entries.
	BatchPut(entries []KeyValue)

	// ListGet returns the entries of all keys that hold a text value,
	// in input order. Missing keys are skipped.
	ListGet(keys []string) (entries []KeyValue)

	// --------------------------------------------------------------------------
	// Sorted Set Operations
	// --------------------------------------------------------------------------

	// ZAdd adds member with score to the sorted set at key. The set is created
	// if the key is missing or holds a text value. A NaN score returns
	// ErrInvalidScore and changes nothing.
	ZAdd(key, member string, score float64) (err error)

	// ZRemove removes member from the sorted set at key. It is a no-op if the
	// key or member is missing or the key holds a text value.
	ZRemove(key, member string)

	// ZRange returns all members with min <= score <= max, ordered by score
	// and then member. The result is empty (never nil) if nothing matches.
	ZRange(key string, min, max float64) (members []zset.ScoredMember)

	// ZScore returns the score of member in the sorted set at key.
	ZScore(key, member string) (score float64, loaded bool)

	// ZCard returns the number of members in the sorted set at key.
	ZCard(key string) (count int)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database.
	Close() (err error)
}
