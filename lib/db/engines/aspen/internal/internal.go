package internal

import (
	"github.com/ValentinKolb/zKV/lib/db/util"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Value Type (tagged union of text and sorted set)
// --------------------------------------------------------------------------

// ValueKind tells which field of a Value is populated
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindSortedSet
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindSortedSet:
		return "SortedSet"
	default:
		return "Unknown"
	}
}

// Value is the content stored under a key. Exactly one of Text and Set is
// meaningful, depending on Kind.
type Value struct {
	Kind ValueKind
	Text string
	Set  *zset.SortedSet
}

// TextValue creates a Value holding text
func TextValue(text string) Value {
	return Value{Kind: KindText, Text: text}
}

// SortedSetValue creates a Value holding a new, empty sorted set
func SortedSetValue() Value {
	return Value{Kind: KindSortedSet, Set: zset.New()}
}

// IsText reports whether the value holds text
func (v Value) IsText() bool { return v.Kind == KindText }

// IsSortedSet reports whether the value holds a sorted set
func (v Value) IsSortedSet() bool { return v.Kind == KindSortedSet && v.Set != nil }

// --------------------------------------------------------------------------
// Shard Type (partition of the database)
// --------------------------------------------------------------------------

// Shard represents a partition of the database.
// Each shard has its own independent concurrent map.
type Shard struct {
	Data *xsync.MapOf[string, Value]
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[string, Value](),
	}
}

// GetShard returns the appropriate shard for a given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard[T any](key util.UintKey, shards []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shiftedKey := uint64(key) >> 7
	shardPos := shiftedKey % uint64(len(shards))
	return shards[shardPos]
}
