package aspen

import (
	"runtime"
	"sync"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/engines/aspen/internal"
	"github.com/ValentinKolb/zKV/lib/db/util"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Core Aspen database structure
// --------------------------------------------------------------------------

// aspenImpl implements an in-memory database with sharded data
type aspenImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for hash function
	shards    []*internal.Shard // Array of shards
}

// DBOptions configures the aspenImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default aspenImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// supportedFeatures lists every feature of aspen
const supportedFeatures = db.FeaturePut |
	db.FeatureGet |
	db.FeatureDelete |
	db.FeatureBatchPut |
	db.FeatureListGet |
	db.FeatureZAdd |
	db.FeatureZRemove |
	db.FeatureZRange |
	db.FeatureZScore |
	db.FeatureZCard

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewAspenDB creates a new AspenDB instance with the specified options (optional)
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewAspenDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = runtime.NumCPU()
	}

	shards := make([]*internal.Shard, numShards)
	for i := range shards {
		shards[i] = internal.NewShard()
	}

	return &aspenImpl{
		numShards: numShards,
		seed:      util.GenerateSeed(),
		shards:    shards,
	}
}

// shardFor returns the shard responsible for key. The mapping is fixed for
// the lifetime of the instance.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) shardFor(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, aspen.seed), aspen.shards)
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Text Operations
// --------------------------------------------------------------------------

// Put inserts or overwrites the text value of a key.
// A sorted set stored under the key is replaced.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Put(key, value string) {
	aspen.shardFor(key).Data.Store(key, internal.TextValue(value))
}

// Delete removes the value of a key, regardless of its kind.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Delete(key string) {
	aspen.shardFor(key).Data.Delete(key)
}

// Get retrieves the text value of a key.
// The boolean is false if the key does not exist or holds a sorted set.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Get(key string) (string, bool) {
	v, ok := aspen.shardFor(key).Data.Load(key)
	if !ok || !v.IsText() {
		return "", false
	}
	return v.Text, true
}

// BatchPut applies Put for each entry in order.
//
// Thread-safety: Each single Put is atomic, the batch as a whole is not.
func (aspen *aspenImpl) BatchPut(entries []db.KeyValue) {
	for _, e := range entries {
		aspen.Put(e.Key, e.Value)
	}
}

// ListGet returns all entries whose key holds a text value, in input order.
// The returned slice is never nil.
//
// Thread-safety: Each single lookup is atomic, the list as a whole is not.
func (aspen *aspenImpl) ListGet(keys []string) []db.KeyValue {
	result := make([]db.KeyValue, 0, len(keys))
	for _, key := range keys {
		if value, ok := aspen.Get(key); ok {
			result = append(result, db.KeyValue{Key: key, Value: value})
		}
	}
	return result
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Sorted Set Operations
// --------------------------------------------------------------------------

// ZAdd adds a member to the sorted set of a key or updates its score.
// The set is created if the key does not exist or holds text.
// A NaN score returns zset.ErrInvalidScore and leaves the key untouched.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// Concurrent ZAdd, ZRemove, Put and Delete calls on the same key are linearized
// by the shard map.
func (aspen *aspenImpl) ZAdd(key, member string, score float64) error {
	var err error
	aspen.shardFor(key).Data.Compute(key, func(old internal.Value, loaded bool) (internal.Value, bool) {
		v := old
		if !loaded || !old.IsSortedSet() {
			v = internal.SortedSetValue()
		}
		if err = v.Set.Add(member, score); err != nil {
			// keep the old state; if there was none, don't create one
			return old, !loaded
		}
		return v, false
	})
	if err != nil {
		return errors.Wrapf(err, "zadd %q", key)
	}
	return nil
}

// ZRemove removes a member from the sorted set of a key.
// The (possibly empty) set stays in place.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) ZRemove(key, member string) {
	aspen.shardFor(key).Data.Compute(key, func(old internal.Value, loaded bool) (internal.Value, bool) {
		if !loaded {
			return old, true // set delete to true because else the value will be created
		}
		if old.IsSortedSet() {
			old.Set.Remove(member)
		}
		return old, false
	})
}

// ZRange returns all members of the sorted set of a key with min <= score <= max.
// The result is never nil.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) ZRange(key string, min, max float64) []zset.ScoredMember {
	set, ok := aspen.loadSet(key)
	if !ok {
		return make([]zset.ScoredMember, 0)
	}
	return set.Range(min, max)
}

// ZScore returns the score of a member of the sorted set of a key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) ZScore(key, member string) (float64, bool) {
	set, ok := aspen.loadSet(key)
	if !ok {
		return 0, false
	}
	return set.Score(member)
}

// ZCard returns the number of members of the sorted set of a key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) ZCard(key string) int {
	set, ok := aspen.loadSet(key)
	if !ok {
		return 0
	}
	return set.Len()
}

// loadSet returns the sorted set of a key, false if the key is missing or holds text
func (aspen *aspenImpl) loadSet(key string) (*zset.SortedSet, bool) {
	v, ok := aspen.shardFor(key).Data.Load(key)
	if !ok || !v.IsSortedSet() {
		return nil, false
	}
	return v.Set, true
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// Metadata is the implementation specific part of db.DatabaseInfo
type Metadata struct {
	ShardCount        int                    `json:"shard_count"`
	KeyCount          int                    `json:"key_count"`
	SortedSetShare    float64                `json:"sorted_set_share"`
	MedianSetSize     int                    `json:"median_set_size"`
	ShardDistribution util.DistributionStats `json:"shard_distribution"`
	ValueSizeP90Bytes int                    `json:"value_size_p90_bytes"`
	Info              string                 `json:"info"`
}

// GetInfo returns statistics about the database.
// Sizes are estimated from a sample of entries per shard.
func (aspen *aspenImpl) GetInfo() db.DatabaseInfo {

	sizes := util.NewSizeHistogram()
	cardinalities := util.NewCardinalityHistogram()
	samplesPerShard := 100

	wg := sync.WaitGroup{}
	wg.Add(len(aspen.shards))

	mu := sync.Mutex{}
	var (
		sampled, sampledSets int
		totalKeys            int
	)
	shardSizes := make([]float64, len(aspen.shards))

	// concurrently collect samples from all shards
	for shardIndex, shard := range aspen.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			count, sets := 0, 0
			s.Data.Range(func(key string, v internal.Value) bool {
				switch {
				case v.IsText():
					sizes.AddSample(len(key) + len(v.Text))
				case v.IsSortedSet():
					n := v.Set.Len()
					cardinalities.AddSample(n)
					// 8 bytes score + two index entries + ~16 bytes member estimate
					sizes.AddSample(len(key) + n*48)
					sets++
				}
				count++
				return count < samplesPerShard
			})

			size := s.Data.Size()

			mu.Lock()
			defer mu.Unlock()
			sampled += count
			sampledSets += sets
			totalKeys += size
			shardSizes[i] = float64(size)
		}(shardIndex, shard)
	}

	wg.Wait()

	// weighted estimate (60% median, 40% average) per entry
	entryOverhead := 32
	perEntry := (sizes.Median()*60+sizes.Average()*40)/100 + entryOverhead

	var setShare float64
	if sampled > 0 {
		setShare = float64(sampledSets) / float64(sampled)
	}

	meta := &Metadata{
		ShardCount:        len(aspen.shards),
		KeyCount:          totalKeys,
		SortedSetShare:    setShare,
		MedianSetSize:     cardinalities.Median(),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		ValueSizeP90Bytes: sizes.Percentile(90),
		Info:              "All values except shard_count and key_count are estimates based on sampling.",
	}

	features := make([]db.Feature, 0, len(featureList))
	for _, f := range featureList {
		if aspen.SupportsFeature(f) {
			features = append(features, f)
		}
	}

	return db.DatabaseInfo{
		SizeBytes:         perEntry * totalKeys,
		DbType:            db.ImplAspen,
		SupportedFeatures: features,
		Metadata:          meta,
	}
}

var featureList = []db.Feature{
	db.FeaturePut, db.FeatureGet, db.FeatureDelete,
	db.FeatureBatchPut, db.FeatureListGet,
	db.FeatureZAdd, db.FeatureZRemove, db.FeatureZRange,
	db.FeatureZScore, db.FeatureZCard,
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (aspen *aspenImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

// Close releases all data held by the database
func (aspen *aspenImpl) Close() error {
	for _, shard := range aspen.shards {
		shard.Data.Clear()
	}
	return nil
}
