// Package aspen implements an in-memory key-value database (KVDB) whose keys
// hold either a text value or a sorted set. It provides a complete
// implementation of the db.KVDB interface with a focus on thread safety and
// low contention between unrelated keys.
//
// Key Components:
//
//   - aspenImpl: The central database structure implementing db.KVDB. It owns
//     a fixed number of shards and routes every operation to exactly one of them.
//
//   - Shard: A partition of the key space backed by an xsync.MapOf, a concurrent
//     hash map that locks per bucket. Shards never coordinate with each other.
//
//   - Value: A tagged union of text and *zset.SortedSet. A key holds exactly one
//     kind at a time. Writing the other kind replaces the value.
//
// Internal Mechanisms:
//
//   - Sharding Strategy: Keys are distributed across shards in a two-step process:
//     1. String keys are converted to 64-bit integers using the HashString function
//     with a database-specific random seed
//     2. The integer key is right-shifted by 7 bits to use higher-quality bits for
//     distribution
//     The mapping is stable for the lifetime of the instance but differs between
//     instances.
//
//   - Per-key Atomicity: All mutations of a key (Put, Delete, ZAdd, ZRemove) run
//     under the bucket lock of the shard map (Store, Delete or Compute). Sorted set
//     mutations happen inside that critical section, so concurrent writers of the
//     same key are linearized and a sorted set is never replaced while a member is
//     being added to it.
//
//   - Reads: Get loads the value without locking the bucket. Sorted set reads
//     (ZRange, ZScore, ZCard) load the set and then take its read lock, so they
//     always see both set indices in a consistent state.
//
//   - Metrics and Monitoring: GetInfo samples up to 100 entries per shard and
//     reports estimated sizes, the share of sorted set keys and shard
//     distribution statistics.
//
// Not supported: persistence, expiry of keys and transactions across keys.
package aspen
