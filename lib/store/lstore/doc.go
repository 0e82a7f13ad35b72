// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. It provides a thin wrapper around any db.KVDB
// implementation. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Key Features:
//   - Direct integration with db.KVDB implementations
//   - Feature detection to handle unsupported operations gracefully
//   - Translation of db errors (e.g. zset.ErrInvalidScore) into *store.Error codes
//   - Per operation counters, error counters and latency summaries exported
//     through github.com/VictoriaMetrics/metrics
//
// Implementation Details:
//
//   - Feature Detection: Before executing operations, the store checks if the underlying
//     db.KVDB implementation supports the requested feature through the SupportsFeature
//     method. Unsupported operations return RetCUnsupportedOperation rather than failing
//     silently or producing undefined behavior.
//
//   - Composition Architecture: The store follows a composition pattern where the
//     store.DBFactory factory function injects the underlying db.KVDB implementation.
//     This allows the store to work with any db.KVDB-compatible engine without modification.
//
// Thread Safety:
//
//	All operations in the local store are thread-safe as long as the underlying
//	db.KVDB implementation is.
//
// Usage Example:
//
//	factory := func() db.KVDB { return aspen.NewAspenDB(aspen.DefaultOptions()) }
//	s := lstore.NewLocalStore(factory)
//
//	err := s.ZAdd("leaderboard", "alice", 42)
//	top, err := s.ZRange("leaderboard", 40, math.Inf(1))
package lstore
