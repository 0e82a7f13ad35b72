// Package util provides utility components for
// database implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - statistics: Distribution statistics (e.g. for shard sizes) and a SizeHistogram for tracking data size distribution
//   - functions: Seeded string hashing used to route keys to shards
//
// This package is particularly useful for:
//   - Database developers implementing the KVDB interface
//   - Monitoring systems that need to track database size and distribution metrics
package util
