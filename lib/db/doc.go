// Package db provides a standardized interface for in-memory key-value
// database implementations that store either plain text values or sorted sets
// under a key.
//
// The package focuses on:
//   - A unified interface for text and sorted set operations
//   - Feature discovery through capability flags
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides text operations (Put, Get, Delete, BatchPut, ListGet),
//     sorted set operations (ZAdd, ZRemove, ZRange, ZScore, ZCard) and
//     metadata retrieval (GetInfo).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "aspen").
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata. Note: For most implementations all
//     size statistics will be estimated since a precise calculation can be
//     expensive.
//
// Value Kinds:
//   - A key holds exactly one kind of value at a time. Put on a key holding a
//     sorted set replaces the set with text, ZAdd on a key holding text replaces
//     the text with a new set.
//   - Read operations never convert: Get on a sorted set key reports "not found",
//     sorted set reads on a text key behave as if the set were empty.
//   - Removing the last member of a sorted set keeps the (empty) set. Only
//     Delete or Put removes it.
//
// Consistency:
//   - Operations on the same key are linearizable.
//   - Operations on different keys are not ordered with respect to each other.
//   - BatchPut and ListGet are not atomic across keys.
//
// Related Packages:
//
// The engines/aspen package (github.com/ValentinKolb/zKV/lib/db/engines/aspen) provides a
// sharded in-memory implementation of the KVDB interface.
//
// The zset package (github.com/ValentinKolb/zKV/lib/db/zset) implements the sorted
// set data structure used by aspen.
//
// The util package (github.com/ValentinKolb/zKV/lib/db/util) provides hashing and
// statistics helpers for KVDB implementations.
//
// The testing package (github.com/ValentinKolb/zKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
