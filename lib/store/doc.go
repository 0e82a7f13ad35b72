// Package store provides a high-level interface for key-value storage operations
// on text values and sorted sets, with unified error handling.
// It serves as an abstraction layer over the lower-level db.KVDB implementations, adding
// feature checks, standardized error reporting and operation metrics.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across different backends
//   - Pluggable storage backend architecture through DBFactory pattern
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store. All implementations share this common interface, allowing
//     applications to switch between a local store and a remote one (see rpc/client)
//     without code changes.
//
//   - Error System: A structured error reporting mechanism using typed return codes
//     and descriptive messages. Errors survive a round trip over the network: the
//     RPC client rebuilds an *Error from the transmitted code, and errors.Is keeps
//     matching sentinels such as zset.ErrInvalidScore.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances, providing dependency injection and flexible configuration of
//     storage backends.
//
// Implementations:
//
//   - Local Store (lstore): A non-distributed implementation that directly
//     utilizes a db.KVDB instance.
//     Available in the "github.com/ValentinKolb/zKV/lib/store/lstore" package.
//
//   - Remote Store (rpc/client): Forwards every call to a zKV server.
//     Available in the "github.com/ValentinKolb/zKV/rpc/client" package.
package store
