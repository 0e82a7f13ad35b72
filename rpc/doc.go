// Package rpc is the communication layer of zKV. It lets the CLI (or any Go
// program) use a store that lives in a zKV server process, and serves the
// REST API next to it.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstractions, implemented over HTTP
//     by transport/http.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: A store.IStore implementation that forwards every call to a server.
//
//   - server: The server that owns the stores and answers RPC requests.
//
//   - api: The REST API on top of a store.IStore.
package rpc
