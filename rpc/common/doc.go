// Package common provides the data structures shared by the zKV RPC
// packages: the message protocol, the client and server configuration and
// the logger setup.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between client and
//     server, with factory methods for every request and response type.
//     Scores are of type Float, which is encoded as a JSON string so that
//     infinite scores survive JSON encoding.
//
//   - MessageType: Enumeration of all supported operations, split into text
//     operations, sorted set operations and control messages.
//
//   - ServerConfig: Configuration of a server process (shards, endpoints,
//     engine sharding, timeouts and logging).
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts, and retry behavior.
//
//   - Logger: Logger factory for dragonboat's logger package, giving all named
//     zKV loggers ("rpc", "transport/rpc", "api", "store") the same format.
package common
