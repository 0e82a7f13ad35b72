// Package transport defines the interfaces for RPC communication in zKV.
// A transport only moves opaque byte slices tagged with a shard id, encoding
// and decoding messages is the job of the serializer package.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to appropriate handlers.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The only implementation shipped is HTTP (package transport/http).
package transport
