// Package http implements the HTTP transport for zKV's RPC layer.
//
// Requests are sent as "POST /{shardId}" with the serialized message as body,
// the response body is the serialized response message.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. Requests are spread
//     over all configured endpoints round-robin, a failed attempt is retried on
//     the next endpoint up to the configured retry count.
//
//   - httpServerTransport: Implements IRPCServerTransport on top of net/http.
//     NewHandler exposes the routing so it can be mounted in tests.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. Connect
//	and Close must not be called concurrently with Send.
package http
