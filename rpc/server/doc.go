// Package server implements the zKV RPC server. It owns one store per
// configured shard id, decodes incoming requests with the configured
// serializer and hands them to an adapter that calls the store.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating an adapter for key-value
//     and sorted set operations, translating RPC requests to store.IStore method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms. If an API endpoint is configured, Serve
//     also starts the REST API (package api) for one of the shards.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalIStore},
//	  },
//	  Endpoint:      "0.0.0.0:8080",
//	  APIEndpoint:   "0.0.0.0:8000",
//	  APIShard:      100,
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Every shard is backed by an aspen database wrapped in a local store, so
// shard ids are independent keyspaces.
//
// Thread Safety:
//
//	The server can handle concurrent requests across multiple connections.
//	Serve should be called only once.
package server
