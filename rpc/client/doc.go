// Package client implements the RPC client of zKV. NewRPCStore returns a
// store.IStore that forwards every operation to a remote server shard.
//
// Errors returned by the client are *store.Error values. Errors raised on the
// server keep their return code, so errors.Is(err, zset.ErrInvalidScore)
// works for a rejected NaN score just like with a local store. Transport and
// codec failures are reported as RetCInternalError.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	s, err := client.NewRPCStore(100, config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  return err
//	}
//	_ = s.ZAdd("leaderboard", "alice", 42)
//	top, _ := s.ZRange("leaderboard", 40, math.Inf(1))
//
// Thread Safety:
//
//	The store returned by NewRPCStore is safe for concurrent use.
package client
