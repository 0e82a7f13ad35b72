// Package cmd implements the command-line interface of zKV. It provides
// commands for running the server and for talking to it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Client commands for text values (put, get, del, batch, list), sorted
//     sets (zadd, zrem, zrange, zscore, zcard) and a load test (perf)
//   - serve: Starts a zKV server with its RPC endpoint and optional REST API
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as ZKV_<FLAG> environment variables or in a
// .env / .env.local file. See zkv -help for a list of all commands.
package cmd
