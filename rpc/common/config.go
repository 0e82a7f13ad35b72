package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalIStore ServerShardType = "local store"
)

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type of the store behind the shard
	Type ServerShardType
}

// ServerConfig holds all configuration parameters of a zKV server.
type ServerConfig struct {
	// stores served by this process
	Shards []ServerShard

	// number of internal shards of each aspen database (0 = number of CPUs)
	EngineShards int

	// read and write timeout of the http servers
	TimeoutSecond int64

	// RPC endpoint (host:port)
	Endpoint string

	// REST API endpoint (host:port), empty disables the REST API
	APIEndpoint string

	// shard served by the REST API
	APIShard uint64

	// Logging configuration
	LogLevel string
}

// HasShard checks if the configuration contains a shard with the given id
func (c *ServerConfig) HasShard(id uint64) bool {
	for _, shard := range c.Shards {
		if shard.ShardID == id {
			return true
		}
	}
	return false
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// REST settings
	addSection("REST API")
	if c.APIEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.APIEndpoint)
		addField("Shard", strconv.FormatUint(c.APIShard, 10))
	}

	// Engine
	addSection("Engine")
	if c.EngineShards <= 0 {
		addField("Shards per Store", "auto (number of CPUs)")
	} else {
		addField("Shards per Store", strconv.Itoa(c.EngineShards))
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Shards
	addSection("Shards")
	for _, shard := range c.Shards {
		addField(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
