package server

import (
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/engines/aspen"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/lib/store/lstore"
	"github.com/ValentinKolb/zKV/rpc/api"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/serializer"
	"github.com/ValentinKolb/zKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger(common.LoggerRPC)

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

// Serve starts the RPC server
// This function will also initialize the shards, start the REST API (if configured)
// and start the transport layer. It blocks until the transport stops.
func (s *rpcServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}

	if s.config.APIEndpoint != "" {
		apiStore, _ := s.Store(s.config.APIShard)
		go func() {
			if err := api.ListenAndServe(s.config.APIEndpoint, apiStore, s.timeout(), s.config.LogLevel == "debug"); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("REST API stopped: %v", err)
			}
		}()
	}

	return s.transport.Listen(s.config)
}

// Store returns the store served under the given shard id
func (s *rpcServer) Store(shardId uint64) (store.IStore, bool) {
	shard, ok := s.shards.Load(shardId)
	if !ok {
		return nil, false
	}
	return shard.Store, true
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *rpcServer) timeout() time.Duration {
	return time.Duration(s.config.TimeoutSecond) * time.Second
}

// init creates all shards and registers the request handler at the transport
func (s *rpcServer) init() error {
	if err := common.InitLoggers(s.config); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", s.config.String())

	if len(s.config.Shards) == 0 {
		return errors.New("no shards configured")
	}
	if s.config.APIEndpoint != "" && !s.config.HasShard(s.config.APIShard) {
		return errors.Newf("REST API shard %d is not configured", s.config.APIShard)
	}

	// Function to create a new database instance
	engineShards := s.config.EngineShards
	dbFactory := func() db.KVDB {
		return aspen.NewAspenDB(&aspen.DBOptions{NumShards: engineShards})
	}

	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			name := strconv.FormatUint(shardConfig.ShardID, 10)
			if _, loaded := s.shards.LoadOrStore(shardConfig.ShardID, serverShard{
				Store:   lstore.NewNamedLocalStore(name, dbFactory),
				Adapter: NewIStoreServerAdapter(),
			}); loaded {
				return errors.Newf("shard %d configured twice", shardConfig.ShardID)
			}
			common.ShardLogger(shardConfig.ShardID).Infof("created local store (%d engine shards)", engineShards)
		default:
			return errors.Newf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("zKV setup completed successfully")

	s.transport.RegisterHandler(s.handle)
	return nil
}

// handle decodes a request, lets the adapter of the shard handle it and encodes the response
func (s *rpcServer) handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	if shard, ok := s.shards.Load(shardId); !ok {
		respMsg = common.NewErrorResponse(store.RetCInvalidOperation, fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		common.ShardLogger(shardId).Warningf("rejected request of %d bytes: %v", len(req), err)
		respMsg = common.NewErrorResponse(store.RetCInternalError, fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		respMsg = shard.Adapter.Handle(&msg, shard.Store)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(store.RetCInternalError, fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}
