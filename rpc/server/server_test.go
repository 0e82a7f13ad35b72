package server

import (
	"math"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/serializer"
	"github.com/ValentinKolb/zKV/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport keeps the registered handler instead of listening
type captureTransport struct {
	handler transport.ServerHandleFunc
}

func (c *captureTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	c.handler = handler
}

func (c *captureTransport) Listen(common.ServerConfig) error {
	return nil
}

func newTestServer(t *testing.T, shards ...uint64) (*rpcServer, *captureTransport) {
	t.Helper()
	config := common.ServerConfig{EngineShards: 4, LogLevel: "error", TimeoutSecond: 5}
	for _, id := range shards {
		config.Shards = append(config.Shards, common.ServerShard{ShardID: id, Type: common.ShardTypeLocalIStore})
	}
	tr := &captureTransport{}
	s := NewRPCServer(config, tr, serializer.NewBinarySerializer())
	require.NoError(t, s.Serve())
	require.NotNil(t, tr.handler)
	return s, tr
}

func call(t *testing.T, tr *captureTransport, shardId uint64, req *common.Message) common.Message {
	t.Helper()
	ser := serializer.NewBinarySerializer()
	data, err := ser.Serialize(*req)
	require.NoError(t, err)

	var resp common.Message
	require.NoError(t, ser.Deserialize(tr.handler(shardId, data), &resp))
	return resp
}

func TestHandleRoutesToShard(t *testing.T) {
	s, tr := newTestServer(t, 1, 2)

	resp := call(t, tr, 1, common.NewPutRequest("k", "v"))
	assert.NoError(t, resp.AsError())

	resp = call(t, tr, 1, common.NewGetRequest("k"))
	assert.True(t, resp.Ok)
	assert.Equal(t, "v", resp.Value)

	// shards are independent keyspaces
	resp = call(t, tr, 2, common.NewGetRequest("k"))
	assert.False(t, resp.Ok)

	st, ok := s.Store(1)
	require.True(t, ok)
	val, loaded, err := st.Get("k")
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "v", val)
}

func TestHandleUnknownShard(t *testing.T) {
	_, tr := newTestServer(t, 1)

	resp := call(t, tr, 42, common.NewGetRequest("k"))
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Equal(t, store.RetCInvalidOperation, resp.Code)
	assert.Contains(t, resp.Err, "shard 42 not found")
}

func TestHandleGarbage(t *testing.T) {
	_, tr := newTestServer(t, 1)

	var resp common.Message
	require.NoError(t, serializer.NewBinarySerializer().Deserialize(tr.handler(1, []byte{1}), &resp))
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Equal(t, store.RetCInternalError, resp.Code)
}

func TestAdapterSortedSets(t *testing.T) {
	_, tr := newTestServer(t, 7)

	for i, m := range []string{"a", "b", "c"} {
		resp := call(t, tr, 7, common.NewZAddRequest("z", m, float64(i)))
		require.NoError(t, resp.AsError())
	}

	resp := call(t, tr, 7, common.NewZAddRequest("z", "nan", math.NaN()))
	assert.Equal(t, store.RetCInvalidScore, resp.Code)
	assert.ErrorIs(t, resp.AsError(), zset.ErrInvalidScore)

	resp = call(t, tr, 7, common.NewZRangeRequest("z", 1, math.Inf(1)))
	assert.Equal(t, []zset.ScoredMember{{Score: 1, Member: "b"}, {Score: 2, Member: "c"}}, common.ToScoredMembers(resp.Members))

	resp = call(t, tr, 7, common.NewZScoreRequest("z", "c"))
	assert.True(t, resp.Ok)
	assert.Equal(t, common.Float(2), resp.Score)

	call(t, tr, 7, common.NewZRemoveRequest("z", "a"))
	resp = call(t, tr, 7, common.NewZCardRequest("z"))
	assert.Equal(t, int64(2), resp.Count)
}

func TestAdapterBatch(t *testing.T) {
	_, tr := newTestServer(t, 1)

	resp := call(t, tr, 1, common.NewBatchPutRequest([]db.KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}))
	require.NoError(t, resp.AsError())

	resp = call(t, tr, 1, common.NewListGetRequest([]string{"b", "missing", "a"}))
	assert.Equal(t, []db.KeyValue{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}, resp.Entries)

	call(t, tr, 1, common.NewDeleteRequest("a"))
	resp = call(t, tr, 1, common.NewGetRequest("a"))
	assert.False(t, resp.Ok)
}

func TestAdapterUnsupportedType(t *testing.T) {
	resp := NewIStoreServerAdapter().Handle(&common.Message{MsgType: common.MsgTSuccess}, nil)
	assert.Equal(t, store.RetCInternalError, resp.Code)

	_, tr := newTestServer(t, 1)
	out := call(t, tr, 1, &common.Message{MsgType: common.MsgTSuccess})
	assert.Equal(t, store.RetCInvalidOperation, out.Code)
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name   string
		config common.ServerConfig
	}{
		{"no shards", common.ServerConfig{LogLevel: "info"}},
		{"bad log level", common.ServerConfig{LogLevel: "loud", Shards: []common.ServerShard{{ShardID: 1, Type: common.ShardTypeLocalIStore}}}},
		{"bad shard type", common.ServerConfig{LogLevel: "info", Shards: []common.ServerShard{{ShardID: 1, Type: "raft"}}}},
		{"duplicate shard", common.ServerConfig{LogLevel: "info", Shards: []common.ServerShard{
			{ShardID: 1, Type: common.ShardTypeLocalIStore}, {ShardID: 1, Type: common.ShardTypeLocalIStore},
		}}},
		{"api shard missing", common.ServerConfig{LogLevel: "info", APIEndpoint: "127.0.0.1:0", APIShard: 9, Shards: []common.ServerShard{
			{ShardID: 1, Type: common.ShardTypeLocalIStore},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRPCServer(tt.config, &captureTransport{}, serializer.NewJSONSerializer())
			assert.Error(t, s.Serve())
		})
	}
}
