package client_test

import (
	"math"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/client"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/serializer"
	"github.com/ValentinKolb/zKV/rpc/server"
	"github.com/ValentinKolb/zKV/rpc/transport"
	httptransport "github.com/ValentinKolb/zKV/rpc/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handlerTransport keeps the registered handler so it can be mounted on an httptest server
type handlerTransport struct {
	handler transport.ServerHandleFunc
}

func (h *handlerTransport) RegisterHandler(handler transport.ServerHandleFunc) { h.handler = handler }

func (h *handlerTransport) Listen(common.ServerConfig) error { return nil }

func newRemoteStore(t *testing.T, newSerializer func() serializer.IRPCSerializer) store.IStore {
	t.Helper()

	tr := &handlerTransport{}
	srv := server.NewRPCServer(common.ServerConfig{
		Shards:        []common.ServerShard{{ShardID: 100, Type: common.ShardTypeLocalIStore}},
		EngineShards:  8,
		TimeoutSecond: 5,
		LogLevel:      "error",
	}, tr, newSerializer())
	require.NoError(t, srv.Serve())

	ts := httptest.NewServer(httptransport.NewHandler(tr.handler, false))
	t.Cleanup(ts.Close)

	s, err := client.NewRPCStore(100, common.ClientConfig{
		Endpoints:     []string{ts.URL},
		TimeoutSecond: 5,
		RetryCount:    1,
	}, httptransport.NewHttpClientTransport(), newSerializer())
	require.NoError(t, err)
	return s
}

var serializers = map[string]func() serializer.IRPCSerializer{
	"JSON":   serializer.NewJSONSerializer,
	"GOB":    serializer.NewGOBSerializer,
	"Binary": serializer.NewBinarySerializer,
}

func TestRemoteTextOperations(t *testing.T) {
	for name, factory := range serializers {
		t.Run(name, func(t *testing.T) {
			s := newRemoteStore(t, factory)

			require.NoError(t, s.Put("key", "value"))
			val, ok, err := s.Get("key")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "value", val)

			require.NoError(t, s.BatchPut([]db.KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}))
			entries, err := s.ListGet([]string{"missing", "b", "a"})
			require.NoError(t, err)
			assert.Equal(t, []db.KeyValue{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}, entries)

			entries, err = s.ListGet([]string{"nothing"})
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)

			require.NoError(t, s.Delete("key"))
			_, ok, err = s.Get("key")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRemoteSortedSetOperations(t *testing.T) {
	for name, factory := range serializers {
		t.Run(name, func(t *testing.T) {
			s := newRemoteStore(t, factory)

			require.NoError(t, s.ZAdd("z", "low", math.Inf(-1)))
			require.NoError(t, s.ZAdd("z", "mid", 0.5))
			require.NoError(t, s.ZAdd("z", "high", math.Inf(1)))

			members, err := s.ZRange("z", math.Inf(-1), math.Inf(1))
			require.NoError(t, err)
			assert.Equal(t, []zset.ScoredMember{
				{Score: math.Inf(-1), Member: "low"},
				{Score: 0.5, Member: "mid"},
				{Score: math.Inf(1), Member: "high"},
			}, members)

			members, err = s.ZRange("z", 10, 1)
			require.NoError(t, err)
			assert.NotNil(t, members)
			assert.Empty(t, members)

			score, ok, err := s.ZScore("z", "mid")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 0.5, score)

			require.NoError(t, s.ZRemove("z", "mid"))
			count, err := s.ZCard("z")
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			err = s.ZAdd("z", "bad", math.NaN())
			require.Error(t, err)
			assert.ErrorIs(t, err, zset.ErrInvalidScore)
			assert.Equal(t, store.RetCInvalidScore, store.CodeOf(err))

			_, err = s.GetDBInfo()
			assert.Equal(t, store.RetCUnsupportedOperation, store.CodeOf(err))
		})
	}
}

func TestRemoteConcurrentZAdd(t *testing.T) {
	s := newRemoteStore(t, serializer.NewBinarySerializer)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				assert.NoError(t, s.ZAdd("board", "member", float64(w*100+i)))
			}
		}(w)
	}
	wg.Wait()

	count, err := s.ZCard("board")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	members, err := s.ZRange("board", math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	require.Len(t, members, 1)
	score, _, err := s.ZScore("board", "member")
	require.NoError(t, err)
	assert.Equal(t, members[0].Score, score)
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	s, err := client.NewRPCStore(1, common.ClientConfig{Endpoints: []string{url}, TimeoutSecond: 1, RetryCount: 2},
		httptransport.NewHttpClientTransport(), serializer.NewBinarySerializer())
	require.NoError(t, err)

	err = s.Put("k", "v")
	require.Error(t, err)
	assert.Equal(t, store.RetCInternalError, store.CodeOf(err))
}
