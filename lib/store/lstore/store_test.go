package lstore

import (
	"bytes"
	"math"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/engines/aspen"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, name string) store.IStore {
	t.Helper()
	return NewNamedLocalStore(name, func() db.KVDB {
		return aspen.NewAspenDB(nil)
	})
}

// textOnlyDB only supports text operations
type textOnlyDB struct {
	db.KVDB
}

func (textOnlyDB) SupportsFeature(f db.Feature) bool {
	return (db.FeaturePut|db.FeatureGet|db.FeatureDelete)&f == f
}

func TestTextOperations(t *testing.T) {
	s := newStore(t, "test-text")

	require.NoError(t, s.Put("a", "1"))
	require.NoError(t, s.BatchPut([]db.KeyValue{{Key: "b", Value: "2"}, {Key: "c", Value: "3"}}))

	v, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	entries, err := s.ListGet([]string{"c", "missing", "a"})
	require.NoError(t, err)
	assert.Equal(t, []db.KeyValue{{Key: "c", Value: "3"}, {Key: "a", Value: "1"}}, entries)

	require.NoError(t, s.Delete("a"))
	_, ok, err = s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSortedSetOperations(t *testing.T) {
	s := newStore(t, "test-zset")

	require.NoError(t, s.ZAdd("z", "a", 1))
	require.NoError(t, s.ZAdd("z", "b", 2))

	members, err := s.ZRange("z", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []zset.ScoredMember{{Score: 1, Member: "a"}, {Score: 2, Member: "b"}}, members)

	score, ok, err := s.ZScore("z", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.0, score)

	require.NoError(t, s.ZRemove("z", "a"))
	n, err := s.ZCard("z")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvalidScoreIsMapped(t *testing.T) {
	s := newStore(t, "test-nan")

	err := s.ZAdd("z", "m", math.NaN())
	require.Error(t, err)

	var storeErr *store.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, store.RetCInvalidScore, storeErr.Code)
	assert.True(t, errors.Is(err, zset.ErrInvalidScore))
}

func TestUnsupportedOperation(t *testing.T) {
	s := NewNamedLocalStore("test-unsupported", func() db.KVDB {
		return textOnlyDB{aspen.NewAspenDB(nil)}
	})

	require.NoError(t, s.Put("k", "v"))

	err := s.ZAdd("z", "m", 1)
	assert.Equal(t, store.RetCUnsupportedOperation, store.CodeOf(err))

	_, err = s.ZRange("z", 0, 1)
	assert.Equal(t, store.RetCUnsupportedOperation, store.CodeOf(err))

	_, err = s.ListGet([]string{"k"})
	assert.Equal(t, store.RetCUnsupportedOperation, store.CodeOf(err))
}

func TestMetricsAreExported(t *testing.T) {
	s := newStore(t, "test-metrics")
	require.NoError(t, s.Put("k", "v"))
	_ = s.ZAdd("z", "m", math.NaN())

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf, false)
	out := buf.String()

	assert.Contains(t, out, `zkv_store_ops_total{store="test-metrics",op="put"} 1`)
	assert.Contains(t, out, `zkv_store_errors_total{store="test-metrics",op="zadd",code="InvalidScore"} 1`)
}
