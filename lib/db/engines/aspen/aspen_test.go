package aspen

import (
	"fmt"
	"math"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/engines/aspen/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardRoutingIsStable(t *testing.T) {
	database := NewAspenDB(&DBOptions{NumShards: 8}).(*aspenImpl)
	defer database.Close()

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		assert.Same(t, database.shardFor(key), database.shardFor(key))
	}
}

func TestKeysLiveInTheirShard(t *testing.T) {
	database := NewAspenDB(&DBOptions{NumShards: 4}).(*aspenImpl)
	defer database.Close()

	database.Put("text", "v")
	require.NoError(t, database.ZAdd("set", "m", 1))

	v, ok := database.shardFor("text").Data.Load("text")
	require.True(t, ok)
	assert.Equal(t, internal.KindText, v.Kind)

	v, ok = database.shardFor("set").Data.Load("set")
	require.True(t, ok)
	assert.Equal(t, internal.KindSortedSet, v.Kind)
	assert.Equal(t, 1, v.Set.Len())
}

func TestDefaultShardCount(t *testing.T) {
	database := NewAspenDB(&DBOptions{NumShards: 0}).(*aspenImpl)
	defer database.Close()
	assert.Equal(t, DefaultOptions().NumShards, database.numShards)
}

func TestZAddNaNDoesNotCreateKey(t *testing.T) {
	database := NewAspenDB(nil).(*aspenImpl)
	defer database.Close()

	err := database.ZAdd("z", "m", math.NaN())
	assert.ErrorIs(t, err, db.ErrInvalidScore)

	_, ok := database.shardFor("z").Data.Load("z")
	assert.False(t, ok)
}

func TestZAddNaNKeepsExistingValue(t *testing.T) {
	database := NewAspenDB(nil).(*aspenImpl)
	defer database.Close()

	database.Put("text", "v")
	assert.ErrorIs(t, database.ZAdd("text", "m", math.NaN()), db.ErrInvalidScore)
	v, ok := database.shardFor("text").Data.Load("text")
	require.True(t, ok)
	assert.Equal(t, internal.KindText, v.Kind)
	assert.Equal(t, "v", v.Text)

	require.NoError(t, database.ZAdd("set", "a", 1))
	assert.ErrorIs(t, database.ZAdd("set", "a", math.NaN()), db.ErrInvalidScore)
	assert.ErrorIs(t, database.ZAdd("set", "b", math.NaN()), db.ErrInvalidScore)
	v, ok = database.shardFor("set").Data.Load("set")
	require.True(t, ok)
	assert.Equal(t, 1, v.Set.Len())
	score, ok := v.Set.Score("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestZRemoveOnMissingKeyDoesNotCreateKey(t *testing.T) {
	database := NewAspenDB(nil).(*aspenImpl)
	defer database.Close()

	database.ZRemove("z", "m")
	_, ok := database.shardFor("z").Data.Load("z")
	assert.False(t, ok)
}

func TestGetInfo(t *testing.T) {
	database := NewAspenDB(&DBOptions{NumShards: 4})
	defer database.Close()

	for i := 0; i < 300; i++ {
		database.Put(fmt.Sprintf("key-%d", i), "value")
	}
	for i := 0; i < 100; i++ {
		require.NoError(t, database.ZAdd(fmt.Sprintf("set-%d", i%10), fmt.Sprintf("m-%d", i), float64(i)))
	}

	info := database.GetInfo()
	assert.Equal(t, db.ImplAspen, info.DbType)
	assert.Greater(t, info.SizeBytes, 0)
	assert.Len(t, info.SupportedFeatures, len(featureList))

	meta, ok := info.Metadata.(*Metadata)
	require.True(t, ok)
	assert.Equal(t, 4, meta.ShardCount)
	assert.Equal(t, 310, meta.KeyCount)
	assert.Greater(t, meta.SortedSetShare, 0.0)
	assert.Greater(t, meta.ShardDistribution.Mean, 0.0)
}

func TestSupportsFeature(t *testing.T) {
	database := NewAspenDB(nil)
	defer database.Close()

	assert.True(t, database.SupportsFeature(db.FeaturePut|db.FeatureZRange))
	assert.False(t, database.SupportsFeature(db.Feature(1<<40)))
}
