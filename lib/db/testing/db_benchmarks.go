package testing

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Put", func(b *testing.B) {
		benchmarkPut(b, factory())
	})

	b.Run("PutExisting", func(b *testing.B) {
		benchmarkPutExisting(b, factory())
	})

	b.Run("PutLargeValue", func(b *testing.B) {
		benchmarkPutLargeValue(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("BatchPut", func(b *testing.B) {
		benchmarkBatchPut(b, factory())
	})

	b.Run("ListGet", func(b *testing.B) {
		benchmarkListGet(b, factory())
	})

	b.Run("ZAdd", func(b *testing.B) {
		benchmarkZAdd(b, factory())
	})

	b.Run("ZAddHotKey", func(b *testing.B) {
		benchmarkZAddHotKey(b, factory())
	})

	b.Run("ZRange", func(b *testing.B) {
		benchmarkZRange(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put operation
func benchmarkPut(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	var workerID atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		w := workerID.Add(1)
		counter := 0
		for pb.Next() {
			database.Put(fmt.Sprintf("test-key-%d-%d", w, counter), fmt.Sprintf("test-value-%d", counter))
			counter++
		}
	})
}

// Benchmark for Put operation with existing keys
func benchmarkPutExisting(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Put(fmt.Sprintf("test-key-%d", counter%numKeys), fmt.Sprintf("test-value-%d", counter))
			counter++
		}
	})
}

// Benchmark for Put operation with large values
func benchmarkPutLargeValue(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	largeValue := strings.Repeat("x", 64*1024) // 64KB
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Put(fmt.Sprintf("test-key-%d", counter%1000), largeValue)
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet)

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			database.Get(fmt.Sprintf("test-key-%d", r.Intn(numKeys)))
		}
	})
}

// Parallel benchmarking for Delete operation
func benchmarkDelete(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureDelete)

	for i := 0; i < b.N; i++ {
		database.Put(fmt.Sprintf("test-key-%d", i), "value")
	}

	var next atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			database.Delete(fmt.Sprintf("test-key-%d", next.Add(1)-1))
		}
	})
}

// Benchmark for BatchPut with 100 entries per batch
func benchmarkBatchPut(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureBatchPut)

	batch := make([]db.KeyValue, 100)
	for i := range batch {
		batch[i] = db.KeyValue{Key: fmt.Sprintf("batch-key-%d", i), Value: fmt.Sprintf("value-%d", i)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.BatchPut(batch)
	}
}

// Benchmark for ListGet with 100 keys of which half exist
func benchmarkListGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureListGet)

	keys := make([]string, 100)
	for i := range keys {
		keys[i] = fmt.Sprintf("list-key-%d", i)
		if i%2 == 0 {
			database.Put(keys[i], "value")
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			database.ListGet(keys)
		}
	})
}

// Benchmark for ZAdd spread over many keys
func benchmarkZAdd(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureZAdd)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		counter := 0
		for pb.Next() {
			_ = database.ZAdd(fmt.Sprintf("zset-%d", counter%1000), fmt.Sprintf("member-%d", r.Intn(10_000)), r.Float64())
			counter++
		}
	})
}

// Benchmark for ZAdd where all goroutines write the same sorted set
func benchmarkZAddHotKey(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureZAdd)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			_ = database.ZAdd("hot", fmt.Sprintf("member-%d", r.Intn(10_000)), r.Float64())
		}
	})
}

// Benchmark for ZRange returning ~1% of a 100k member set
func benchmarkZRange(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureZAdd|db.FeatureZRange)

	numMembers := 100_000
	for i := 0; i < numMembers; i++ {
		_ = database.ZAdd("board", fmt.Sprintf("member-%d", i), float64(i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			min := float64(r.Intn(numMembers - 1000))
			database.ZRange("board", min, min+999)
		}
	})
}

// Benchmark for mixed operations
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete|db.FeatureZAdd|db.FeatureZRange)

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", r.Intn(numKeys))
			switch op := r.Intn(100); {
			case op < 50:
				database.Get(key)
			case op < 70:
				database.Put(key, "value")
			case op < 85:
				_ = database.ZAdd("z"+key, "member", float64(op))
			case op < 95:
				database.ZRange("z"+key, 0, 100)
			default:
				database.Delete(key)
			}
		}
	})
}
