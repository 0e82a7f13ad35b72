package testing

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/cockroachdb/errors"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("BatchPut", func(t *testing.T) {
			testBatchPut(t, factory())
		})

		t.Run("ListGet", func(t *testing.T) {
			testListGet(t, factory())
		})

		t.Run("ZAdd&ZRange", func(t *testing.T) {
			testZAddZRange(t, factory())
		})

		t.Run("ZAddUpdate", func(t *testing.T) {
			testZAddUpdate(t, factory())
		})

		t.Run("ZAddInvalidScore", func(t *testing.T) {
			testZAddInvalidScore(t, factory())
		})

		t.Run("ZRemove", func(t *testing.T) {
			testZRemove(t, factory())
		})

		t.Run("ZRangeEdgeCases", func(t *testing.T) {
			testZRangeEdgeCases(t, factory())
		})

		t.Run("KindOverwrite", func(t *testing.T) {
			testKindOverwrite(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentZAdd", func(t *testing.T) {
			testConcurrentZAdd(t, factory())
		})

		t.Run("ConcurrentMixed", func(t *testing.T) {
			testConcurrentMixed(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// expectRange compares a ZRange result with the expected members
func expectRange(t *testing.T, got []zset.ScoredMember, want ...zset.ScoredMember) {
	t.Helper()
	if got == nil {
		t.Errorf("ZRange returned nil, expected an empty slice")
		return
	}
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected range %v, got %v", want, got)
	}
}

func sm(score float64, member string) zset.ScoredMember {
	return zset.ScoredMember{Score: score, Member: member}
}

// --------------------------------------------------------------------------
// Test functions - Text
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	database.Put("k", "v1")
	if v, ok := database.Get("k"); !ok || v != "v1" {
		t.Errorf("Expected (v1, true), got (%s, %v)", v, ok)
	}

	database.Put("k", "v2")
	if v, ok := database.Get("k"); !ok || v != "v2" {
		t.Errorf("Expected (v2, true) after overwrite, got (%s, %v)", v, ok)
	}

	if _, ok := database.Get("nonexistent-key"); ok {
		t.Errorf("Expected nonexistent key to return loaded=false")
	}

	database.Put("empty", "")
	if v, ok := database.Get("empty"); !ok || v != "" {
		t.Errorf("Expected empty value to be stored, got (%q, %v)", v, ok)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete)

	database.Put("k", "v")
	database.Delete("k")
	if _, ok := database.Get("k"); ok {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting a missing key is a no-op
	database.Delete("k")
	database.Delete("never-existed")

	// delete also removes sorted sets
	if database.SupportsFeature(db.FeatureZAdd | db.FeatureZRange) {
		if err := database.ZAdd("z", "m", 1); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
		database.Delete("z")
		expectRange(t, database.ZRange("z", math.Inf(-1), math.Inf(1)))

		// a new ZAdd creates a fresh set
		if err := database.ZAdd("z", "n", 2); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
		expectRange(t, database.ZRange("z", math.Inf(-1), math.Inf(1)), sm(2, "n"))
	}
}

func testBatchPut(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureBatchPut|db.FeatureGet)

	database.BatchPut([]db.KeyValue{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "a", Value: "3"}, // later entries win
	})

	if v, ok := database.Get("a"); !ok || v != "3" {
		t.Errorf("Expected (3, true), got (%s, %v)", v, ok)
	}
	if v, ok := database.Get("b"); !ok || v != "2" {
		t.Errorf("Expected (2, true), got (%s, %v)", v, ok)
	}

	database.BatchPut(nil)
	database.BatchPut([]db.KeyValue{})
}

func testListGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureListGet|db.FeaturePut)

	database.Put("a", "1")
	database.Put("b", "2")

	got := database.ListGet([]string{"a", "x", "b"})
	want := []db.KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// input order is preserved
	got = database.ListGet([]string{"b", "a"})
	want = []db.KeyValue{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got = database.ListGet([]string{"x", "y"}); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", got)
	}
	if got = database.ListGet(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result for nil input, got %v", got)
	}

	// keys holding a sorted set are skipped
	if database.SupportsFeature(db.FeatureZAdd) {
		if err := database.ZAdd("z", "m", 1); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
		got = database.ListGet([]string{"z", "a"})
		want = []db.KeyValue{{Key: "a", Value: "1"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions - Sorted Sets
// --------------------------------------------------------------------------

func testZAddZRange(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRange)

	for _, e := range []zset.ScoredMember{sm(2, "b"), sm(1, "a"), sm(3, "c")} {
		if err := database.ZAdd("z", e.Member, e.Score); err != nil {
			t.Fatalf("ZAdd(%v) failed: %v", e, err)
		}
	}

	expectRange(t, database.ZRange("z", 1, 2), sm(1, "a"), sm(2, "b"))
	expectRange(t, database.ZRange("z", 0, 10), sm(1, "a"), sm(2, "b"), sm(3, "c"))
	expectRange(t, database.ZRange("z", 2.5, 2.9))

	// ties are ordered by member
	for _, m := range []string{"y", "x", "z"} {
		if err := database.ZAdd("ties", m, 7); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
	}
	expectRange(t, database.ZRange("ties", 7, 7), sm(7, "x"), sm(7, "y"), sm(7, "z"))

	if database.SupportsFeature(db.FeatureZCard | db.FeatureZScore) {
		if n := database.ZCard("z"); n != 3 {
			t.Errorf("Expected ZCard 3, got %d", n)
		}
		if s, ok := database.ZScore("z", "b"); !ok || s != 2 {
			t.Errorf("Expected ZScore (2, true), got (%v, %v)", s, ok)
		}
		if _, ok := database.ZScore("z", "missing"); ok {
			t.Errorf("Expected ZScore of missing member to return loaded=false")
		}
	}
}

func testZAddUpdate(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRange)

	if err := database.ZAdd("z", "m", 1); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}
	if err := database.ZAdd("z", "m", 5); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}

	expectRange(t, database.ZRange("z", 0, 2))
	expectRange(t, database.ZRange("z", 0, 10), sm(5, "m"))

	// same score is a no-op
	if err := database.ZAdd("z", "m", 5); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}
	expectRange(t, database.ZRange("z", 0, 10), sm(5, "m"))
}

func testZAddInvalidScore(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRange)

	if err := database.ZAdd("z", "m", 1); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}

	err := database.ZAdd("z", "m", math.NaN())
	if !errors.Is(err, db.ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore, got %v", err)
	}
	expectRange(t, database.ZRange("z", math.Inf(-1), math.Inf(1)), sm(1, "m"))

	// NaN on a missing key does not create a set
	if err := database.ZAdd("fresh", "m", math.NaN()); !errors.Is(err, db.ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore, got %v", err)
	}
	if database.SupportsFeature(db.FeatureZCard) && database.ZCard("fresh") != 0 {
		t.Errorf("Expected no set to be created for a NaN score")
	}

	// NaN on a text key keeps the text
	if database.SupportsFeature(db.FeaturePut | db.FeatureGet) {
		database.Put("text", "v")
		if err := database.ZAdd("text", "m", math.NaN()); !errors.Is(err, db.ErrInvalidScore) {
			t.Errorf("Expected ErrInvalidScore, got %v", err)
		}
		if v, ok := database.Get("text"); !ok || v != "v" {
			t.Errorf("Expected text value to survive a rejected ZAdd, got (%s, %v)", v, ok)
		}
	}
}

func testZRemove(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRemove|db.FeatureZRange)

	for i, m := range []string{"a", "b", "c"} {
		if err := database.ZAdd("z", m, float64(i)); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
	}

	database.ZRemove("z", "b")
	expectRange(t, database.ZRange("z", 0, 10), sm(0, "a"), sm(2, "c"))

	// removing missing members / keys is a no-op
	database.ZRemove("z", "b")
	database.ZRemove("missing", "a")
	expectRange(t, database.ZRange("missing", 0, 10))

	// emptying the set keeps it alive
	database.ZRemove("z", "a")
	database.ZRemove("z", "c")
	expectRange(t, database.ZRange("z", math.Inf(-1), math.Inf(1)))

	if err := database.ZAdd("z", "d", 1); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}
	expectRange(t, database.ZRange("z", 0, 10), sm(1, "d"))

	// ZRemove on a text key leaves the text in place
	if database.SupportsFeature(db.FeaturePut | db.FeatureGet) {
		database.Put("text", "v")
		database.ZRemove("text", "v")
		if v, ok := database.Get("text"); !ok || v != "v" {
			t.Errorf("Expected text value to survive ZRemove, got (%s, %v)", v, ok)
		}
	}
}

func testZRangeEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRange)

	if err := database.ZAdd("z", "a", 1); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}
	if err := database.ZAdd("z", "b", 2); err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}

	// min > max
	expectRange(t, database.ZRange("z", 2, 1))

	// NaN bounds
	expectRange(t, database.ZRange("z", math.NaN(), 10))

	// inclusive bounds
	expectRange(t, database.ZRange("z", 1, 1), sm(1, "a"))
	expectRange(t, database.ZRange("z", 2, 2), sm(2, "b"))

	// missing key
	expectRange(t, database.ZRange("missing", 0, 10))

	// infinite scores
	if err := database.ZAdd("inf", "low", math.Inf(-1)); err != nil {
		t.Fatalf("ZAdd(-Inf) failed: %v", err)
	}
	if err := database.ZAdd("inf", "high", math.Inf(1)); err != nil {
		t.Fatalf("ZAdd(+Inf) failed: %v", err)
	}
	expectRange(t, database.ZRange("inf", math.Inf(-1), math.Inf(1)), sm(math.Inf(-1), "low"), sm(math.Inf(1), "high"))

	// members outside of ASCII are returned as well
	for _, m := range []string{"", "\x7f", "ünïcödé", "\xff"} {
		if err := database.ZAdd("bytes", m, 0); err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
	}
	if got := database.ZRange("bytes", 0, 0); len(got) != 4 {
		t.Errorf("Expected 4 members, got %v", got)
	}
}

func testKindOverwrite(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureZAdd|db.FeatureZRange)

	// text -> sorted set
	database.Put("k", "text")
	if err := database.ZAdd("k", "m", 1); err != nil {
		t.Fatalf("ZAdd on text key failed: %v", err)
	}
	if _, ok := database.Get("k"); ok {
		t.Errorf("Expected Get on a sorted set key to return loaded=false")
	}
	expectRange(t, database.ZRange("k", 0, 10), sm(1, "m"))

	// sorted set -> text
	database.Put("k", "again")
	if v, ok := database.Get("k"); !ok || v != "again" {
		t.Errorf("Expected (again, true), got (%s, %v)", v, ok)
	}
	expectRange(t, database.ZRange("k", 0, 10))

	// sorted set reads on a text key behave like an empty set
	if database.SupportsFeature(db.FeatureZCard) && database.ZCard("k") != 0 {
		t.Errorf("Expected ZCard of a text key to be 0")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	// empty key
	database.Put("", "empty-key")
	if v, ok := database.Get(""); !ok || v != "empty-key" {
		t.Errorf("Expected empty key to be stored, got (%s, %v)", v, ok)
	}

	// large value
	large := make([]byte, 1<<20)
	for i := range large {
		large[i] = byte(i % 251)
	}
	database.Put("large", string(large))
	if v, ok := database.Get("large"); !ok || v != string(large) {
		t.Errorf("Large value was not stored correctly")
	}

	// binary keys and values
	database.Put("\x00\xff", "\x00\x01")
	if v, ok := database.Get("\x00\xff"); !ok || v != "\x00\x01" {
		t.Errorf("Binary key/value was not stored correctly")
	}

	// many keys
	for i := 0; i < 10_000; i++ {
		database.Put(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
	}
	for i := 0; i < 10_000; i++ {
		key := fmt.Sprintf("key-%d", i)
		if v, ok := database.Get(key); !ok || v != fmt.Sprintf("value-%d", i) {
			t.Errorf("Expected key %s to hold value-%d, got (%s, %v)", key, i, v, ok)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions - Concurrency
// --------------------------------------------------------------------------

func testConcurrentZAdd(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRange)

	numWorkers := 64
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	var errorCount int32
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			if err := database.ZAdd("shared", fmt.Sprintf("member-%02d", w), float64(w)); err != nil {
				atomic.AddInt32(&errorCount, 1)
			}
		}(w)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&errorCount); n > 0 {
		t.Fatalf("%d concurrent ZAdd calls failed", n)
	}

	got := database.ZRange("shared", math.Inf(-1), math.Inf(1))
	if len(got) != numWorkers {
		t.Fatalf("Expected %d members, got %d", numWorkers, len(got))
	}
	for i, e := range got {
		if e.Score != float64(i) || e.Member != fmt.Sprintf("member-%02d", i) {
			t.Errorf("Unexpected entry at position %d: %v", i, e)
		}
	}
}

func testConcurrentMixed(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureZAdd|db.FeatureZRemove|db.FeatureZRange)

	numWorkers := 16
	rounds := 500
	numMembers := 20

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				member := fmt.Sprintf("m-%d", (w+i)%numMembers)
				if i%3 == 0 {
					database.ZRemove("mixed", member)
				} else {
					_ = database.ZAdd("mixed", member, float64(i%10))
				}

				// every observed range must be sorted and free of duplicates
				r := database.ZRange("mixed", 0, 9)
				seen := make(map[string]bool, len(r))
				for j, e := range r {
					if seen[e.Member] {
						t.Errorf("Duplicate member %s in range", e.Member)
						return
					}
					seen[e.Member] = true
					if j > 0 && e.Score < r[j-1].Score {
						t.Errorf("Range not sorted: %v", r)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	// after quiescence every member appears at most once and at its current score
	if database.SupportsFeature(db.FeatureZScore) {
		for _, e := range database.ZRange("mixed", math.Inf(-1), math.Inf(1)) {
			if s, ok := database.ZScore("mixed", e.Member); !ok || s != e.Score {
				t.Errorf("Member %s: range score %v, ZScore (%v, %v)", e.Member, e.Score, s, ok)
			}
		}
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete|db.FeatureZAdd|db.FeatureZRange)

	numWorkers := 8
	opsPerWorker := 2_000

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				// hot keys are shared between workers, cold keys are private
				var key string
				if i%5 == 0 {
					key = fmt.Sprintf("hot-key-%d", i%50)
				} else {
					key = fmt.Sprintf("key-%d-%d", w, i)
				}

				switch i % 10 {
				case 0, 1, 2, 3:
					database.Put(key, fmt.Sprintf("value-%d", i))
				case 4, 5:
					database.Get(key)
				case 6, 7:
					_ = database.ZAdd("board-"+key, fmt.Sprintf("player-%d", w), float64(i))
				case 8:
					database.ZRange("board-"+key, 0, float64(opsPerWorker))
				case 9:
					database.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	// private keys are only written by one worker, so their final state is known
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < opsPerWorker; i++ {
			if i%5 == 0 {
				continue
			}
			key := fmt.Sprintf("key-%d-%d", w, i)
			v, ok := database.Get(key)
			switch i % 10 {
			case 0, 1, 2, 3:
				if !ok || v != fmt.Sprintf("value-%d", i) {
					t.Errorf("Expected %s to hold value-%d, got (%s, %v)", key, i, v, ok)
				}
			case 6, 7:
				r := database.ZRange("board-"+key, math.Inf(-1), math.Inf(1))
				if len(r) != 1 || r[0].Score != float64(i) {
					t.Errorf("Expected board-%s to hold one member with score %d, got %v", key, i, r)
				}
			}
		}
	}
}
