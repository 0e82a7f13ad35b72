package lstore

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
)

type storeImpl struct {
	db   db.KVDB
	name string
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// Operation metrics are registered in the default VictoriaMetrics set with the
// label store="local".
func NewLocalStore(factory store.DBFactory) store.IStore {
	return NewNamedLocalStore("local", factory)
}

// NewNamedLocalStore is like NewLocalStore but labels all metrics with the given
// store name. Several stores with distinct names can live in one process.
func NewNamedLocalStore(name string, factory store.DBFactory) store.IStore {
	return &storeImpl{
		db:   factory(),
		name: name,
	}
}

// observe counts a call of op and records its duration, failed calls are counted separately.
//
// Thread-safety: This method is thread-safe.
func (s *storeImpl) observe(op string, start time.Time, err error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`zkv_store_ops_total{store=%q,op=%q}`, s.name, op)).Inc()
	metrics.GetOrCreateSummary(fmt.Sprintf(`zkv_store_op_duration_seconds{store=%q,op=%q}`, s.name, op)).UpdateDuration(start)
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`zkv_store_errors_total{store=%q,op=%q,code=%q}`, s.name, op, store.CodeOf(err))).Inc()
	}
}

// require returns an error if the underlying db does not support feature
func (s *storeImpl) require(feature db.Feature) error {
	if !s.db.SupportsFeature(feature) {
		return store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", feature))
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(key, value string) (err error) {
	defer func(start time.Time) { s.observe("put", start, err) }(time.Now())
	if err = s.require(db.FeaturePut); err != nil {
		return err
	}
	s.db.Put(key, value)
	return nil
}

func (s *storeImpl) Delete(key string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	if err = s.require(db.FeatureDelete); err != nil {
		return err
	}
	s.db.Delete(key)
	return nil
}

func (s *storeImpl) Get(key string) (value string, loaded bool, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	if err = s.require(db.FeatureGet); err != nil {
		return "", false, err
	}
	value, loaded = s.db.Get(key)
	return value, loaded, nil
}

func (s *storeImpl) BatchPut(entries []db.KeyValue) (err error) {
	defer func(start time.Time) { s.observe("batch_put", start, err) }(time.Now())
	if err = s.require(db.FeatureBatchPut); err != nil {
		return err
	}
	s.db.BatchPut(entries)
	return nil
}

func (s *storeImpl) ListGet(keys []string) (entries []db.KeyValue, err error) {
	defer func(start time.Time) { s.observe("list_get", start, err) }(time.Now())
	if err = s.require(db.FeatureListGet); err != nil {
		return nil, err
	}
	return s.db.ListGet(keys), nil
}

func (s *storeImpl) ZAdd(key, member string, score float64) (err error) {
	defer func(start time.Time) { s.observe("zadd", start, err) }(time.Now())
	if err = s.require(db.FeatureZAdd); err != nil {
		return err
	}
	if dbErr := s.db.ZAdd(key, member, score); dbErr != nil {
		err = store.FromError(dbErr)
		return err
	}
	return nil
}

func (s *storeImpl) ZRemove(key, member string) (err error) {
	defer func(start time.Time) { s.observe("zremove", start, err) }(time.Now())
	if err = s.require(db.FeatureZRemove); err != nil {
		return err
	}
	s.db.ZRemove(key, member)
	return nil
}

func (s *storeImpl) ZRange(key string, min, max float64) (members []zset.ScoredMember, err error) {
	defer func(start time.Time) { s.observe("zrange", start, err) }(time.Now())
	if err = s.require(db.FeatureZRange); err != nil {
		return nil, err
	}
	return s.db.ZRange(key, min, max), nil
}

func (s *storeImpl) ZScore(key, member string) (score float64, loaded bool, err error) {
	defer func(start time.Time) { s.observe("zscore", start, err) }(time.Now())
	if err = s.require(db.FeatureZScore); err != nil {
		return 0, false, err
	}
	score, loaded = s.db.ZScore(key, member)
	return score, loaded, nil
}

func (s *storeImpl) ZCard(key string) (count int, err error) {
	defer func(start time.Time) { s.observe("zcard", start, err) }(time.Now())
	if err = s.require(db.FeatureZCard); err != nil {
		return 0, err
	}
	return s.db.ZCard(key), nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}
