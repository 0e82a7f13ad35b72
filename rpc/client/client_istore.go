package client

import (
	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/serializer"
	"github.com/ValentinKolb/zKV/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Put(key, value string) (err error) {
	_, err = i.invoke(common.NewPutRequest(key, value))
	return err
}

func (i *rpcStore) Delete(key string) (err error) {
	_, err = i.invoke(common.NewDeleteRequest(key))
	return err
}

func (i *rpcStore) Get(key string) (value string, loaded bool, err error) {
	resp, err := i.invoke(common.NewGetRequest(key))
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) BatchPut(entries []db.KeyValue) (err error) {
	_, err = i.invoke(common.NewBatchPutRequest(entries))
	return err
}

func (i *rpcStore) ListGet(keys []string) (entries []db.KeyValue, err error) {
	resp, err := i.invoke(common.NewListGetRequest(keys))
	if err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		return []db.KeyValue{}, nil
	}
	return resp.Entries, nil
}

func (i *rpcStore) ZAdd(key, member string, score float64) (err error) {
	_, err = i.invoke(common.NewZAddRequest(key, member, score))
	return err
}

func (i *rpcStore) ZRemove(key, member string) (err error) {
	_, err = i.invoke(common.NewZRemoveRequest(key, member))
	return err
}

func (i *rpcStore) ZRange(key string, min, max float64) (members []zset.ScoredMember, err error) {
	resp, err := i.invoke(common.NewZRangeRequest(key, min, max))
	if err != nil {
		return nil, err
	}
	return common.ToScoredMembers(resp.Members), nil
}

func (i *rpcStore) ZScore(key, member string) (score float64, loaded bool, err error) {
	resp, err := i.invoke(common.NewZScoreRequest(key, member))
	if err != nil {
		return 0, false, err
	}
	return float64(resp.Score), resp.Ok, nil
}

func (i *rpcStore) ZCard(key string) (count int, err error) {
	resp, err := i.invoke(common.NewZCardRequest(key))
	if err != nil {
		return 0, err
	}
	return int(resp.Count), nil
}

// GetDBInfo is not implemented for rpc
func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	return db.DatabaseInfo{}, store.NewError(store.RetCUnsupportedOperation, "GetDBInfo is not available over rpc")
}

func (i *rpcStore) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
}
