package server

import (
	"fmt"

	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	if s == nil {
		return common.NewErrorResponse(store.RetCInternalError, "handler: store is nil")
	}

	switch req.MsgType {
	case common.MsgTKVPut:
		return common.NewPutResponse(s.Put(req.Key, req.Value))
	case common.MsgTKVDelete:
		return common.NewDeleteResponse(s.Delete(req.Key))
	case common.MsgTKVGet:
		val, ok, err := s.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVBatchPut:
		return common.NewBatchPutResponse(s.BatchPut(req.Entries))
	case common.MsgTKVListGet:
		entries, err := s.ListGet(req.Keys)
		return common.NewListGetResponse(entries, err)
	case common.MsgTZAdd:
		return common.NewZAddResponse(s.ZAdd(req.Key, req.Member, float64(req.Score)))
	case common.MsgTZRemove:
		return common.NewZRemoveResponse(s.ZRemove(req.Key, req.Member))
	case common.MsgTZRange:
		members, err := s.ZRange(req.Key, float64(req.Min), float64(req.Max))
		return common.NewZRangeResponse(members, err)
	case common.MsgTZScore:
		score, ok, err := s.ZScore(req.Key, req.Member)
		return common.NewZScoreResponse(score, ok, err)
	case common.MsgTZCard:
		count, err := s.ZCard(req.Key)
		return common.NewZCardResponse(count, err)
	default:
		return common.NewErrorResponse(
			store.RetCInvalidOperation,
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
