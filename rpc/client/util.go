package client

import (
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/serializer"
	"github.com/ValentinKolb/zKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger(common.LoggerRPC)
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It returns the response message, or a *store.Error if sending failed or the server answered with an error.
// This method also checks that the type of the response matches the request
func invokeRPCRequest(shardId uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, errors.Wrap(err, "serialize request"))
	}

	respBytes, err := transport.Send(shardId, reqBytes)
	if err != nil {
		Logger.Debugf("%s request to shard %d failed: %v", req.MsgType, shardId, err)
		return nil, store.WrapError(store.RetCInternalError, err)
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, store.WrapError(store.RetCInternalError, errors.Wrap(err, "deserialize response"))
	}

	// Error responses carry the return code of the server side error
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	if resp.MsgType == common.MsgTError {
		return nil, store.NewError(store.RetCInternalError, "unknown server error")
	}

	if resp.MsgType != req.MsgType {
		return nil, store.NewError(store.RetCInternalError,
			"unexpected message type: "+resp.MsgType.String()+", expected "+req.MsgType.String())
	}

	return resp, nil
}
