package serializer

import (
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/bytedance/sonic"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{api: sonic.ConfigStd}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding (sonic)
type jsonSerializerImpl struct {
	api sonic.API
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return j.api.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return j.api.Unmarshal(b, msg)
}
