package serializer

import (
	"encoding/binary"
	"math"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Layout: [MsgType:1][flags:2][fields...]. Only fields whose flag is set are
// written, in the order of the flag constants. Strings are length prefixed
// (uint32), floats are IEEE-754 bits (uint64), lists are count prefixed (uint32).
// All integers are big endian.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey     uint16 = 1 << 0
	hasValue   uint16 = 1 << 1
	hasMember  uint16 = 1 << 2
	hasScore   uint16 = 1 << 3
	hasMin     uint16 = 1 << 4
	hasMax     uint16 = 1 << 5
	hasEntries uint16 = 1 << 6
	hasKeys    uint16 = 1 << 7
	hasMembers uint16 = 1 << 8
	hasCount   uint16 = 1 << 9
	hasOk      uint16 = 1 << 10
	hasErr     uint16 = 1 << 11
	hasCode    uint16 = 1 << 12
)

const headerSize = 3

var errShortData = errors.New("data too short")

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	buf := make([]byte, headerSize, b.sizeBytes(msg))
	buf[0] = byte(msg.MsgType)

	var flags uint16
	if msg.Key != "" {
		flags |= hasKey
		buf = appendString(buf, msg.Key)
	}
	if msg.Value != "" {
		flags |= hasValue
		buf = appendString(buf, msg.Value)
	}
	if msg.Member != "" {
		flags |= hasMember
		buf = appendString(buf, msg.Member)
	}
	if isSet(msg.Score) {
		flags |= hasScore
		buf = appendFloat(buf, float64(msg.Score))
	}
	if isSet(msg.Min) {
		flags |= hasMin
		buf = appendFloat(buf, float64(msg.Min))
	}
	if isSet(msg.Max) {
		flags |= hasMax
		buf = appendFloat(buf, float64(msg.Max))
	}
	if msg.Entries != nil {
		flags |= hasEntries
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(msg.Entries)))
		for _, e := range msg.Entries {
			buf = appendString(buf, e.Key)
			buf = appendString(buf, e.Value)
		}
	}
	if msg.Keys != nil {
		flags |= hasKeys
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(msg.Keys)))
		for _, k := range msg.Keys {
			buf = appendString(buf, k)
		}
	}
	if msg.Members != nil {
		flags |= hasMembers
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(msg.Members)))
		for _, m := range msg.Members {
			buf = appendFloat(buf, float64(m.Score))
			buf = appendString(buf, m.Member)
		}
	}
	if msg.Count != 0 {
		flags |= hasCount
		buf = binary.BigEndian.AppendUint64(buf, uint64(msg.Count))
	}
	if msg.Ok {
		flags |= hasOk
	}
	if msg.Err != "" {
		flags |= hasErr
		buf = appendString(buf, msg.Err)
	}
	if msg.Code != store.RetCSuccess {
		flags |= hasCode
		buf = binary.BigEndian.AppendUint64(buf, uint64(msg.Code))
	}

	// Set flags after knowing which fields are present
	binary.BigEndian.PutUint16(buf[1:headerSize], flags)
	return buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < headerSize {
		return errors.Wrap(errShortData, "message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := binary.BigEndian.Uint16(data[1:headerSize])
	r := &reader{data: data, pos: headerSize}

	if flags&hasKey != 0 {
		msg.Key = r.string("key")
	}
	if flags&hasValue != 0 {
		msg.Value = r.string("value")
	}
	if flags&hasMember != 0 {
		msg.Member = r.string("member")
	}
	if flags&hasScore != 0 {
		msg.Score = common.Float(r.float("score"))
	}
	if flags&hasMin != 0 {
		msg.Min = common.Float(r.float("min"))
	}
	if flags&hasMax != 0 {
		msg.Max = common.Float(r.float("max"))
	}
	if flags&hasEntries != 0 {
		n := r.count("entries")
		msg.Entries = make([]db.KeyValue, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			msg.Entries = append(msg.Entries, db.KeyValue{Key: r.string("entry key"), Value: r.string("entry value")})
		}
	}
	if flags&hasKeys != 0 {
		n := r.count("keys")
		msg.Keys = make([]string, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			msg.Keys = append(msg.Keys, r.string("keys"))
		}
	}
	if flags&hasMembers != 0 {
		n := r.count("members")
		msg.Members = make([]common.ScoredMember, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			score := r.float("member score")
			msg.Members = append(msg.Members, common.ScoredMember{Score: common.Float(score), Member: r.string("member")})
		}
	}
	if flags&hasCount != 0 {
		msg.Count = int64(r.uint64("count"))
	}
	msg.Ok = flags&hasOk != 0
	if flags&hasErr != 0 {
		msg.Err = r.string("err")
	}
	if flags&hasCode != 0 {
		msg.Code = store.RetCode(r.uint64("code"))
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// isSet reports whether a score has to be written. -0 is written to keep its sign.
func isSet(f common.Float) bool {
	return f != 0 || math.Signbit(float64(f))
}

func appendFloat(buf []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
}

// reader reads fields from a serialized message. After the first error all
// reads return zero values and err keeps the first error.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = errors.Wrapf(errShortData, "field %s", field)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) uint64(field string) uint64 {
	b := r.take(8, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) float(field string) float64 {
	return math.Float64frombits(r.uint64(field))
}

func (r *reader) count(field string) int {
	b := r.take(4, field)
	if b == nil {
		return 0
	}
	n := int(binary.BigEndian.Uint32(b))
	// every element needs at least 4 bytes, reject counts that can't fit
	if n > (len(r.data)-r.pos)/4 {
		r.err = errors.Wrapf(errShortData, "field %s (count %d)", field, n)
		return 0
	}
	return n
}

func (r *reader) string(field string) string {
	b := r.take(4, field)
	if b == nil {
		return ""
	}
	return string(r.take(int(binary.BigEndian.Uint32(b)), field))
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize
	strSize := func(s string) int { return 4 + len(s) }

	if msg.Key != "" {
		size += strSize(msg.Key)
	}
	if msg.Value != "" {
		size += strSize(msg.Value)
	}
	if msg.Member != "" {
		size += strSize(msg.Member)
	}
	for _, f := range []common.Float{msg.Score, msg.Min, msg.Max} {
		if isSet(f) {
			size += 8
		}
	}
	if msg.Entries != nil {
		size += 4
		for _, e := range msg.Entries {
			size += strSize(e.Key) + strSize(e.Value)
		}
	}
	if msg.Keys != nil {
		size += 4
		for _, k := range msg.Keys {
			size += strSize(k)
		}
	}
	if msg.Members != nil {
		size += 4
		for _, m := range msg.Members {
			size += 8 + strSize(m.Member)
		}
	}
	if msg.Count != 0 {
		size += 8
	}
	if msg.Err != "" {
		size += strSize(msg.Err)
	}
	if msg.Code != store.RetCSuccess {
		size += 8
	}
	return size
}
