package common

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Float (score type of the wire format)
// --------------------------------------------------------------------------

// Float is a float64 that is encoded as a JSON string ("1.5", "+Inf", "-Inf").
// JSON numbers cannot express infinity, but infinite scores are valid.
// Decoding accepts strings and plain JSON numbers.
type Float float64

// MarshalJSON implements the json.Marshaler interface for Float.
func (f Float) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(FormatScore(float64(f)))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Float.
func (f *Float) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := ParseScore(s)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// GobEncode implements the gob.GobEncoder interface for Float.
// The raw IEEE-754 bits are sent, so -0 keeps its sign.
func (f Float) GobEncode() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(float64(f))), nil
}

// GobDecode implements the gob.GobDecoder interface for Float.
func (f *Float) GobDecode(data []byte) error {
	if len(data) != 8 {
		return errors.Newf("invalid gob score: expected 8 bytes, got %d", len(data))
	}
	*f = Float(math.Float64frombits(binary.BigEndian.Uint64(data)))
	return nil
}

// FormatScore formats a score with the shortest representation that parses back to the same value
func FormatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseScore parses a score. "inf", "+Inf", "-inf" and "NaN" are accepted as well,
// rejecting NaN is up to the store.
func ParseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid score %q", s)
	}
	return v, nil
}

// ScoredMember is the wire representation of zset.ScoredMember
type ScoredMember struct {
	Score  Float  `json:"score"`
	Member string `json:"member"`
}

// FromScoredMembers converts sorted set entries to their wire representation
func FromScoredMembers(members []zset.ScoredMember) []ScoredMember {
	out := make([]ScoredMember, len(members))
	for i, m := range members {
		out[i] = ScoredMember{Score: Float(m.Score), Member: m.Member}
	}
	return out
}

// ToScoredMembers converts wire entries back to sorted set entries. The result is never nil.
func ToScoredMembers(members []ScoredMember) []zset.ScoredMember {
	out := make([]zset.ScoredMember, len(members))
	for i, m := range members {
		out[i] = zset.ScoredMember{Score: float64(m.Score), Member: m.Member}
	}
	return out
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key    string `json:"key,omitempty"`    // Used for: all operations except BatchPut and ListGet
	Value  string `json:"value,omitempty"`  // Used for: Put (request), Get (response)
	Member string `json:"member,omitempty"` // Used for: ZAdd, ZRemove, ZScore
	Score  Float  `json:"score"`            // Used for: ZAdd (request), ZScore (response)
	Min    Float  `json:"min"`              // Used for: ZRange
	Max    Float  `json:"max"`              // Used for: ZRange

	// List fields
	Entries []db.KeyValue  `json:"entries,omitempty"` // Used for: BatchPut (request), ListGet (response)
	Keys    []string       `json:"keys,omitempty"`    // Used for: ListGet (request)
	Members []ScoredMember `json:"members,omitempty"` // Used for: ZRange (response)
	Count   int64          `json:"count,omitempty"`   // Used for: ZCard (response)

	// Response only fields
	Ok   bool          `json:"ok,omitempty"`   // Used for: Get, ZScore responses
	Err  string        `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
	Code store.RetCode `json:"code,omitempty"` // Return code of the error (store.RetCode)
}

// AsError rebuilds the *store.Error transported by a response, nil if the message carries no error
func (m *Message) AsError() error {
	if m.Err == "" && m.Code == store.RetCSuccess {
		return nil
	}
	code := m.Code
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// String returns a short description of the message for logging
func (m *Message) String() string {
	s, err := sonic.MarshalString(m)
	if err != nil {
		return m.MsgType.String()
	}
	return s
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// withErr sets the error fields of a response
func withErr(msg *Message, err error) *Message {
	if err != nil {
		storeErr := store.FromError(err)
		msg.Err = storeErr.Msg
		msg.Code = storeErr.Code
	}
	return msg
}

// NewPutRequest creates a new Put request
func NewPutRequest(key, value string) *Message {
	return &Message{
		MsgType: MsgTKVPut,
		Key:     key,
		Value:   value,
	}
}

// NewPutResponse creates a new Put response
func NewPutResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVPut}, err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVDelete}, err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value string, ok bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}, err)
}

// NewBatchPutRequest creates a new BatchPut request
func NewBatchPutRequest(entries []db.KeyValue) *Message {
	return &Message{
		MsgType: MsgTKVBatchPut,
		Entries: entries,
	}
}

// NewBatchPutResponse creates a new BatchPut response
func NewBatchPutResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVBatchPut}, err)
}

// NewListGetRequest creates a new ListGet request
func NewListGetRequest(keys []string) *Message {
	return &Message{
		MsgType: MsgTKVListGet,
		Keys:    keys,
	}
}

// NewListGetResponse creates a new ListGet response
func NewListGetResponse(entries []db.KeyValue, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVListGet,
		Entries: entries,
	}, err)
}

// NewZAddRequest creates a new ZAdd request
func NewZAddRequest(key, member string, score float64) *Message {
	return &Message{
		MsgType: MsgTZAdd,
		Key:     key,
		Member:  member,
		Score:   Float(score),
	}
}

// NewZAddResponse creates a new ZAdd response
func NewZAddResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTZAdd}, err)
}

// NewZRemoveRequest creates a new ZRemove request
func NewZRemoveRequest(key, member string) *Message {
	return &Message{
		MsgType: MsgTZRemove,
		Key:     key,
		Member:  member,
	}
}

// NewZRemoveResponse creates a new ZRemove response
func NewZRemoveResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTZRemove}, err)
}

// NewZRangeRequest creates a new ZRange request
func NewZRangeRequest(key string, min, max float64) *Message {
	return &Message{
		MsgType: MsgTZRange,
		Key:     key,
		Min:     Float(min),
		Max:     Float(max),
	}
}

// NewZRangeResponse creates a new ZRange response
func NewZRangeResponse(members []zset.ScoredMember, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTZRange,
		Members: FromScoredMembers(members),
	}, err)
}

// NewZScoreRequest creates a new ZScore request
func NewZScoreRequest(key, member string) *Message {
	return &Message{
		MsgType: MsgTZScore,
		Key:     key,
		Member:  member,
	}
}

// NewZScoreResponse creates a new ZScore response
func NewZScoreResponse(score float64, ok bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTZScore,
		Score:   Float(score),
		Ok:      ok,
	}, err)
}

// NewZCardRequest creates a new ZCard request
func NewZCardRequest(key string) *Message {
	return &Message{
		MsgType: MsgTZCard,
		Key:     key,
	}
}

// NewZCardResponse creates a new ZCard response
func NewZCardResponse(count int, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTZCard,
		Count:   int64(count),
	}, err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code store.RetCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    code,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var messageTypeNames = map[MessageType]string{
	MsgTSuccess:    "success",
	MsgTError:      "error",
	MsgTKVPut:      "put",
	MsgTKVDelete:   "delete",
	MsgTKVGet:      "get",
	MsgTKVBatchPut: "batchPut",
	MsgTKVListGet:  "listGet",
	MsgTZAdd:       "zAdd",
	MsgTZRemove:    "zRemove",
	MsgTZRange:     "zRange",
	MsgTZScore:     "zScore",
	MsgTZCard:      "zCard",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "message type must be a string")
	}
	for mt, name := range messageTypeNames {
		if name == s {
			*t = mt
			return nil
		}
	}
	return errors.Newf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Text operations

	MsgTKVPut      // Put a key-value pair
	MsgTKVDelete   // Delete a key
	MsgTKVGet      // Get a value by key
	MsgTKVBatchPut // Put many key-value pairs
	MsgTKVListGet  // Get many values by key

	// Sorted set operations

	MsgTZAdd    // Add a member to a sorted set
	MsgTZRemove // Remove a member from a sorted set
	MsgTZRange  // Get all members within a score range
	MsgTZScore  // Get the score of a member
	MsgTZCard   // Get the number of members
)
