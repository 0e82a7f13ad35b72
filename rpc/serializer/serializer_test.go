package serializer

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// roundTrip serializes and deserializes msg with s
func roundTrip(t *testing.T, s IRPCSerializer, msg common.Message) common.Message {
	t.Helper()
	data, err := s.Serialize(msg)
	if err != nil {
		t.Fatalf("Failed to serialize %s: %v", msg.MsgType, err)
	}
	var result common.Message
	if err := s.Deserialize(data, &result); err != nil {
		t.Fatalf("Failed to deserialize %s: %v", msg.MsgType, err)
	}
	return result
}

// TestRequestsSurvive checks every request type the client sends
func TestRequestsSurvive(t *testing.T) {
	requests := []*common.Message{
		common.NewPutRequest("k", "v"),
		common.NewDeleteRequest("k"),
		common.NewGetRequest("k"),
		common.NewBatchPutRequest([]db.KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: ""}}),
		common.NewListGetRequest([]string{"a", "", "c"}),
		common.NewZAddRequest("z", "m", -2.5),
		common.NewZRemoveRequest("z", "m"),
		common.NewZRangeRequest("z", -10, 10),
		common.NewZScoreRequest("z", "m"),
		common.NewZCardRequest("z"),
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for _, req := range requests {
				if got := roundTrip(t, s, *req); !reflect.DeepEqual(*req, got) {
					t.Errorf("%s request changed:\nOriginal: %+v\nResult:   %+v", req.MsgType, *req, got)
				}
			}
		})
	}
}

// TestInfiniteAndNaNScores checks that scores JSON numbers can't express are transported
func TestInfiniteAndNaNScores(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			got := roundTrip(t, s, *common.NewZRangeRequest("z", math.Inf(-1), math.Inf(1)))
			if !math.IsInf(float64(got.Min), -1) || !math.IsInf(float64(got.Max), 1) {
				t.Errorf("Expected (-Inf, +Inf), got (%v, %v)", got.Min, got.Max)
			}

			got = roundTrip(t, s, *common.NewZAddRequest("z", "m", math.NaN()))
			if !math.IsNaN(float64(got.Score)) {
				t.Errorf("Expected NaN score, got %v", got.Score)
			}

			members := []zset.ScoredMember{{Score: math.Inf(-1), Member: "low"}, {Score: math.Inf(1), Member: "high"}}
			got = roundTrip(t, s, *common.NewZRangeResponse(members, nil))
			if !reflect.DeepEqual(members, common.ToScoredMembers(got.Members)) {
				t.Errorf("Expected members %v, got %v", members, got.Members)
			}
		})
	}
}

// TestNegativeZeroScores checks that every serializer keeps the sign of a zero score
func TestNegativeZeroScores(t *testing.T) {
	negZero := math.Copysign(0, -1)

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			got := roundTrip(t, s, *common.NewZRangeRequest("z", negZero, negZero))
			if !math.Signbit(float64(got.Min)) || !math.Signbit(float64(got.Max)) {
				t.Errorf("Expected (-0, -0), got (%v, %v)", got.Min, got.Max)
			}

			got = roundTrip(t, s, *common.NewZAddRequest("z", "m", negZero))
			if got.Score != 0 || !math.Signbit(float64(got.Score)) {
				t.Errorf("Expected score -0, got %v", got.Score)
			}

			got = roundTrip(t, s, *common.NewZRangeResponse([]zset.ScoredMember{{Score: negZero, Member: "m"}}, nil))
			if len(got.Members) != 1 || !math.Signbit(float64(got.Members[0].Score)) {
				t.Errorf("Expected member with score -0, got %v", got.Members)
			}

			// +0 stays positive
			got = roundTrip(t, s, *common.NewZAddRequest("z", "m", 0))
			if math.Signbit(float64(got.Score)) {
				t.Errorf("Expected score +0, got -0")
			}
		})
	}
}

// TestErrorResponses checks that return codes survive so the client can rebuild the error
func TestErrorResponses(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			got := roundTrip(t, s, *common.NewZAddResponse(store.NewError(store.RetCInvalidScore, "nan")))
			if got.Code != store.RetCInvalidScore || got.Err != "nan" {
				t.Errorf("Expected code InvalidScore with message nan, got %s %q", got.Code, got.Err)
			}
			if err := got.AsError(); store.CodeOf(err) != store.RetCInvalidScore {
				t.Errorf("Expected rebuilt error with code InvalidScore, got %v", err)
			}

			got = roundTrip(t, s, *common.NewGetResponse("value", true, nil))
			if got.AsError() != nil || !got.Ok || got.Value != "value" {
				t.Errorf("Unexpected get response %+v", got)
			}
		})
	}
}

// TestJSONScoresAreStrings checks the JSON wire format of scores
func TestJSONScoresAreStrings(t *testing.T) {
	data, err := NewJSONSerializer().Serialize(*common.NewZRangeRequest("z", math.Inf(-1), 1.5))
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"min":"-Inf"`, `"max":"1.5"`, `"msg_type":"zRange"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in %s", want, out)
		}
	}

	// plain JSON numbers are accepted as well
	var msg common.Message
	if err := NewJSONSerializer().Deserialize([]byte(`{"msg_type":"zAdd","key":"z","member":"m","score":3}`), &msg); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if msg.MsgType != common.MsgTZAdd || msg.Score != 3 {
		t.Errorf("Unexpected message %+v", msg)
	}

	if err := NewJSONSerializer().Deserialize([]byte(`{"msg_type":"nope"}`), &msg); err == nil {
		t.Errorf("Expected error for unknown message type")
	}
}

// TestDeserializeResetsMessage checks that reused messages don't keep stale fields
func TestDeserializeResetsMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			msg := *common.NewPutRequest("stale-key", "stale-value")

			data, err := s.Serialize(*common.NewZCardRequest("z"))
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if err := s.Deserialize(data, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if msg.Value != "" || msg.Key != "z" {
				t.Errorf("Expected a clean ZCard request, got %+v", msg)
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1, 0}, // Message type and half of the flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, 0, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Missing score",
			data:        []byte{1, 0, 8, 0, 0, 0}, // Score flag but only 3 bytes
			expectError: true,
		},
		{
			name:        "Oversized list count",
			data:        []byte{1, 0, 128, 0xff, 0xff, 0xff, 0xff}, // Keys flag with 4 billion keys
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
