package store

import (
	"fmt"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.KVDB

// IStore is the generic interface for interacting with a key–value store.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Returned errors are of type *Error.
type IStore interface {
	// Put inserts or overwrites the text value of a key.
	Put(key, value string) (err error)
	// Delete removes the value of a key, regardless of its kind.
	Delete(key string) (err error)
	// Get returns the text value of a key. The boolean is false if the key is missing or holds a sorted set.
	Get(key string) (value string, loaded bool, err error)
	// BatchPut stores all entries in order. The batch is not atomic.
	BatchPut(entries []db.KeyValue) (err error)
	// ListGet returns the entries of all given keys that hold a text value, in input order.
	ListGet(keys []string) (entries []db.KeyValue, err error)
	// ZAdd adds a member to the sorted set of a key. A NaN score fails with RetCInvalidScore.
	ZAdd(key, member string, score float64) (err error)
	// ZRemove removes a member from the sorted set of a key.
	ZRemove(key, member string) (err error)
	// ZRange returns the members of the sorted set of a key with min <= score <= max.
	ZRange(key string, min, max float64) (members []zset.ScoredMember, err error)
	// ZScore returns the score of a member of the sorted set of a key.
	ZScore(key, member string) (score float64, loaded bool, err error)
	// ZCard returns the number of members of the sorted set of a key.
	ZCard(key string) (count int, err error)
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the error that caused it.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause of the error (may be nil)
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinel errors by their return code. This keeps errors.Is
// working for errors that were rebuilt from a code on the client side.
func (e *Error) Is(target error) bool {
	if target == zset.ErrInvalidScore {
		return e.Code == RetCInvalidScore
	}
	other, ok := target.(*Error)
	return ok && other.Code == e.Code && other.Msg == e.Msg
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new KVStoreError with the given code from err.
// The message is taken from err and err stays reachable via errors.Unwrap.
func WrapError(code RetCode, err error) *Error {
	return &Error{
		Code:  code,
		Msg:   err.Error(),
		cause: err,
	}
}

// FromError converts any error into a *Error. Known causes are mapped to
// their return code, everything else becomes RetCInternalError.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr
	}
	if errors.Is(err, zset.ErrInvalidScore) {
		return WrapError(RetCInvalidScore, err)
	}
	return WrapError(RetCInternalError, err)
}

// CodeOf returns the return code of err, RetCSuccess for nil
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	return FromError(err).Code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCInvalidScore                        // 4: Score is NaN.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCInvalidScore:
		return "InvalidScore"
	default:
		return "Unknown"
	}
}
