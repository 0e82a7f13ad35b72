package store

import (
	"testing"

	"github.com/ValentinKolb/zKV/lib/db/zset"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, RetCSuccess, CodeOf(nil))

	wrapped := errors.Wrap(zset.ErrInvalidScore, "zadd \"k\"")
	storeErr := FromError(wrapped)
	require.NotNil(t, storeErr)
	assert.Equal(t, RetCInvalidScore, storeErr.Code)
	assert.ErrorIs(t, storeErr, zset.ErrInvalidScore)
	assert.Equal(t, wrapped, errors.UnwrapOnce(storeErr))

	other := FromError(errors.New("boom"))
	assert.Equal(t, RetCInternalError, other.Code)
	assert.Equal(t, "boom", other.Msg)

	// store errors pass through unchanged
	orig := NewError(RetCUnsupportedOperation, "nope")
	assert.Same(t, orig, FromError(errors.Wrap(orig, "context")))
}

func TestErrorIsByCode(t *testing.T) {
	// errors rebuilt from a code (e.g. on the rpc client) still match the sentinel
	rebuilt := NewError(RetCInvalidScore, "invalid score: NaN is not allowed")
	assert.ErrorIs(t, rebuilt, zset.ErrInvalidScore)
	assert.NotErrorIs(t, NewError(RetCInternalError, "x"), zset.ErrInvalidScore)

	assert.ErrorIs(t, NewError(RetCInvalidOperation, "a"), NewError(RetCInvalidOperation, "a"))
	assert.NotErrorIs(t, NewError(RetCInvalidOperation, "a"), NewError(RetCInvalidOperation, "b"))
}

func TestErrorString(t *testing.T) {
	err := NewError(RetCInvalidScore, "nan")
	assert.Equal(t, "KVStoreError (code InvalidScore): nan", err.Error())
	assert.Equal(t, "Unknown", RetCode(99).String())
}
