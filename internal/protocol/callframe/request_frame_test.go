package callframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFrame_ReadHeaders_DecodeHeaderEntry(t *testing.T) {
	body := minimalRequestBody()
	body.Headers = []Header{{Key: "cn", Value: "a"}, {Key: "x", Value: "y"}}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	entries, err := f.ReadHeaders()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	key, value, err := f.DecodeHeaderEntry(entries[1])
	require.NoError(t, err)
	assert.Equal(t, "x", key)
	assert.Equal(t, "y", value)
}

func TestRequestFrame_ReadArg1Str(t *testing.T) {
	body := minimalRequestBody()
	body.Args = [][]byte{[]byte("hello")}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	arg1, status := f.ReadArg1Str()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "hello", arg1)
}

func TestRequestFrame_ReadArg1Str_AbsentWhenNoArgs(t *testing.T) {
	body := minimalRequestBody()
	body.Args = nil
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	_, status := f.ReadArg1Str()
	assert.Equal(t, StatusAbsent, status)
}

func TestRequestFrame_EnsureFastPathScan_NoPartialOffsetsOnFailure(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	// truncate mid-header-list so the scan fails partway through.
	truncated := buf[:len(buf)-8]

	f := NewRequestFrame(truncated, len(truncated))
	_, status := f.ReadCallerNameStr()
	assert.Equal(t, StatusUnavailable, status)
	assert.NotEmpty(t, f.Cache().LastError())
	assert.Nil(t, f.cache.cnValueOffset)
	assert.Nil(t, f.cache.rdValueOffset)
	assert.Nil(t, f.cache.csumStart)
}

func TestRequestFrame_Release_ClearsBuffer(t *testing.T) {
	buf, err := minimalRequestBody().Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	f.Release()
	assert.Nil(t, f.buf)
	assert.Zero(t, f.size)
}

func TestRequestFrame_ReadFlags(t *testing.T) {
	buf, err := minimalRequestBody().Encode(true)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	flags, err := f.ReadFlags()
	require.NoError(t, err)
	assert.Equal(t, FlagFragment, flags&FlagFragment)
}
