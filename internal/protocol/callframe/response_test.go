package callframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/pkg/ccerr"
)

func s5ResponseBody() *CallResponseBody {
	return &CallResponseBody{
		Flags:    0,
		Code:     ResponseError,
		Tracing:  Tracing{},
		Headers:  nil,
		Checksum: Checksum{Type: ChecksumNone},
		Args:     [][]byte{[]byte("err"), []byte("msg")},
	}
}

func TestS5_ResponseOK_StructuredRoundTrip(t *testing.T) {
	body := s5ResponseBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	got, err := DecodeCallResponseBody(buf)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestS5_ResponseOK_LazyArg1(t *testing.T) {
	buf, err := s5ResponseBody().Encode(false)
	require.NoError(t, err)

	f := NewResponseFrame(buf, len(buf))
	arg1, status := f.ReadArg1()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "err", arg1)
}

func TestResponse_ByteLen_AgreesWithEncodeLength(t *testing.T) {
	body := s5ResponseBody()
	n, err := body.ByteLen()
	require.NoError(t, err)

	buf, err := body.Encode(false)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}

func TestResponse_FragmentFlag(t *testing.T) {
	body := s5ResponseBody()

	fragment, err := body.Encode(true)
	require.NoError(t, err)
	f := NewResponseFrame(fragment, len(fragment))
	terminal, err := f.IsFrameTerminal()
	require.NoError(t, err)
	assert.False(t, terminal)

	last, err := body.Encode(false)
	require.NoError(t, err)
	f = NewResponseFrame(last, len(last))
	terminal, err = f.IsFrameTerminal()
	require.NoError(t, err)
	assert.True(t, terminal)
}

func TestResponse_TrailingBytesRejected(t *testing.T) {
	buf, err := s5ResponseBody().Encode(false)
	require.NoError(t, err)
	buf = append(buf, 0xFF)

	_, err = DecodeCallResponseBody(buf)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.TrailingBytes, codecErr.Code)
}

func TestResponse_ArgAbsentWhenNoArgs(t *testing.T) {
	body := &CallResponseBody{Code: ResponseOK, Checksum: Checksum{Type: ChecksumNone}}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewResponseFrame(buf, len(buf))
	_, status := f.ReadArg1()
	assert.Equal(t, StatusAbsent, status)
}

func TestProperty_ResponseTruncationSafety(t *testing.T) {
	full, err := s5ResponseBody().Encode(false)
	require.NoError(t, err)

	for n := 0; n < len(full); n++ {
		prefix := full[:n]
		assert.NotPanics(t, func() {
			f := NewResponseFrame(prefix, len(prefix))
			_, _ = f.ReadCode()
			_, _ = f.ReadTracing()
			_, _ = f.ReadArg1()
			_, _ = f.IsFrameTerminal()
		}, "prefix length %d must not panic", n)
	}
}
