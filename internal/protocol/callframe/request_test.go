package callframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/pkg/ccerr"
)

func minimalRequestBody() *CallRequestBody {
	return &CallRequestBody{
		Flags:    0,
		TTL:      1,
		Tracing:  Tracing{},
		Service:  "svc",
		Headers:  []Header{{Key: "cn", Value: "caller"}},
		Checksum: Checksum{Type: ChecksumNone},
		Args:     [][]byte{[]byte("")},
	}
}

// TestS1_MinimalRequest_GoldenBytes checks the exact byte-for-byte
// encoding of the minimal request scenario.
func TestS1_MinimalRequest_GoldenBytes(t *testing.T) {
	buf, err := minimalRequestBody().Encode(false)
	require.NoError(t, err)

	want := []byte{
		0x00,                   // flags
		0x00, 0x00, 0x00, 0x01, // ttl=1
	}
	want = append(want, make([]byte, TracingLen)...) // 25 zero bytes
	want = append(want,
		0x03, 's', 'v', 'c', // service
		0x01,                     // nh=1
		0x02, 'c', 'n', // header key "cn"
		0x06, 'c', 'a', 'l', 'l', 'e', 'r', // header value "caller"
		0x00,       // checksum type none
		0x00, 0x00, // arg2 len=0
	)
	assert.Equal(t, want, buf)
}

func TestS1_MinimalRequest_StructuredRoundTrip(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	got, err := DecodeCallRequestBody(buf, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestS1_MinimalRequest_LazyAccessors(t *testing.T) {
	buf, err := minimalRequestBody().Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	svc, err := f.ReadServiceStr()
	require.NoError(t, err)
	assert.Equal(t, "svc", svc)

	cn, status := f.ReadCallerNameStr()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "caller", cn)

	_, status = f.ReadRoutingDelegateStr()
	assert.Equal(t, StatusAbsent, status)

	ttl, err := f.ReadTTL()
	require.NoError(t, err)
	assert.EqualValues(t, 1, ttl)
}

func TestS2_RoutingDelegate_LazyAccessorsAndCache(t *testing.T) {
	body := minimalRequestBody()
	body.Headers = []Header{{Key: "cn", Value: "a"}, {Key: "rd", Value: "b"}}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	rd, status := f.ReadRoutingDelegateStr()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "b", rd)

	cn, status := f.ReadCallerNameStr()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "a", cn)

	require.NotNil(t, f.cache.cnValueOffset)
	require.NotNil(t, f.cache.rdValueOffset)
}

func TestS3_DuplicateCallerName_FirstWins(t *testing.T) {
	body := minimalRequestBody()
	body.Headers = []Header{{Key: "cn", Value: "first"}, {Key: "cn", Value: "second"}}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	cn, status := f.ReadCallerNameStr()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "first", cn)
}

func TestS4_FragmentedBody_FlagDistinguishesTerminal(t *testing.T) {
	body := minimalRequestBody()

	fragment, err := body.Encode(true)
	require.NoError(t, err)
	fragmentFrame := NewRequestFrame(fragment, len(fragment))
	terminal, err := fragmentFrame.IsFrameTerminal()
	require.NoError(t, err)
	assert.False(t, terminal)

	last, err := body.Encode(false)
	require.NoError(t, err)
	lastFrame := NewRequestFrame(last, len(last))
	terminal, err = lastFrame.IsFrameTerminal()
	require.NoError(t, err)
	assert.True(t, terminal)
}

func TestS6_TTLZero_RejectedOnEncodeAndDecode(t *testing.T) {
	body := minimalRequestBody()
	body.TTL = 0
	_, err := body.Encode(false)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.InvalidTTL, codecErr.Code)

	body.TTL = 1
	buf, err := body.Encode(false)
	require.NoError(t, err)
	// zero out the ttl field in place (offset 1..4)
	buf[1], buf[2], buf[3], buf[4] = 0, 0, 0, 0

	_, err = DecodeCallRequestBody(buf, DecodeOptions{})
	require.Error(t, err)
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.InvalidTTL, codecErr.Code)
}

func TestByteLen_AgreesWithEncodeLength(t *testing.T) {
	body := minimalRequestBody()
	n, err := body.ByteLen()
	require.NoError(t, err)

	buf, err := body.Encode(false)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}

func TestRequest_TrailingBytesRejected(t *testing.T) {
	buf, err := minimalRequestBody().Encode(false)
	require.NoError(t, err)
	buf = append(buf, 0xFF)

	_, err = DecodeCallRequestBody(buf, DecodeOptions{})
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.TrailingBytes, codecErr.Code)
}

func TestRequest_InvalidUtf8Service_RejectedByDefault(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	// corrupt the service bytes ("svc" at a fixed offset) into invalid UTF-8.
	serviceStart := 1 + 4 + TracingLen + 1
	buf[serviceStart] = 0xFF

	_, err = DecodeCallRequestBody(buf, DecodeOptions{})
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.InvalidUtf8, codecErr.Code)
}

func TestRequest_InvalidUtf8Service_AllowedWithOption(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	serviceStart := 1 + 4 + TracingLen + 1
	buf[serviceStart] = 0xFF

	got, err := DecodeCallRequestBody(buf, DecodeOptions{AllowInvalidUTF8: true})
	require.NoError(t, err)
	assert.Equal(t, "", got.Service)
	assert.NotEmpty(t, got.RawService)
}

// TestProperty_TruncationSafety exercises property 7: every lazy accessor
// over every strict prefix of a valid frame either returns a value or
// reports unavailable/absent, never panics.
func TestProperty_TruncationSafety(t *testing.T) {
	body := minimalRequestBody()
	body.Headers = []Header{{Key: "cn", Value: "a"}, {Key: "rd", Value: "b"}}
	full, err := body.Encode(false)
	require.NoError(t, err)

	for n := 0; n < len(full); n++ {
		prefix := full[:n]
		assert.NotPanics(t, func() {
			f := NewRequestFrame(prefix, len(prefix))
			_, _ = f.ReadTTL()
			_, _ = f.ReadServiceStr()
			_, _ = f.ReadCallerNameStr()
			_, _ = f.ReadRoutingDelegateStr()
			_, _ = f.ReadArg1Str()
			_, _ = f.IsFrameTerminal()
		}, "prefix length %d must not panic", n)
	}
}
