package callframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "absent", StatusAbsent.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
}

// TestProperty_IdempotentCaching_TTL proves property 5 for ReadTTL: once
// the cache slot is populated, the buffer backing the frame is never
// touched again. Corrupting the buffer in place after the first call and
// observing the second call still returns the original value demonstrates
// the second call performed no additional buffer read.
func TestProperty_IdempotentCaching_TTL(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	first, err := f.ReadTTL()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	// corrupt the ttl field bytes in place
	buf[1], buf[2], buf[3], buf[4] = 0xFF, 0xFF, 0xFF, 0xFF

	second, err := f.ReadTTL()
	require.NoError(t, err)
	assert.Equal(t, first, second, "cached value must not reflect the corrupted buffer")
}

func TestProperty_IdempotentCaching_ServiceStr(t *testing.T) {
	buf, err := minimalRequestBody().Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	first, err := f.ReadServiceStr()
	require.NoError(t, err)
	require.Equal(t, "svc", first)

	serviceStart := 1 + 4 + TracingLen + 1
	buf[serviceStart] = 'X'

	second, err := f.ReadServiceStr()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProperty_IdempotentCaching_CallerName(t *testing.T) {
	body := minimalRequestBody()
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	first, status := f.ReadCallerNameStr()
	require.Equal(t, StatusOK, status)
	require.Equal(t, "caller", first)

	for i := range buf {
		buf[i] = 0
	}

	second, status := f.ReadCallerNameStr()
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, first, second)
}

func TestProperty_IdempotentCaching_TracingValue(t *testing.T) {
	body := minimalRequestBody()
	body.Tracing = Tracing{SpanID: 42, ParentID: 7, TraceID: 99, Flags: 1}
	buf, err := body.Encode(false)
	require.NoError(t, err)

	f := NewRequestFrame(buf, len(buf))
	first, err := f.ReadTracingValue()
	require.NoError(t, err)

	tracingStart := 1 + 4
	for i := tracingStart; i < tracingStart+TracingLen; i++ {
		buf[i] = 0xAB
	}

	second, err := f.ReadTracingValue()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
