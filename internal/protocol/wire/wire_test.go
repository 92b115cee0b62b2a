package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/pkg/ccerr"
)

// ============================================================================
// Fixed-width integer tests
// ============================================================================

func TestReadU8(t *testing.T) {
	buf := []byte{0x07, 0xff}
	v, err := ReadU8(buf, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0x07, v)
}

func TestReadU8_TooShort(t *testing.T) {
	_, err := ReadU8([]byte{}, 0)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.BufferTooShort, codecErr.Code)
}

func TestReadU32_BigEndian(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x00}
	v, err := ReadU32(buf, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 256, v)
}

func TestWriteU32_RoundTrip(t *testing.T) {
	buf := WriteU32(nil, 0xdeadbeef)
	v, err := ReadU32(buf, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0xdeadbeef, v)
}

// ============================================================================
// str1 tests
// ============================================================================

func TestWriteStr1_ReadStr1_RoundTrip(t *testing.T) {
	buf, err := WriteStr1(nil, "hello")
	require.NoError(t, err)

	s, end, err := ReadStr1(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, len(buf), end)
}

func TestReadStr1_EmptyStringIsValid(t *testing.T) {
	buf, err := WriteStr1(nil, "")
	require.NoError(t, err)

	s, end, err := ReadStr1(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 1, end)
}

func TestReadStr1_InvalidUtf8(t *testing.T) {
	buf := []byte{0x02, 0xff, 0xfe}
	_, _, err := ReadStr1(buf, 0)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.InvalidUtf8, codecErr.Code)
}

func TestReadStr1Bytes_DoesNotValidateUtf8(t *testing.T) {
	buf := []byte{0x02, 0xff, 0xfe}
	data, end, err := ReadStr1Bytes(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe}, data)
	assert.Equal(t, 3, end)
}

func TestWriteStr1_LengthOverflow(t *testing.T) {
	tooLong := make([]byte, MaxStr1Len+1)
	_, err := WriteStr1(nil, string(tooLong))
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.LengthOverflow, codecErr.Code)
}

func TestSkipStr1(t *testing.T) {
	buf, err := WriteStr1(nil, "abc")
	require.NoError(t, err)
	buf = append(buf, 0x99) // trailing byte, should not be touched

	end, err := SkipStr1(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, end)
}

// ============================================================================
// arg2 tests
// ============================================================================

func TestWriteArg2_ReadArg2_RoundTrip(t *testing.T) {
	buf, err := WriteArg2(nil, []byte("payload"))
	require.NoError(t, err)

	data, end, err := ReadArg2(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, len(buf), end)
}

func TestReadArg2_TruncatedData(t *testing.T) {
	buf := []byte{0x00, 0x05, 'a', 'b'} // claims 5 bytes, only 2 present
	_, _, err := ReadArg2(buf, 0)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.BufferTooShort, codecErr.Code)
}

func TestReadArg2_CopiesData(t *testing.T) {
	buf, err := WriteArg2(nil, []byte("mutate-me"))
	require.NoError(t, err)

	data, _, err := ReadArg2(buf, 0)
	require.NoError(t, err)
	data[0] = 'X'
	assert.Equal(t, byte('m'), buf[2], "ReadArg2 must return a copy, not a view into buf")
}

func TestWriteArg2_LengthOverflow(t *testing.T) {
	tooLong := make([]byte, MaxArg2Len+1)
	_, err := WriteArg2(nil, tooLong)
	require.Error(t, err)
	var codecErr *ccerr.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ccerr.LengthOverflow, codecErr.Code)
}

// ============================================================================
// Length helpers
// ============================================================================

func TestStr1Len_Arg2Len(t *testing.T) {
	assert.Equal(t, 6, Str1Len("hello"))
	assert.Equal(t, 9, Arg2Len([]byte("payload")))
}
