// Package wire provides the protocol-agnostic primitive readers and
// writers the call-frame codec is built from: fixed-width big-endian
// integers and two variable-width, length-prefixed byte string
// encodings (str1, arg2).
//
// This package contains only generic utilities with no dependencies on
// call-frame-specific types (no tracing, headers, checksum, or body
// types) beyond the ccerr error taxonomy, mirroring the layering a
// protocol-agnostic XDR helper package would use.
package wire

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/coreframe/callwire/pkg/ccerr"
)

// MaxStr1Len is the largest length a str1-encoded string can carry (its
// 1-byte length prefix tops out at 255).
const MaxStr1Len = 1<<8 - 1

// MaxArg2Len is the largest length an arg2-encoded byte string can carry
// (its 2-byte length prefix tops out at 65535).
const MaxArg2Len = 1<<16 - 1

// ReadU8 reads one byte at offset. Fails with BufferTooShort if offset
// is out of range.
func ReadU8(buf []byte, offset int) (uint8, error) {
	if offset < 0 || offset+1 > len(buf) {
		return 0, ccerr.NewBufferTooShortError(offset, 1, len(buf)-offset)
	}
	return buf[offset], nil
}

// ReadU16 reads a big-endian uint16 at offset.
func ReadU16(buf []byte, offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(buf) {
		return 0, ccerr.NewBufferTooShortError(offset, 2, len(buf)-offset)
	}
	return binary.BigEndian.Uint16(buf[offset : offset+2]), nil
}

// ReadU32 reads a big-endian uint32 at offset.
func ReadU32(buf []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, ccerr.NewBufferTooShortError(offset, 4, len(buf)-offset)
	}
	return binary.BigEndian.Uint32(buf[offset : offset+4]), nil
}

// ReadStr1Bytes reads a 1-byte-length-prefixed byte string at offset and
// returns the raw bytes (a view into buf) plus the offset immediately
// after it. It performs no UTF-8 validation; callers that require text
// validate separately so lazy accessors can choose to defer or reject.
func ReadStr1Bytes(buf []byte, offset int) (data []byte, end int, err error) {
	l, err := ReadU8(buf, offset)
	if err != nil {
		return nil, offset, err
	}
	start := offset + 1
	end = start + int(l)
	if end > len(buf) {
		return nil, offset, ccerr.NewBufferTooShortError(start, int(l), len(buf)-start)
	}
	return buf[start:end], end, nil
}

// ReadStr1 reads a str1 string at offset and validates it as UTF-8.
func ReadStr1(buf []byte, offset int) (s string, end int, err error) {
	data, end, err := ReadStr1Bytes(buf, offset)
	if err != nil {
		return "", offset, err
	}
	if !utf8.Valid(data) {
		return "", offset, ccerr.NewInvalidUtf8Error(offset, "str1")
	}
	return string(data), end, nil
}

// SkipStr1 walks a str1 field without allocating, returning only the end
// offset. Used by lazy skips that need to move past a field they don't
// care about the contents of.
func SkipStr1(buf []byte, offset int) (end int, err error) {
	_, end, err = ReadStr1Bytes(buf, offset)
	return end, err
}

// ReadArg2 reads a 2-byte-length-prefixed byte string at offset and
// returns a copy of the data plus the offset immediately after it.
func ReadArg2(buf []byte, offset int) (data []byte, end int, err error) {
	l, err := ReadU16(buf, offset)
	if err != nil {
		return nil, offset, err
	}
	start := offset + 2
	end = start + int(l)
	if end > len(buf) {
		return nil, offset, ccerr.NewBufferTooShortError(start, int(l), len(buf)-start)
	}
	out := make([]byte, l)
	copy(out, buf[start:end])
	return out, end, nil
}

// WriteU8 appends one byte to buf.
func WriteU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// WriteU16 appends a big-endian uint16 to buf.
func WriteU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// WriteU32 appends a big-endian uint32 to buf.
func WriteU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// WriteStr1 appends a str1-encoded string to buf. Fails with
// LengthOverflow if s is longer than MaxStr1Len.
func WriteStr1(buf []byte, s string) ([]byte, error) {
	if len(s) > MaxStr1Len {
		return buf, ccerr.NewLengthOverflowError(len(buf), len(s), MaxStr1Len)
	}
	buf = WriteU8(buf, uint8(len(s)))
	return append(buf, s...), nil
}

// WriteArg2 appends an arg2-encoded byte string to buf. Fails with
// LengthOverflow if data is longer than MaxArg2Len.
func WriteArg2(buf []byte, data []byte) ([]byte, error) {
	if len(data) > MaxArg2Len {
		return buf, ccerr.NewLengthOverflowError(len(buf), len(data), MaxArg2Len)
	}
	buf = WriteU16(buf, uint16(len(data)))
	return append(buf, data...), nil
}

// Str1Len returns the encoded byte length of s as a str1 field.
func Str1Len(s string) int {
	return 1 + len(s)
}

// Arg2Len returns the encoded byte length of data as an arg2 field.
func Arg2Len(data []byte) int {
	return 2 + len(data)
}
