package wire

import "github.com/coreframe/callwire/pkg/ccerr"

// Cursor is a sequential reader over a frame body buffer. It is the
// structured-decode counterpart to the offset-addressed Read* functions
// lazy accessors use directly: same underlying primitives, but tracking
// position so callers don't have to thread offsets through every call.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reading starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// ReadU8 reads one byte, advancing the cursor.
func (c *Cursor) ReadU8() (uint8, error) {
	v, err := ReadU8(c.buf, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos++
	return v, nil
}

// ReadU16 reads a big-endian uint16, advancing the cursor.
func (c *Cursor) ReadU16() (uint16, error) {
	v, err := ReadU16(c.buf, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32, advancing the cursor.
func (c *Cursor) ReadU32() (uint32, error) {
	v, err := ReadU32(c.buf, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return v, nil
}

// ReadBytes reads exactly n raw bytes, advancing the cursor. Used for
// fixed-width records like Tracing.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, ccerr.NewBufferTooShortError(c.pos, n, len(c.buf)-c.pos)
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// ReadStr1 reads a UTF-8-validated str1 string, advancing the cursor.
func (c *Cursor) ReadStr1() (string, error) {
	s, end, err := ReadStr1(c.buf, c.pos)
	if err != nil {
		return "", err
	}
	c.pos = end
	return s, nil
}

// ReadStr1Bytes reads a str1 field's raw bytes without UTF-8 validation,
// advancing the cursor.
func (c *Cursor) ReadStr1Bytes() ([]byte, error) {
	data, end, err := ReadStr1Bytes(c.buf, c.pos)
	if err != nil {
		return nil, err
	}
	c.pos = end
	return data, nil
}

// ReadArg2 reads an arg2 byte string, advancing the cursor.
func (c *Cursor) ReadArg2() ([]byte, error) {
	data, end, err := ReadArg2(c.buf, c.pos)
	if err != nil {
		return nil, err
	}
	c.pos = end
	return data, nil
}
