package callframe

import (
	"encoding/binary"

	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/ccerr"
)

// TracingLen is the fixed wire length of a Tracing record: three uint64
// span identifiers plus a one-byte flags field (§4.2).
const TracingLen = 25

// Tracing is the fixed 25-byte tracing record carried by every call
// frame. The wire order is span-then-parent-then-trace id, each as a
// big-endian high-u32/low-u32 pair; this type exposes them as uint64
// since the core codec never needs to split them (spec.md §4.2 notes
// consumers may expose either shape — the wire order is unaffected).
type Tracing struct {
	SpanID   uint64
	ParentID uint64
	TraceID  uint64
	Flags    uint8
}

// WriteInto appends the 25-byte wire encoding of t to buf.
func (t Tracing) WriteInto(buf []byte) []byte {
	buf = wire.WriteU32(buf, uint32(t.SpanID>>32))
	buf = wire.WriteU32(buf, uint32(t.SpanID))
	buf = wire.WriteU32(buf, uint32(t.ParentID>>32))
	buf = wire.WriteU32(buf, uint32(t.ParentID))
	buf = wire.WriteU32(buf, uint32(t.TraceID>>32))
	buf = wire.WriteU32(buf, uint32(t.TraceID))
	buf = wire.WriteU8(buf, t.Flags)
	return buf
}

// ReadTracingFrom reads a Tracing record from the cursor, advancing it by
// TracingLen bytes. Fails only on buffer underflow.
func ReadTracingFrom(c *wire.Cursor) (Tracing, error) {
	raw, err := c.ReadBytes(TracingLen)
	if err != nil {
		return Tracing{}, err
	}
	return decodeTracing(raw), nil
}

// PeekTracing decodes a Tracing record directly out of buf at offset,
// without an intervening Cursor. Used by lazy accessors.
func PeekTracing(buf []byte, offset int) (Tracing, error) {
	if offset < 0 || offset+TracingLen > len(buf) {
		return Tracing{}, ccerr.NewBufferTooShortError(offset, TracingLen, len(buf)-offset)
	}
	return decodeTracing(buf[offset : offset+TracingLen]), nil
}

func decodeTracing(raw []byte) Tracing {
	return Tracing{
		SpanID:   uint64(binary.BigEndian.Uint32(raw[0:4]))<<32 | uint64(binary.BigEndian.Uint32(raw[4:8])),
		ParentID: uint64(binary.BigEndian.Uint32(raw[8:12]))<<32 | uint64(binary.BigEndian.Uint32(raw[12:16])),
		TraceID:  uint64(binary.BigEndian.Uint32(raw[16:20]))<<32 | uint64(binary.BigEndian.Uint32(raw[20:24])),
		Flags:    raw[24],
	}
}
