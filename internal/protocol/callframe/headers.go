package callframe

import (
	"encoding/binary"

	"github.com/coreframe/callwire/internal/protocol/wire"
)

// MaxHeaderCount is the largest number of header entries the 1-byte nh
// count can carry (§3: "number of entries 0..255").
const MaxHeaderCount = 1<<8 - 1

// Header is a single key/value entry of a call frame's header list.
// Order is preserved on round-trip and duplicate keys are permitted.
type Header struct {
	Key   string
	Value string
}

// ReadHeadersFrom reads the full header list (nh:1 then nh entries of
// str1 key + str1 value) from the cursor, advancing it past the list.
func ReadHeadersFrom(c *wire.Cursor) ([]Header, error) {
	nh, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	if nh == 0 {
		return nil, nil
	}
	out := make([]Header, 0, nh)
	for i := 0; i < int(nh); i++ {
		key, err := c.ReadStr1()
		if err != nil {
			return nil, err
		}
		value, err := c.ReadStr1()
		if err != nil {
			return nil, err
		}
		out = append(out, Header{Key: key, Value: value})
	}
	return out, nil
}

// WriteHeadersInto appends the full header list encoding of hs to buf.
func WriteHeadersInto(buf []byte, hs []Header) ([]byte, error) {
	if len(hs) > MaxHeaderCount {
		return buf, overflowHeaderCount(len(buf), len(hs))
	}
	buf = wire.WriteU8(buf, uint8(len(hs)))
	var err error
	for _, h := range hs {
		if buf, err = wire.WriteStr1(buf, h.Key); err != nil {
			return buf, err
		}
		if buf, err = wire.WriteStr1(buf, h.Value); err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// HeaderListLen returns the encoded byte length of hs as a full header
// list, without writing anything. Used by the two-pass structured writer.
func HeaderListLen(hs []Header) int {
	n := 1
	for _, h := range hs {
		n += wire.Str1Len(h.Key) + wire.Str1Len(h.Value)
	}
	return n
}

// SkipHeaders walks the header list at offset without materializing any
// entry, returning the offset of the first byte after the list (§4.3
// "lazy skip").
func SkipHeaders(buf []byte, offset int) (end int, err error) {
	nh, err := wire.ReadU8(buf, offset)
	if err != nil {
		return offset, err
	}
	end = offset + 1
	for i := 0; i < int(nh); i++ {
		if end, err = wire.SkipStr1(buf, end); err != nil {
			return offset, err
		}
		if end, err = wire.SkipStr1(buf, end); err != nil {
			return offset, err
		}
	}
	return end, nil
}

// HeaderEntry locates one header's key/value within the buffer, without
// decoding them as strings. Used by lazy enumeration.
type HeaderEntry struct {
	KeyOffset   int
	ValueOffset int
}

// ReadHeadersAt lazily reads the header list starting at a known offset,
// returning each entry's key/value byte offsets in wire order plus the
// offset of the first byte after the list. Callers decode individual
// entries on demand via wire.ReadStr1 at KeyOffset/ValueOffset.
func ReadHeadersAt(buf []byte, offset int) (entries []HeaderEntry, end int, err error) {
	nh, err := wire.ReadU8(buf, offset)
	if err != nil {
		return nil, offset, err
	}
	end = offset + 1
	entries = make([]HeaderEntry, 0, nh)
	for i := 0; i < int(nh); i++ {
		keyOffset := end
		if end, err = wire.SkipStr1(buf, end); err != nil {
			return nil, offset, err
		}
		valueOffset := end
		if end, err = wire.SkipStr1(buf, end); err != nil {
			return nil, offset, err
		}
		entries = append(entries, HeaderEntry{KeyOffset: keyOffset, ValueOffset: valueOffset})
	}
	return entries, end, nil
}

// FastPathSlot indexes one well-known 2-byte header key the core codec
// scans for on the hot path (§4.6, §9 Open Question b: generalized to an
// n-way dispatch instead of duplicated cn/rd conditionals).
type FastPathSlot int

const (
	// SlotCallerName is the "cn" header: the calling service's identity,
	// consumed by the rate-limiting collaborator (§6).
	SlotCallerName FastPathSlot = iota
	// SlotRoutingDelegate is the "rd" header: a routing override for the
	// service to call instead of the one named in the frame.
	SlotRoutingDelegate
	numFastPathSlots
)

// fastPathKey packs a 2-byte ASCII header key into the big-endian uint16
// the scan compares against, matching the wire representation a 2-byte
// str1 key decodes to.
func fastPathKey(name string) uint16 {
	return binary.BigEndian.Uint16([]byte(name))
}

var fastPathKeys = [numFastPathSlots]uint16{
	SlotCallerName:      fastPathKey("cn"),
	SlotRoutingDelegate: fastPathKey("rd"),
}

// noOffset marks a fast-path slot as computed-and-absent: every real
// value offset in a call frame is strictly positive (it always follows
// at least flags+ttl+tracing), so -1 cannot collide with a real offset.
const noOffset = -1

// ScanFastPathHeaders walks the header list at offset once, recording the
// first occurrence's value offset for each registered fast-path key
// (§4.6 tie-break: "the FIRST occurrence wins"), and returns the offset
// of the first byte after the header list (the checksum start offset).
// On any underflow it returns an error and the caller must not commit any
// of the returned offsets (§4.6: "no partial offsets may be committed to
// the cache after a failed scan").
func ScanFastPathHeaders(buf []byte, offset int) (values [numFastPathSlots]int, csumStart int, err error) {
	for i := range values {
		values[i] = noOffset
	}

	nh, err := wire.ReadU8(buf, offset)
	if err != nil {
		return values, 0, err
	}
	pos := offset + 1
	for i := 0; i < int(nh); i++ {
		keyData, keyEnd, err := wire.ReadStr1Bytes(buf, pos)
		if err != nil {
			return values, 0, err
		}
		valueOffset := keyEnd
		_, valueEnd, err := wire.ReadStr1Bytes(buf, keyEnd)
		if err != nil {
			return values, 0, err
		}
		pos = valueEnd

		if len(keyData) == 2 {
			k := binary.BigEndian.Uint16(keyData)
			for slot, want := range fastPathKeys {
				if k == want && values[slot] == noOffset {
					values[slot] = valueOffset
				}
			}
		}
	}
	return values, pos, nil
}

func overflowHeaderCount(offset, n int) error {
	return lengthOverflow(offset, n, MaxHeaderCount)
}
