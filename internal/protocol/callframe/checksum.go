package callframe

import (
	"bytes"

	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/ccerr"
	"github.com/coreframe/callwire/pkg/logger"
	"github.com/coreframe/callwire/pkg/metrics"
)

// ChecksumType is the 1-byte tag selecting a digest algorithm. The tag
// space and each tag's digest width form a closed enumeration the core
// codec treats as opaque beyond the width (§4.4, §6); the digest
// algorithm itself is an external collaborator.
type ChecksumType uint8

const (
	// ChecksumNone carries no digest.
	ChecksumNone ChecksumType = 0
	// ChecksumCRC32 carries a 4-byte CRC-32 digest.
	ChecksumCRC32 ChecksumType = 1
	// ChecksumFarmhash carries an 8-byte Farmhash digest.
	ChecksumFarmhash ChecksumType = 2
	// ChecksumCRC32C carries a 4-byte CRC-32C (Castagnoli) digest.
	ChecksumCRC32C ChecksumType = 3
)

// String returns a human-readable name for the checksum type.
func (t ChecksumType) String() string {
	switch t {
	case ChecksumNone:
		return "None"
	case ChecksumCRC32:
		return "CRC32"
	case ChecksumFarmhash:
		return "Farmhash"
	case ChecksumCRC32C:
		return "CRC32C"
	default:
		return "Unknown"
	}
}

// DigestWidth returns the fixed digest payload width for t. It is a
// total function over the finite type-tag space: unknown tags fail with
// InvalidChecksumType.
func (t ChecksumType) DigestWidth() (int, error) {
	switch t {
	case ChecksumNone:
		return 0, nil
	case ChecksumCRC32, ChecksumCRC32C:
		return 4, nil
	case ChecksumFarmhash:
		return 8, nil
	default:
		return 0, ccerr.NewInvalidChecksumTypeError(-1, uint8(t))
	}
}

// Checksum is the 1-byte type tag plus its optional fixed-width digest.
type Checksum struct {
	Type   ChecksumType
	Digest []byte
}

// ReadChecksumFrom reads the checksum type and, if present, its digest
// from the cursor, advancing it past both.
func ReadChecksumFrom(c *wire.Cursor) (Checksum, error) {
	typeOffset := c.Pos()
	tagByte, err := c.ReadU8()
	if err != nil {
		return Checksum{}, err
	}
	t := ChecksumType(tagByte)
	width, err := t.DigestWidth()
	if err != nil {
		return Checksum{}, ccerr.NewInvalidChecksumTypeError(typeOffset, tagByte)
	}
	if width == 0 {
		return Checksum{Type: t}, nil
	}
	digest, err := c.ReadBytes(width)
	if err != nil {
		return Checksum{}, err
	}
	out := make([]byte, width)
	copy(out, digest)
	return Checksum{Type: t, Digest: out}, nil
}

// WriteChecksumInto appends the checksum encoding of cs to buf. Fails
// with InvalidChecksumType if cs.Type is unknown or if cs.Digest's length
// does not match the type's fixed width.
func WriteChecksumInto(buf []byte, cs Checksum) ([]byte, error) {
	width, err := cs.Type.DigestWidth()
	if err != nil {
		return buf, ccerr.NewInvalidChecksumTypeError(len(buf), uint8(cs.Type))
	}
	if len(cs.Digest) != width {
		return buf, ccerr.NewInvalidChecksumTypeError(len(buf), uint8(cs.Type))
	}
	buf = wire.WriteU8(buf, uint8(cs.Type))
	return append(buf, cs.Digest...), nil
}

// ChecksumLen returns the encoded byte length of cs.
func ChecksumLen(cs ChecksumType) (int, error) {
	width, err := cs.DigestWidth()
	if err != nil {
		return 0, err
	}
	return 1 + width, nil
}

// SkipChecksum walks the checksum field at offset using only its type
// byte and the type's fixed width, returning the offset of the first
// byte after it (the start of args).
func SkipChecksum(buf []byte, offset int) (end int, err error) {
	tagByte, err := wire.ReadU8(buf, offset)
	if err != nil {
		return offset, err
	}
	width, err := ChecksumType(tagByte).DigestWidth()
	if err != nil {
		return offset, ccerr.NewInvalidChecksumTypeError(offset, tagByte)
	}
	return offset + 1 + width, nil
}

// DigestFunc recomputes a checksum digest over a canonical argument
// concatenation. The algorithm is an external collaborator (§1, §4.4);
// this codec only knows the type taxonomy and digest widths.
type DigestFunc func(args [][]byte) []byte

// Verify recomputes the digest via compute and compares it to cs.Digest.
// A ChecksumNone checksum always verifies. compute is never called for
// ChecksumNone. m may be nil; a nil m records nothing (metrics.CodecMetrics
// nil-safety, see pkg/metrics).
func (cs Checksum) Verify(args [][]byte, compute DigestFunc, m metrics.CodecMetrics) (bool, error) {
	if cs.Type == ChecksumNone {
		return true, nil
	}
	if compute == nil {
		return false, ccerr.NewChecksumMismatchError(-1)
	}
	want := compute(args)
	ok := bytes.Equal(want, cs.Digest)
	if !ok {
		logger.Debug("checksum mismatch", logger.ChecksumType(cs.Type.String()))
		metrics.RecordChecksumMismatch(m, cs.Type.String())
	}
	return ok, nil
}
