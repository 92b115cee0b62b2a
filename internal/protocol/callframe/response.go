package callframe

import (
	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/ccerr"
)

// ResponseCode is the CallResponse's 1-byte status code. Unknown codes
// are accepted and passed through (§6).
type ResponseCode uint8

const (
	// ResponseOK indicates success.
	ResponseOK ResponseCode = 0x00
	// ResponseError indicates failure.
	ResponseError ResponseCode = 0x01
)

// CallResponseBody is the fully decoded CallResponse frame body (§3, §4.7).
//
// Wire layout:
//
//	flags:1  code:1  tracing:25  nh:1 (hk~1 hv~1){nh}
//	csumtype:1 (csum:w){0|1}  (arg~2)*
type CallResponseBody struct {
	Flags    uint8
	Code     ResponseCode
	Tracing  Tracing
	Headers  []Header
	Checksum Checksum
	Args     [][]byte
}

// DecodeCallResponseBody performs a full structured decode of a
// CallResponse frame body, mirroring DecodeCallRequestBody minus the
// ttl/service fields (§4.7).
func DecodeCallResponseBody(buf []byte) (*CallResponseBody, error) {
	c := wire.NewCursor(buf)

	flags, err := c.ReadU8()
	if err != nil {
		return nil, err
	}

	codeByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}

	tracing, err := ReadTracingFrom(c)
	if err != nil {
		return nil, err
	}

	headers, err := ReadHeadersFrom(c)
	if err != nil {
		return nil, err
	}

	checksum, err := ReadChecksumFrom(c)
	if err != nil {
		return nil, err
	}

	args, err := ReadArgsFrom(c)
	if err != nil {
		return nil, err
	}

	if c.Remaining() != 0 {
		return nil, ccerr.NewTrailingBytesError(c.Pos(), c.Remaining())
	}

	return &CallResponseBody{
		Flags:    flags,
		Code:     ResponseCode(codeByte),
		Tracing:  tracing,
		Headers:  headers,
		Checksum: checksum,
		Args:     args,
	}, nil
}

// ByteLen returns the encoded byte length of b (§8 property 2).
func (b *CallResponseBody) ByteLen() (int, error) {
	csumLen, err := ChecksumLen(b.Checksum.Type)
	if err != nil {
		return 0, err
	}
	n := 1 + 1 + TracingLen + HeaderListLen(b.Headers) + csumLen + ArgsLen(b.Args)
	return n, nil
}

// Encode mirrors CallRequestBody.Encode minus ttl/service (§4.7).
func (b *CallResponseBody) Encode(moreFollow bool) ([]byte, error) {
	total, err := b.ByteLen()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 1, total)
	// buf[0] is the reserved flags byte, backpatched below.

	buf = wire.WriteU8(buf, uint8(b.Code))
	buf = b.Tracing.WriteInto(buf)

	if buf, err = WriteHeadersInto(buf, b.Headers); err != nil {
		return nil, err
	}
	if buf, err = WriteChecksumInto(buf, b.Checksum); err != nil {
		return nil, err
	}

	var fragment bool
	if buf, fragment, err = WriteArgsInto(buf, b.Args, moreFollow); err != nil {
		return nil, err
	}

	flags := b.Flags &^ FlagFragment
	if fragment {
		flags |= FlagFragment
	}
	buf[0] = flags

	return buf, nil
}
