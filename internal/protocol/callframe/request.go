package callframe

import (
	"unicode/utf8"

	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/ccerr"
)

// CallRequestBody is the fully decoded CallRequest frame body (§3).
//
// Wire layout (§4.6):
//
//	flags:1  ttl:4  tracing:25  service~1  nh:1 (hk~1 hv~1){nh}
//	csumtype:1 (csum:w){0|1}  (arg~2)*
type CallRequestBody struct {
	Flags    uint8
	TTL      uint32
	Tracing  Tracing
	Service  string
	Headers  []Header
	Checksum Checksum
	Args     [][]byte

	// RawService holds the undecoded service bytes when the decoder was
	// run with DecodeOptions.AllowInvalidUTF8 and Service failed UTF-8
	// validation. Service is "" in that case; callers that need a
	// routing key fall back to RawService (§9 Open Question a).
	RawService []byte
}

// DecodeCallRequestBody performs a full structured decode of a
// CallRequest frame body. It fails fast on the first error encountered,
// reporting the byte offset at which it occurred (§7), and commits no
// partial state to the returned body on error.
func DecodeCallRequestBody(buf []byte, opts DecodeOptions) (*CallRequestBody, error) {
	c := wire.NewCursor(buf)

	flags, err := c.ReadU8()
	if err != nil {
		return nil, err
	}

	ttlOffset := c.Pos()
	ttl, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		return nil, ccerr.NewInvalidTTLError(ttlOffset, ttl)
	}

	tracing, err := ReadTracingFrom(c)
	if err != nil {
		return nil, err
	}

	serviceOffset := c.Pos()
	serviceData, err := c.ReadStr1Bytes()
	if err != nil {
		return nil, err
	}
	var service string
	var rawService []byte
	if utf8.Valid(serviceData) {
		service = string(serviceData)
	} else if opts.AllowInvalidUTF8 {
		rawService = append([]byte(nil), serviceData...)
	} else {
		return nil, ccerr.NewInvalidUtf8Error(serviceOffset, "service")
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

	return &CallRequestBody{
		Flags:      flags,
		TTL:        ttl,
		Tracing:    tracing,
		Service:    service,
		RawService: rawService,
		Headers:    headers,
		Checksum:   checksum,
		Args:       args,
	}, nil
}

// ByteLen returns the encoded byte length of b, per §4.6's two-pass
// write ("compute total byte length ... then write"). It must agree with
// len(Encode(b, moreFollow)) for any moreFollow (§8 property 2).
func (b *CallRequestBody) ByteLen() (int, error) {
	csumLen, err := ChecksumLen(b.Checksum.Type)
	if err != nil {
		return 0, err
	}
	service := b.Service
	if len(b.RawService) > 0 {
		service = string(b.RawService)
	}
	n := 1 + 4 + TracingLen + wire.Str1Len(service) + HeaderListLen(b.Headers) + csumLen + ArgsLen(b.Args)
	return n, nil
}

// Encode performs the two-pass structured write described in §4.6: it
// writes ttl, tracing, service, and headers, reserves the flags byte,
// writes checksum and args (which may report the fragment bit), and
// finally backpatches the flags byte in place. moreFollow is forwarded
// to WriteArgsInto (§4.5) to signal whether more continuation bodies
// carry the rest of a fragmented logical call.
//
// Encode fails with InvalidTTL if b.TTL == 0, before writing anything.
func (b *CallRequestBody) Encode(moreFollow bool) ([]byte, error) {
	if b.TTL == 0 {
		return nil, ccerr.NewInvalidTTLError(0, b.TTL)
	}

	total, err := b.ByteLen()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 1, total)
	// buf[0] is the reserved flags byte, backpatched below.

	buf = wire.WriteU32(buf, b.TTL)
	buf = b.Tracing.WriteInto(buf)

	service := b.Service
	if len(b.RawService) > 0 {
		service = string(b.RawService)
	}
	if buf, err = wire.WriteStr1(buf, service); err != nil {
		return nil, err
	}
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
