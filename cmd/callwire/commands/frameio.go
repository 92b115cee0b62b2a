package commands

import (
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/coreframe/callwire/internal/protocol/callframe"
)

// requestJSON is the on-disk JSON shape accepted by `encode --kind
// request` and produced by `decode --kind request`. It mirrors
// callframe.CallRequestBody with friendlier field names and a named
// checksum type instead of a raw tag byte.
type requestJSON struct {
	Flags         uint8        `json:"flags"`
	TTL           uint32       `json:"ttl"`
	Tracing       tracingJSON  `json:"tracing"`
	Service       string       `json:"service"`
	Headers       []headerJSON `json:"headers"`
	ChecksumType  string       `json:"checksum_type"`
	Checksum      []byte       `json:"checksum,omitempty"`
	ChecksumValid *bool        `json:"checksum_valid,omitempty"`
	Args          []string     `json:"args"`
}

type responseJSON struct {
	Flags         uint8        `json:"flags"`
	Code          uint8        `json:"code"`
	Tracing       tracingJSON  `json:"tracing"`
	Headers       []headerJSON `json:"headers"`
	ChecksumType  string       `json:"checksum_type"`
	Checksum      []byte       `json:"checksum,omitempty"`
	ChecksumValid *bool        `json:"checksum_valid,omitempty"`
	Args          []string     `json:"args"`
}

type tracingJSON struct {
	SpanID   uint64 `json:"span_id"`
	ParentID uint64 `json:"parent_id"`
	TraceID  uint64 `json:"trace_id"`
	Flags    uint8  `json:"flags"`
}

type headerJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var checksumTypeByName = map[string]callframe.ChecksumType{
	"None":     callframe.ChecksumNone,
	"CRC32":    callframe.ChecksumCRC32,
	"Farmhash": callframe.ChecksumFarmhash,
	"CRC32C":   callframe.ChecksumCRC32C,
}

func parseChecksumType(name string) (callframe.ChecksumType, error) {
	if name == "" {
		return callframe.ChecksumNone, nil
	}
	t, ok := checksumTypeByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown checksum type %q", name)
	}
	return t, nil
}

// digestFuncFor returns the stdlib hash/crc32 algorithm for t, or nil if
// no library in go.mod implements t's digest (ChecksumFarmhash).
func digestFuncFor(t callframe.ChecksumType) callframe.DigestFunc {
	switch t {
	case callframe.ChecksumCRC32:
		return func(args [][]byte) []byte {
			h := crc32.NewIEEE()
			for _, a := range args {
				h.Write(a)
			}
			return crc32BigEndian(h.Sum32())
		}
	case callframe.ChecksumCRC32C:
		table := crc32.MakeTable(crc32.Castagnoli)
		return func(args [][]byte) []byte {
			h := crc32.New(table)
			for _, a := range args {
				h.Write(a)
			}
			return crc32BigEndian(h.Sum32())
		}
	default:
		return nil
	}
}

func crc32BigEndian(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// verifyChecksum recomputes cs's digest from args and reports whether it
// matches. Returns nil (no verdict) for ChecksumNone and for any type
// digestFuncFor has no algorithm for.
func verifyChecksum(cs callframe.Checksum, args [][]byte) *bool {
	if cs.Type == callframe.ChecksumNone {
		return nil
	}
	compute := digestFuncFor(cs.Type)
	if compute == nil {
		return nil
	}
	ok, err := cs.Verify(args, compute, nil)
	if err != nil {
		return nil
	}
	return &ok
}

func argsFromStrings(in []string) [][]byte {
	out := make([][]byte, len(in))
	for i, s := range in {
		out[i] = []byte(s)
	}
	return out
}

func argsToStrings(in [][]byte) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = string(a)
	}
	return out
}

func headersFromJSON(in []headerJSON) []callframe.Header {
	out := make([]callframe.Header, len(in))
	for i, h := range in {
		out[i] = callframe.Header{Key: h.Key, Value: h.Value}
	}
	return out
}

func headersToJSON(in []callframe.Header) []headerJSON {
	out := make([]headerJSON, len(in))
	for i, h := range in {
		out[i] = headerJSON{Key: h.Key, Value: h.Value}
	}
	return out
}

func (r requestJSON) toBody() (*callframe.CallRequestBody, error) {
	csumType, err := parseChecksumType(r.ChecksumType)
	if err != nil {
		return nil, err
	}
	return &callframe.CallRequestBody{
		Flags:   r.Flags,
		TTL:     r.TTL,
		Tracing: callframe.Tracing(r.Tracing),
		Service: r.Service,
		Headers: headersFromJSON(r.Headers),
		Checksum: callframe.Checksum{
			Type:   csumType,
			Digest: r.Checksum,
		},
		Args: argsFromStrings(r.Args),
	}, nil
}

func requestFromBody(b *callframe.CallRequestBody) requestJSON {
	return requestJSON{
		Flags:         b.Flags,
		TTL:           b.TTL,
		Tracing:       tracingJSON(b.Tracing),
		Service:       b.Service,
		Headers:       headersToJSON(b.Headers),
		ChecksumType:  b.Checksum.Type.String(),
		Checksum:      b.Checksum.Digest,
		ChecksumValid: verifyChecksum(b.Checksum, b.Args),
		Args:          argsToStrings(b.Args),
	}
}

func (r responseJSON) toBody() (*callframe.CallResponseBody, error) {
	csumType, err := parseChecksumType(r.ChecksumType)
	if err != nil {
		return nil, err
	}
	return &callframe.CallResponseBody{
		Flags:   r.Flags,
		Code:    callframe.ResponseCode(r.Code),
		Tracing: callframe.Tracing(r.Tracing),
		Headers: headersFromJSON(r.Headers),
		Checksum: callframe.Checksum{
			Type:   csumType,
			Digest: r.Checksum,
		},
		Args: argsFromStrings(r.Args),
	}, nil
}

func responseFromBody(b *callframe.CallResponseBody) responseJSON {
	return responseJSON{
		Flags:         b.Flags,
		Code:          uint8(b.Code),
		Tracing:       tracingJSON(b.Tracing),
		Headers:       headersToJSON(b.Headers),
		ChecksumType:  b.Checksum.Type.String(),
		Checksum:      b.Checksum.Digest,
		ChecksumValid: verifyChecksum(b.Checksum, b.Args),
		Args:          argsToStrings(b.Args),
	}
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
