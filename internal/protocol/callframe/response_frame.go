package callframe

import (
	"unicode/utf8"

	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/metrics"
)

// Response frame field offsets, fixed by the wire layout (§4.7):
//
//	flags:1  code:1  tracing:25  nh:1 ...
const (
	responseFlagsOffset   = 0
	responseCodeOffset    = responseFlagsOffset + 1
	responseTracingOffset = responseCodeOffset + 1
	responseHeaderStart   = responseTracingOffset + TracingLen
)

// ResponseFrame is a lazy reader over an already-received CallResponse
// frame body, mirroring RequestFrame minus the ttl/service fields (§4.7).
// Its header list always starts at the fixed responseHeaderStart offset,
// so unlike RequestFrame it needs no cached headerStart.
type ResponseFrame struct {
	buf   []byte
	size  int
	cache *OffsetCache
}

// NewResponseFrame wraps buf (whose valid prefix is the first size
// bytes) with a fresh offset cache. size <= 0 defaults to len(buf).
func NewResponseFrame(buf []byte, size int) *ResponseFrame {
	if size <= 0 || size > len(buf) {
		size = len(buf)
	}
	return &ResponseFrame{buf: buf, size: size, cache: NewOffsetCache()}
}

// Cache exposes the frame's offset cache, e.g. for inspecting LastError.
func (f *ResponseFrame) Cache() *OffsetCache { return f.cache }

// SetMetrics attaches a CodecMetrics sink that the frame's lazy accessors
// report cache hits/misses through. m may be nil.
func (f *ResponseFrame) SetMetrics(m metrics.CodecMetrics) {
	f.cache.SetMetrics(m)
}

// Release drops the frame's reference to its backing buffer (§12
// SUPPLEMENTED FEATURES).
func (f *ResponseFrame) Release() {
	f.buf = nil
	f.size = 0
}

func (f *ResponseFrame) body() []byte {
	return f.buf[:f.size]
}

// ReadFlags returns the frame's flags byte.
func (f *ResponseFrame) ReadFlags() (uint8, error) {
	return wire.ReadU8(f.body(), responseFlagsOffset)
}

// ReadCode returns the response status code.
func (f *ResponseFrame) ReadCode() (ResponseCode, error) {
	v, err := wire.ReadU8(f.body(), responseCodeOffset)
	return ResponseCode(v), err
}

// ReadTracing returns the raw 25-byte tracing record.
func (f *ResponseFrame) ReadTracing() (Tracing, error) {
	if f.cache.tracingValue != nil {
		f.cache.recordAccess("tracing", true)
		return *f.cache.tracingValue, nil
	}
	f.cache.recordAccess("tracing", false)
	t, err := PeekTracing(f.body(), responseTracingOffset)
	if err != nil {
		f.cache.setError(err)
		return Tracing{}, err
	}
	f.cache.tracingValue = &t
	return t, nil
}

// ReadHeaders lazily iterates the header list, returning each entry in
// wire order (§4.7).
func (f *ResponseFrame) ReadHeaders() ([]HeaderEntry, error) {
	entries, _, err := ReadHeadersAt(f.body(), responseHeaderStart)
	if err != nil {
		f.cache.setError(err)
		return nil, err
	}
	return entries, nil
}

// DecodeHeaderEntry decodes one HeaderEntry's key and value as UTF-8
// strings.
func (f *ResponseFrame) DecodeHeaderEntry(e HeaderEntry) (key, value string, err error) {
	key, _, err = wire.ReadStr1(f.body(), e.KeyOffset)
	if err != nil {
		return "", "", err
	}
	value, _, err = wire.ReadStr1(f.body(), e.ValueOffset)
	if err != nil {
		return "", "", err
	}
	return key, value, nil
}

// ensureArgsStart computes and caches the offset of the first byte
// after the header list and checksum, i.e. the start of args.
func (f *ResponseFrame) ensureArgsStart() (int, error) {
	if f.cache.csumStart != nil {
		f.cache.recordAccess("args_start", true)
		return *f.cache.csumStart, nil
	}
	f.cache.recordAccess("args_start", false)
	_, headerEnd, err := ReadHeadersAt(f.body(), responseHeaderStart)
	if err != nil {
		f.cache.setError(err)
		return 0, err
	}
	argsStart, err := SkipChecksum(f.body(), headerEnd)
	if err != nil {
		f.cache.setError(err)
		return 0, err
	}
	f.cache.csumStart = &argsStart
	return argsStart, nil
}

// ReadArg1 decodes the first arg as UTF-8, skipping headers and checksum.
// First call is O(nh); later calls are O(1) (§4.7).
func (f *ResponseFrame) ReadArg1() (string, FieldStatus) {
	if f.cache.arg1Str != nil {
		f.cache.recordAccess("arg1", true)
		return f.cache.arg1Str.value, f.cache.arg1Str.status
	}
	f.cache.recordAccess("arg1", false)
	argsStart, err := f.ensureArgsStart()
	if err != nil {
		f.cache.arg1Str = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	if argsStart >= f.size {
		f.cache.arg1Str = &stringResult{status: StatusAbsent}
		return "", StatusAbsent
	}
	data, _, err := wire.ReadArg2(f.body(), argsStart)
	if err != nil {
		f.cache.setError(err)
		f.cache.arg1Str = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	if !utf8.Valid(data) {
		f.cache.setError(errInvalidUtf8("arg1"))
		f.cache.arg1Str = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	s := string(data)
	f.cache.arg1Str = &stringResult{status: StatusOK, value: s}
	return s, StatusOK
}

// IsFrameTerminal reports whether this is the last body of its logical
// call, i.e. the Fragment bit is clear (§4.7).
func (f *ResponseFrame) IsFrameTerminal() (bool, error) {
	flags, err := f.ReadFlags()
	if err != nil {
		return false, err
	}
	return flags&FlagFragment == 0, nil
}
