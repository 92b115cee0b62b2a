package callframe

import (
	"unicode/utf8"

	"github.com/coreframe/callwire/internal/protocol/wire"
	"github.com/coreframe/callwire/pkg/metrics"
)

// Request frame field offsets, fixed by the wire layout (§4.6):
//
//	flags:1  ttl:4  tracing:25  service~1  ...
const (
	requestFlagsOffset   = 0
	requestTTLOffset     = requestFlagsOffset + 1
	requestTracingOffset = requestTTLOffset + 4
	requestServiceOffset = requestTracingOffset + TracingLen
)

// RequestFrame is a lazy reader over an already-received CallRequest
// frame body: it extracts individual fields directly from the buffer on
// demand, memoizing computed offsets in an OffsetCache so repeated
// accesses are O(1) (§4.6, §4.8).
//
// A RequestFrame does not own buf; callers must not retain a RequestFrame
// (or any string it returned a zero-copy view of) past the buffer's
// lifetime (§5).
type RequestFrame struct {
	buf   []byte
	size  int
	cache *OffsetCache
}

// NewRequestFrame wraps buf (whose valid prefix is the first size bytes)
// with a fresh offset cache, as the framing layer does on ingest (§2).
// size <= 0 defaults to len(buf).
func NewRequestFrame(buf []byte, size int) *RequestFrame {
	if size <= 0 || size > len(buf) {
		size = len(buf)
	}
	return &RequestFrame{buf: buf, size: size, cache: NewOffsetCache()}
}

// Cache exposes the frame's offset cache, e.g. for inspecting LastError.
func (f *RequestFrame) Cache() *OffsetCache { return f.cache }

// SetMetrics attaches a CodecMetrics sink that the frame's lazy accessors
// report cache hits/misses through. m may be nil.
func (f *RequestFrame) SetMetrics(m metrics.CodecMetrics) {
	f.cache.SetMetrics(m)
}

// Release drops the frame's reference to its backing buffer. A framing
// layer that pools frame buffers should call this once the frame is no
// longer in flight, after which the RequestFrame must not be used (§5,
// §12 SUPPLEMENTED FEATURES).
func (f *RequestFrame) Release() {
	f.buf = nil
	f.size = 0
}

func (f *RequestFrame) body() []byte {
	return f.buf[:f.size]
}

// ReadFlags returns the frame's flags byte.
func (f *RequestFrame) ReadFlags() (uint8, error) {
	return wire.ReadU8(f.body(), requestFlagsOffset)
}

// ReadTTL returns the raw ttl field, cached after the first call.
func (f *RequestFrame) ReadTTL() (uint32, error) {
	if f.cache.ttlValue != nil {
		f.cache.recordAccess("ttl", true)
		return *f.cache.ttlValue, nil
	}
	f.cache.recordAccess("ttl", false)
	v, err := wire.ReadU32(f.body(), requestTTLOffset)
	if err != nil {
		f.cache.setError(err)
		return 0, err
	}
	f.cache.ttlValue = &v
	return v, nil
}

// ReadTracing returns the raw 25-byte tracing record.
func (f *RequestFrame) ReadTracing() (Tracing, error) {
	return PeekTracing(f.body(), requestTracingOffset)
}

// ReadTracingValue returns the decoded tracing record, cached after the
// first call.
func (f *RequestFrame) ReadTracingValue() (Tracing, error) {
	if f.cache.tracingValue != nil {
		f.cache.recordAccess("tracing", true)
		return *f.cache.tracingValue, nil
	}
	f.cache.recordAccess("tracing", false)
	t, err := PeekTracing(f.body(), requestTracingOffset)
	if err != nil {
		f.cache.setError(err)
		return Tracing{}, err
	}
	f.cache.tracingValue = &t
	return t, nil
}

// ReadService returns the service field's raw bytes.
func (f *RequestFrame) ReadService() ([]byte, error) {
	data, _, err := wire.ReadStr1Bytes(f.body(), requestServiceOffset)
	return data, err
}

// ReadServiceStr returns the service field UTF-8 decoded, cached after
// the first call. A service length byte of 0 yields "" as a valid
// result, not an error (§4.6).
func (f *RequestFrame) ReadServiceStr() (string, error) {
	if f.cache.serviceStr != nil {
		f.cache.recordAccess("service", true)
		if f.cache.serviceStr.status == StatusOK {
			return f.cache.serviceStr.value, nil
		}
		return "", requestLastErrorAsError(f.cache)
	}
	f.cache.recordAccess("service", false)
	s, _, err := wire.ReadStr1(f.body(), requestServiceOffset)
	if err != nil {
		f.cache.setError(err)
		f.cache.serviceStr = &stringResult{status: StatusUnavailable}
		return "", err
	}
	f.cache.serviceStr = &stringResult{status: StatusOK, value: s}
	return s, nil
}

// headerStartOffset returns the offset of the header list's nh byte,
// computed once from the service field's length and cached thereafter
// (§4.8 headerStartOffset).
func (f *RequestFrame) headerStartOffset() (int, error) {
	if f.cache.headerStart != nil {
		return *f.cache.headerStart, nil
	}
	end, err := wire.SkipStr1(f.body(), requestServiceOffset)
	if err != nil {
		f.cache.setError(err)
		return 0, err
	}
	f.cache.headerStart = &end
	return end, nil
}

// ReadHeaders lazily iterates the header list after the service field,
// returning each entry in wire order. Decoding each entry's key/value
// strings is left to the caller via DecodeHeaderEntry, so a caller that
// only needs a count or a scan over keys pays no string-allocation cost
// it didn't ask for.
func (f *RequestFrame) ReadHeaders() ([]HeaderEntry, error) {
	start, err := f.headerStartOffset()
	if err != nil {
		return nil, err
	}
	entries, _, err := ReadHeadersAt(f.body(), start)
	if err != nil {
		f.cache.setError(err)
		return nil, err
	}
	return entries, nil
}

// DecodeHeaderEntry decodes one HeaderEntry's key and value as UTF-8
// strings.
func (f *RequestFrame) DecodeHeaderEntry(e HeaderEntry) (key, value string, err error) {
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

// ensureFastPathScan runs the n-way cn/rd scan at most once per frame,
// populating cnValueOffset, rdValueOffset, and csumStart together (§4.6:
// "When a scan completes it populates ... simultaneously").
func (f *RequestFrame) ensureFastPathScan() error {
	if f.cache.cnValueOffset != nil && f.cache.rdValueOffset != nil && f.cache.csumStart != nil {
		return nil
	}
	start, err := f.headerStartOffset()
	if err != nil {
		return err
	}
	values, csumStart, err := ScanFastPathHeaders(f.body(), start)
	if err != nil {
		f.cache.setError(err)
		return err
	}
	cn := values[SlotCallerName]
	rd := values[SlotRoutingDelegate]
	f.cache.cnValueOffset = &cn
	f.cache.rdValueOffset = &rd
	f.cache.csumStart = &csumStart
	return nil
}

// ReadCallerNameStr scans headers for the first "cn" entry and returns
// its value. First call is O(nh); later calls are O(1) (§4.6).
func (f *RequestFrame) ReadCallerNameStr() (string, FieldStatus) {
	return f.fastPathString(&f.cache.callerName, func() *int { return f.cache.cnValueOffset })
}

// ReadRoutingDelegateStr scans headers for the first "rd" entry and
// returns its value. First call is O(nh); later calls are O(1) (§4.6).
func (f *RequestFrame) ReadRoutingDelegateStr() (string, FieldStatus) {
	return f.fastPathString(&f.cache.routingDeleg, func() *int { return f.cache.rdValueOffset })
}

func (f *RequestFrame) fastPathString(slot **stringResult, offsetOf func() *int) (string, FieldStatus) {
	if *slot != nil {
		f.cache.recordAccess("fastpath", true)
		return (*slot).value, (*slot).status
	}
	f.cache.recordAccess("fastpath", false)
	if err := f.ensureFastPathScan(); err != nil {
		*slot = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	off := *offsetOf()
	if off == noOffset {
		*slot = &stringResult{status: StatusAbsent}
		return "", StatusAbsent
	}
	s, _, err := wire.ReadStr1(f.body(), off)
	if err != nil {
		f.cache.setError(err)
		*slot = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	*slot = &stringResult{status: StatusOK, value: s}
	return s, StatusOK
}

// ReadArg1Str skips headers and the checksum, then decodes the first arg
// as UTF-8. First call is O(nh); later calls are O(1) (§4.6).
func (f *RequestFrame) ReadArg1Str() (string, FieldStatus) {
	if f.cache.arg1Str != nil {
		f.cache.recordAccess("arg1", true)
		return f.cache.arg1Str.value, f.cache.arg1Str.status
	}
	f.cache.recordAccess("arg1", false)
	if err := f.ensureFastPathScan(); err != nil {
		f.cache.arg1Str = &stringResult{status: StatusUnavailable}
		return "", StatusUnavailable
	}
	argsStart, err := SkipChecksum(f.body(), *f.cache.csumStart)
	if err != nil {
		f.cache.setError(err)
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
// call, i.e. the Fragment bit is clear (§4.6).
func (f *RequestFrame) IsFrameTerminal() (bool, error) {
	flags, err := f.ReadFlags()
	if err != nil {
		return false, err
	}
	return flags&FlagFragment == 0, nil
}

func requestLastErrorAsError(c *OffsetCache) error {
	return errUnavailable(c.LastError())
}
