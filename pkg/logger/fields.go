package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently
// across log statements for aggregation and querying.
const (
	// Distributed tracing (§4.2 Tracing record).
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"
	KeyParentID = "parent_id"

	// Call identity (§4.6, §4.7).
	KeyService         = "service"
	KeyCallerName      = "caller_name"
	KeyRoutingDelegate = "routing_delegate"
	KeyArg1            = "arg1"
	KeyFrameKind       = "frame_kind" // call_request, call_response

	// Wire-level metadata.
	KeyTTL          = "ttl"
	KeyFlags        = "flags"
	KeyFragment     = "fragment"
	KeyResponseCode = "response_code"
	KeyChecksumType = "checksum_type"
	KeyHeaderCount  = "header_count"
	KeyFrameSize    = "frame_size"
	KeyOffset       = "offset"

	// Operation metadata.
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"

	// Cache layer.
	KeyCacheHit = "cache_hit"

	// Rate limiting (§6, §9).
	KeyTokensRemaining = "tokens_remaining"
)

// TraceID returns a slog.Attr for the trace id.
func TraceID(id uint64) slog.Attr { return slog.Uint64(KeyTraceID, id) }

// SpanID returns a slog.Attr for the span id.
func SpanID(id uint64) slog.Attr { return slog.Uint64(KeySpanID, id) }

// Service returns a slog.Attr for the service name.
func Service(name string) slog.Attr { return slog.String(KeyService, name) }

// CallerName returns a slog.Attr for the caller's identity.
func CallerName(name string) slog.Attr { return slog.String(KeyCallerName, name) }

// RoutingDelegate returns a slog.Attr for the routing delegate override.
func RoutingDelegate(name string) slog.Attr { return slog.String(KeyRoutingDelegate, name) }

// FrameKind returns a slog.Attr identifying the frame body type.
func FrameKind(kind string) slog.Attr { return slog.String(KeyFrameKind, kind) }

// TTL returns a slog.Attr for the ttl field.
func TTL(ttl uint32) slog.Attr { return slog.Any(KeyTTL, ttl) }

// Flags returns a slog.Attr for the raw flags byte.
func Flags(flags uint8) slog.Attr { return slog.Any(KeyFlags, flags) }

// Fragment returns a slog.Attr for the fragment bit.
func Fragment(set bool) slog.Attr { return slog.Bool(KeyFragment, set) }

// ResponseCode returns a slog.Attr for a CallResponse status code.
func ResponseCode(code uint8) slog.Attr { return slog.Any(KeyResponseCode, code) }

// ChecksumType returns a slog.Attr for a checksum type tag.
func ChecksumType(name string) slog.Attr { return slog.String(KeyChecksumType, name) }

// HeaderCount returns a slog.Attr for the number of header entries.
func HeaderCount(n int) slog.Attr { return slog.Int(KeyHeaderCount, n) }

// FrameSize returns a slog.Attr for a frame body's byte length.
func FrameSize(n int) slog.Attr { return slog.Int(KeyFrameSize, n) }

// Offset returns a slog.Attr for a byte offset within a frame.
func Offset(off int) slog.Attr { return slog.Int(KeyOffset, off) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric/named error code.
func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

// CacheHit returns a slog.Attr for a cache hit indicator.
func CacheHit(hit bool) slog.Attr { return slog.Bool(KeyCacheHit, hit) }

// TokensRemaining returns a slog.Attr for a rate limiter's remaining tokens.
func TokensRemaining(n int64) slog.Attr { return slog.Int64(KeyTokensRemaining, n) }
