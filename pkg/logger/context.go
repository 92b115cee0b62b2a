package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a single call
// frame's processing, keyed by the wire identifiers it carries rather
// than a filesystem operation's uid/gid.
type LogContext struct {
	TraceID         uint64
	SpanID          uint64
	Service         string
	CallerName      string
	RoutingDelegate string
	StartTime       time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with StartTime set to now.
func NewLogContext() *LogContext {
	return &LogContext{StartTime: time.Now()}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithService returns a copy with the service name set.
func (lc *LogContext) WithService(service string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Service = service
	}
	return clone
}

// WithCaller returns a copy with caller/routing-delegate identity set.
func (lc *LogContext) WithCaller(callerName, routingDelegate string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CallerName = callerName
		clone.RoutingDelegate = routingDelegate
	}
	return clone
}

// WithTrace returns a copy with trace/span ids set.
func (lc *LogContext) WithTrace(traceID, spanID uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
