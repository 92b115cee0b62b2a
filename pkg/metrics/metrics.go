// Package metrics defines the CodecMetrics interface callwire's codec,
// rate limiter, and dispatch worker pool report through, and a registry
// enable/disable switch mirroring the teacher's IsEnabled/InitRegistry
// pattern.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CodecMetrics is the observation surface callwire's decode/encode path,
// offset cache, and rate limiter report through. A nil CodecMetrics means
// metrics are disabled; the package-level helpers below (ObserveDecode,
// RecordCacheAccess, ...) check for nil so callers don't need to branch
// on whether metrics are enabled.
type CodecMetrics interface {
	// ObserveDecode records a structured decode attempt for a frame kind
	// ("call_request" or "call_response") and whether it succeeded.
	ObserveDecode(frameKind string, duration time.Duration, ok bool)

	// ObserveEncode records a structured encode attempt.
	ObserveEncode(frameKind string, duration time.Duration, ok bool)

	// RecordCacheAccess records an OffsetCache field access, hit or miss,
	// counted per field so a hit ratio can be derived (§4.8).
	RecordCacheAccess(field string, hit bool)

	// RecordChecksumMismatch records a failed Checksum.Verify call for
	// the named checksum type.
	RecordChecksumMismatch(checksumType string)

	// RecordThrottle records the rate limiter denying a (caller, callee)
	// pair a call (§6, §9).
	RecordThrottle(caller, callee string)
}

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool

	newCodecMetrics func(*prometheus.Registry) CodecMetrics
)

// InitRegistry enables metrics collection against a fresh Prometheus
// registry and returns it, e.g. for exposing via promhttp.Handler.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// RegisterCodecMetricsConstructor registers the Prometheus-backed
// CodecMetrics constructor. Called by pkg/metrics/prometheus's package
// init to avoid metrics depending on its own concrete implementation
// package (breaking the import cycle the teacher's cache/nfs metrics
// registration pattern exists to avoid).
func RegisterCodecMetricsConstructor(constructor func(*prometheus.Registry) CodecMetrics) {
	newCodecMetrics = constructor
}

// NewCodecMetrics returns a CodecMetrics backed by the active registry,
// or nil if metrics are disabled (zero overhead for callers that pass
// the nil result straight back into the codec's observation calls).
func NewCodecMetrics() CodecMetrics {
	if !IsEnabled() || newCodecMetrics == nil {
		return nil
	}
	return newCodecMetrics(GetRegistry())
}

// ObserveDecode is a nil-safe helper mirroring the teacher's
// package-level Observe* wrapper functions.
func ObserveDecode(m CodecMetrics, frameKind string, duration time.Duration, ok bool) {
	if m != nil {
		m.ObserveDecode(frameKind, duration, ok)
	}
}

// ObserveEncode is a nil-safe helper.
func ObserveEncode(m CodecMetrics, frameKind string, duration time.Duration, ok bool) {
	if m != nil {
		m.ObserveEncode(frameKind, duration, ok)
	}
}

// RecordCacheAccess is a nil-safe helper.
func RecordCacheAccess(m CodecMetrics, field string, hit bool) {
	if m != nil {
		m.RecordCacheAccess(field, hit)
	}
}

// RecordChecksumMismatch is a nil-safe helper.
func RecordChecksumMismatch(m CodecMetrics, checksumType string) {
	if m != nil {
		m.RecordChecksumMismatch(checksumType)
	}
}

// RecordThrottle is a nil-safe helper.
func RecordThrottle(m CodecMetrics, caller, callee string) {
	if m != nil {
		m.RecordThrottle(caller, callee)
	}
}
