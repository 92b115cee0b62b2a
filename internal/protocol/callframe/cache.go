package callframe

import (
	"github.com/coreframe/callwire/pkg/logger"
	"github.com/coreframe/callwire/pkg/metrics"
)

// FieldStatus distinguishes the three states a lazy accessor can settle
// on: a real value, a well-formed-but-absent field (e.g. no "cn"
// header), or a field that could not be determined because the frame was
// truncated or malformed partway through the read (§4.6 edge cases).
type FieldStatus int

const (
	// StatusOK means Value holds the field's decoded value.
	StatusOK FieldStatus = iota
	// StatusAbsent means the field is well-formed but not present.
	StatusAbsent
	// StatusUnavailable means the read failed; OffsetCache.LastError
	// records why.
	StatusUnavailable
)

// String returns a human-readable name for the status.
func (s FieldStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAbsent:
		return "absent"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// stringResult is a cached outcome of a lazy string accessor: computed
// once, never rewritten (§3 OffsetCache invariant: "once a cache slot is
// set it is never rewritten").
type stringResult struct {
	status FieldStatus
	value  string
}

// OffsetCache is the per-frame scratch pad of computed byte offsets and
// previously decoded strings described in spec.md §3/§4.8. Every slot
// starts nil/zero ("not yet computed") and is written at most once. It is
// not safe for concurrent mutation: §5 guarantees a frame is processed by
// exactly one worker at a time, so no synchronization is needed here.
type OffsetCache struct {
	ttlValue      *uint32
	tracingValue  *Tracing
	serviceStr    *stringResult
	callerName    *stringResult
	routingDeleg  *stringResult
	arg1Str       *stringResult
	headerStart   *int
	csumStart     *int
	cnValueOffset *int
	rdValueOffset *int
	lastError     string
	metrics       metrics.CodecMetrics
}

// NewOffsetCache returns an empty cache with every slot unset.
func NewOffsetCache() *OffsetCache {
	return &OffsetCache{}
}

// SetMetrics attaches a CodecMetrics sink that subsequent lazy-accessor
// calls report hit/miss through. m may be nil (metrics disabled), in
// which case recordAccess is a no-op (see pkg/metrics nil-safety).
func (c *OffsetCache) SetMetrics(m metrics.CodecMetrics) {
	c.metrics = m
}

// recordAccess reports a lazy-accessor cache hit or miss for field
// (§4.8 "lazy-accessor cache-hit ratio").
func (c *OffsetCache) recordAccess(field string, hit bool) {
	metrics.RecordCacheAccess(c.metrics, field, hit)
}

// LastError returns the most recent reason a lazy read gave up, or "" if
// none has occurred yet.
func (c *OffsetCache) LastError() string {
	return c.lastError
}

func (c *OffsetCache) setError(err error) {
	if err != nil {
		c.lastError = err.Error()
		logger.Debug("lazy scan failed", logger.Err(err))
	}
}
