// Package prometheus is the concrete Prometheus implementation of
// pkg/metrics.CodecMetrics, registered against the active registry via
// promauto the way the teacher's pkg/metrics/prometheus package does for
// cache and storage metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coreframe/callwire/pkg/metrics"
)

func init() {
	metrics.RegisterCodecMetricsConstructor(newCodecMetrics)
}

type codecMetrics struct {
	decodeOperations *prometheus.CounterVec
	decodeDuration   *prometheus.HistogramVec
	encodeOperations *prometheus.CounterVec
	encodeDuration   *prometheus.HistogramVec
	cacheAccesses    *prometheus.CounterVec
	checksumFailures *prometheus.CounterVec
	throttles        *prometheus.CounterVec
}

func newCodecMetrics(reg *prometheus.Registry) metrics.CodecMetrics {
	return &codecMetrics{
		decodeOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwire_decode_operations_total",
				Help: "Total structured decode attempts by frame kind and outcome.",
			},
			[]string{"frame_kind", "status"}, // status: ok, error
		),
		decodeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callwire_decode_duration_milliseconds",
				Help:    "Duration of structured decode calls in milliseconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
			},
			[]string{"frame_kind"},
		),
		encodeOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwire_encode_operations_total",
				Help: "Total structured encode attempts by frame kind and outcome.",
			},
			[]string{"frame_kind", "status"},
		),
		encodeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callwire_encode_duration_milliseconds",
				Help:    "Duration of structured encode calls in milliseconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
			},
			[]string{"frame_kind"},
		),
		cacheAccesses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwire_offset_cache_accesses_total",
				Help: "OffsetCache field accesses by field and hit/miss, for the cache hit ratio (§4.8).",
			},
			[]string{"field", "result"}, // result: hit, miss
		),
		checksumFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwire_checksum_mismatches_total",
				Help: "Checksum.Verify failures by checksum type.",
			},
			[]string{"checksum_type"},
		),
		throttles: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwire_rate_limit_throttles_total",
				Help: "Calls denied by the rate limiter, by caller and callee.",
			},
			[]string{"caller", "callee"},
		),
	}
}

func (m *codecMetrics) ObserveDecode(frameKind string, duration time.Duration, ok bool) {
	m.decodeOperations.WithLabelValues(frameKind, statusLabel(ok)).Inc()
	m.decodeDuration.WithLabelValues(frameKind).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *codecMetrics) ObserveEncode(frameKind string, duration time.Duration, ok bool) {
	m.encodeOperations.WithLabelValues(frameKind, statusLabel(ok)).Inc()
	m.encodeDuration.WithLabelValues(frameKind).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *codecMetrics) RecordCacheAccess(field string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheAccesses.WithLabelValues(field, result).Inc()
}

func (m *codecMetrics) RecordChecksumMismatch(checksumType string) {
	m.checksumFailures.WithLabelValues(checksumType).Inc()
}

func (m *codecMetrics) RecordThrottle(caller, callee string) {
	m.throttles.WithLabelValues(caller, callee).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
