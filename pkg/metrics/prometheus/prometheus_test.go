package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/pkg/metrics"
)

func TestNewCodecMetrics_RecordsDecodeOutcome(t *testing.T) {
	reg := metrics.InitRegistry()
	t.Cleanup(func() { metrics.InitRegistry() })

	m := metrics.NewCodecMetrics()
	require.NotNil(t, m)

	m.ObserveDecode("call_request", time.Millisecond, true)
	m.RecordChecksumMismatch("crc32")

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "callwire_decode_operations_total" {
			found = true
			require.Len(t, f.Metric, 1)
			require.Equal(t, float64(1), f.Metric[0].GetCounter().GetValue())
		}
	}
	require.True(t, found, "expected callwire_decode_operations_total to be registered")
}
