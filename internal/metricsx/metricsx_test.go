package metricsx_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/metricsx"
)

func TestMetricsRecordObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metricsx.NewWithRegisterer(reg)

	m.BytesProcessedTotal.WithLabelValues("encrypt").Add(128)
	m.FilesTotal.WithLabelValues("encrypt", "done").Inc()
	m.IntegrityFailures.WithLabelValues("malformed_block").Inc()

	require.Equal(t, float64(128), testutil.ToFloat64(m.BytesProcessedTotal.WithLabelValues("encrypt")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.FilesTotal.WithLabelValues("encrypt", "done")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.IntegrityFailures.WithLabelValues("malformed_block")))
}
