package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestCounters_UseUnknownLabelForEmptyValues keeps label cardinality bounded.
func TestCounters_UseUnknownLabelForEmptyValues(t *testing.T) {
	before := testutil.ToFloat64(ActionFailuresTotal.WithLabelValues("unknown"))

	IncActionFailure("")

	require.InDelta(t, before+1, testutil.ToFloat64(ActionFailuresTotal.WithLabelValues("unknown")), 1e-9)
}

// TestAddDownloadBytes ignores non-positive sizes.
func TestAddDownloadBytes(t *testing.T) {
	before := testutil.ToFloat64(DownloadBytesTotal.WithLabelValues("engine"))

	AddDownloadBytes("engine", 0)
	AddDownloadBytes("engine", -5)
	AddDownloadBytes("engine", 512)

	require.InDelta(t, before+512, testutil.ToFloat64(DownloadBytesTotal.WithLabelValues("engine")), 1e-9)
}

// TestGaugeAndHistogram records queue length and a transfer duration.
func TestGaugeAndHistogram(t *testing.T) {
	SetPendingActions(4)
	require.InDelta(t, 4.0, testutil.ToFloat64(PendingActions), 1e-9)

	ObserveDownload("game", "ok", 2*time.Second)
	require.Positive(t, testutil.CollectAndCount(DownloadDuration))
}

// TestIncManualTrigger counts triggers per source.
func TestIncManualTrigger(t *testing.T) {
	before := testutil.ToFloat64(ManualTriggersTotal.WithLabelValues("http"))

	IncManualTrigger("http")

	require.InDelta(t, before+1, testutil.ToFloat64(ManualTriggersTotal.WithLabelValues("http")), 1e-9)
}
