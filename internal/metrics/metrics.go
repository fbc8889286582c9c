package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "game_launcher"

var (
	// ActionsDispatchedTotal counts actions popped from the queue by kind.
	ActionsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_dispatched_total",
		Help:      "Total number of setup actions taken from the queue",
	}, []string{"action"})

	// ActionFailuresTotal counts failed actions by kind.
	ActionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "action_failures_total",
		Help:      "Total number of setup actions that failed",
	}, []string{"action"})

	// PendingActions reports the current queue length.
	PendingActions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_actions",
		Help:      "Number of setup actions still queued",
	})

	// DownloadBytesTotal counts bytes received per package kind.
	DownloadBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_bytes_total",
		Help:      "Total number of package bytes downloaded",
	}, []string{"kind"})

	// DownloadDuration observes package transfer durations by kind and result.
	DownloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "download_duration_seconds",
		Help:      "Package transfer duration",
		Buckets:   []float64{0.5, 1, 5, 15, 60, 300, 900, 1800},
	}, []string{"kind", "result"})

	// EventsDroppedTotal counts events that could not be delivered to the control loop.
	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of service events dropped before reaching the orchestrator",
	}, []string{"reason"})

	// ManualTriggersTotal counts manual triggers by the adapter that issued them.
	ManualTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "manual_triggers_total",
		Help:      "Total number of manual triggers issued by presentation adapters",
	}, []string{"source"})
)

// IncActionDispatched records an action taken from the queue.
func IncActionDispatched(action string) {
	ActionsDispatchedTotal.WithLabelValues(label(action)).Inc()
}

// IncActionFailure records a failed action.
func IncActionFailure(action string) {
	ActionFailuresTotal.WithLabelValues(label(action)).Inc()
}

// SetPendingActions records the queue length.
func SetPendingActions(n int) {
	PendingActions.Set(float64(n))
}

// AddDownloadBytes records received package bytes.
func AddDownloadBytes(kind string, n int64) {
	if n <= 0 {
		return
	}

	DownloadBytesTotal.WithLabelValues(label(kind)).Add(float64(n))
}

// ObserveDownload records the duration of a finished or failed transfer.
func ObserveDownload(kind, result string, elapsed time.Duration) {
	DownloadDuration.WithLabelValues(label(kind), label(result)).Observe(elapsed.Seconds())
}

// IncEventDropped records an event that never reached the control loop.
func IncEventDropped(reason string) {
	EventsDroppedTotal.WithLabelValues(label(reason)).Inc()
}

// IncManualTrigger records a manual trigger from source.
func IncManualTrigger(source string) {
	ManualTriggersTotal.WithLabelValues(label(source)).Inc()
}

func label(value string) string {
	if value == "" {
		return "unknown"
	}

	return value
}
