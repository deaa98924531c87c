package etls

//
// Metrics definitions
//

import (
	"time"

	"github.com/onedata/etls/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsSummaryObjectives returns the summary objectives for promauto.NewSummary.
func metricsSummaryObjectives() map[float64]float64 {
	return map[float64]float64{
		0.25: 0.010,
		0.5:  0.010,
		0.75: 0.010,
		0.9:  0.010,
		0.99: 0.001,
	}
}

var (
	// metricOperationsCount counts completed operations by name and result.
	metricOperationsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etls_operations_total",
		Help: "Total number of completed socket operations",
	}, []string{"op", "result"})

	// metricOperationsInflight gauges the operations scheduled but not completed.
	metricOperationsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etls_operations_inflight_gauge",
		Help: "The number of socket operations currently inflight",
	})

	// metricHandshakeDurationSeconds summarizes the TLS handshake duration.
	metricHandshakeDurationSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "etls_handshake_duration_seconds",
		Help:       "Summarizes the time to complete the TLS handshake (in seconds)",
		Objectives: metricsSummaryObjectives(),
	}, []string{"role"})
)

// operationTracker accounts for a single operation.
type operationTracker struct {
	op string
}

// newOperationTracker registers a new inflight operation. The caller
// must call done exactly once, or abort if the loop rejected it.
func newOperationTracker(op string) *operationTracker {
	metricOperationsInflight.Inc()
	return &operationTracker{op: op}
}

func (t *operationTracker) done(err error) {
	metricOperationsInflight.Dec()
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricOperationsCount.WithLabelValues(t.op, result).Inc()
}

func (t *operationTracker) abort() {
	metricOperationsInflight.Dec()
}

// observeHandshake records the duration of a successful handshake.
func observeHandshake(role string, start time.Time, err error) {
	if err == nil {
		metricHandshakeDurationSeconds.WithLabelValues(role).Observe(time.Since(start).Seconds())
	}
}

// logResult logs the result of an operation at debug level.
func logResult(logger model.DebugLogger, what string, err error) {
	logger.Debugf("etls: %s... %s", what, model.ErrorToStringOrOK(err))
}
