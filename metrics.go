package botdriver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeOK     = "ok"
	outcomeAbsent = "absent"
	outcomeError  = "error"
)

// Metrics collects Prometheus metrics for sessions. A nil *Metrics records
// nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	active     prometheus.Gauge
}

// NewMetrics creates the session metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "botdriver",
				Name:      "operations_total",
				Help:      "Session operations by name and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "botdriver",
				Name:      "operation_duration_seconds",
				Help:      "Time spent waiting on the browser per operation.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"operation"},
		),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "botdriver",
			Name:      "sessions_active",
			Help:      "Browser sessions currently open.",
		}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.active.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.active.Dec()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case IsNoSuchElement(err):
		return outcomeAbsent
	default:
		return outcomeError
	}
}
