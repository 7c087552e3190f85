package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records registry activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	scheduled prometheus.Counter
	cancelled prometheus.Counter
	fired     *prometheus.CounterVec
	pending   prometheus.Gauge
}

// NewMetrics registers the registry collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		scheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "msgscheduler",
			Subsystem: "schedule",
			Name:      "scheduled_total",
			Help:      "Number of messages accepted for scheduled delivery",
		}),
		cancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "msgscheduler",
			Subsystem: "schedule",
			Name:      "cancelled_total",
			Help:      "Number of scheduled messages cancelled before firing",
		}),
		fired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "msgscheduler",
			Subsystem: "schedule",
			Name:      "fired_total",
			Help:      "Number of scheduled messages whose delivery was attempted, by outcome",
		}, []string{"outcome"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "msgscheduler",
			Subsystem: "schedule",
			Name:      "pending",
			Help:      "Number of scheduled messages waiting to fire",
		}),
	}
}

func (m *Metrics) recordScheduled() {
	if m == nil {
		return
	}
	m.scheduled.Inc()
}

func (m *Metrics) recordCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

func (m *Metrics) recordFired(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fired.WithLabelValues(outcome).Inc()
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
