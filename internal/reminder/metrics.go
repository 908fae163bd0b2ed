package reminder

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes scheduler state to Prometheus. A nil *Metrics is a no-op.
type Metrics struct {
	armed            prometheus.Gauge
	fired            prometheus.Counter
	dispatchFailures prometheus.Counter
}

// NewMetrics creates the reminder collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		armed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reminders_armed",
			Help: "Number of appointment reminders currently armed.",
		}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_fired_total",
			Help: "Total number of appointment reminders fired.",
		}),
		dispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_dispatch_failures_total",
			Help: "Total number of reminders whose dispatch failed.",
		}),
	}

	for _, c := range []prometheus.Collector{m.armed, m.fired, m.dispatchFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) setArmed(n int) {
	if m != nil {
		m.armed.Set(float64(n))
	}
}

func (m *Metrics) incFired() {
	if m != nil {
		m.fired.Inc()
	}
}

func (m *Metrics) incDispatchFailure() {
	if m != nil {
		m.dispatchFailures.Inc()
	}
}
