package transaction

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	eventCreated       = "created"
	eventCancelled     = "cancelled"
	eventExpired       = "expired"
	eventPaid          = "paid"
	eventPaymentFailed = "payment_failed"
)

// Metrics counts transaction workflow outcomes
// Nil *Metrics is valid and records nothing
type Metrics struct {
	events *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spbuhub",
				Name:      "transaction_events_total",
				Help:      "Total number of transaction workflow events by type",
			},
			[]string{"event"},
		),
	}
	reg.MustRegister(m.events)
	return m
}

func (m *Metrics) inc(event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event).Inc()
}
