package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry so tests and
// multiple instances do not collide on the default one.
type Metrics struct {
	registry        *prometheus.Registry
	WebhookRequests *prometheus.CounterVec
	Reconciliations *prometheus.CounterVec
	SweepItems      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		WebhookRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gympay",
			Name:      "webhook_requests_total",
			Help:      "Gateway webhook requests by result.",
		}, []string{"result"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gympay",
			Name:      "reconciliations_total",
			Help:      "Reconciliation runs by trigger source and outcome.",
		}, []string{"source", "outcome"}),
		SweepItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gympay",
			Name:      "sweep_items_total",
			Help:      "Outstanding payments visited by the sweeper, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.WebhookRequests, m.Reconciliations, m.SweepItems)
	return m
}

func (m *Metrics) IncWebhook(result string) {
	if m == nil {
		return
	}
	m.WebhookRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) IncReconcile(source, outcome string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) IncSweepItem(outcome string) {
	if m == nil {
		return
	}
	m.SweepItems.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
