// Package metrics exposes processing counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeDropped = "dropped"
)

// Metrics groups the processor collectors. A nil *Metrics records nothing.
type Metrics struct {
	events       *prometheus.CounterVec
	priceSamples prometheus.Counter
	lastBlock    prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaultscope",
			Name:      "events_total",
			Help:      "Events handled by the processor by name and outcome.",
		}, []string{"event", "outcome"}),
		priceSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vaultscope",
			Name:      "price_samples_total",
			Help:      "Token price samples recorded from swaps.",
		}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vaultscope",
			Name:      "last_block",
			Help:      "Block number of the last applied event.",
		}),
	}
	reg.MustRegister(m.events, m.priceSamples, m.lastBlock)
	return m
}

func (m *Metrics) ObserveEvent(name, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) AddPriceSamples(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.priceSamples.Add(float64(n))
}

func (m *Metrics) SetBlock(block uint64) {
	if m == nil {
		return
	}
	m.lastBlock.Set(float64(block))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
