package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "folio_"

// Metrics records upstream traffic and aggregation outcomes.
// It implements wealthfolio.Observer and portfolio.Recorder.
type Metrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	fetches    *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	upstreamUp prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "upstream_requests_total",
			Help: "Upstream requests by endpoint and HTTP status (transport for network failures)",
		}, []string{"endpoint", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "upstream_request_duration_seconds",
			Help:    "Upstream request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "portfolio_fetch_total",
			Help: "Composite portfolio fetches by outcome",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "holdings_fallback_total",
			Help: "Bulk holdings calls rejected by the upstream, by fallback policy",
		}, []string{"policy"}),
		upstreamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "upstream_up",
			Help: "1 if the last upstream probe succeeded",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.fetches, m.fallbacks, m.upstreamUp)
	return m
}

// ObserveRequest records one upstream request.
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	label := "transport"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(endpoint, label).Inc()
	m.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// PortfolioFetch counts one composite fetch outcome.
func (m *Metrics) PortfolioFetch(outcome string) {
	m.fetches.WithLabelValues(outcome).Inc()
}

// HoldingsFallback counts one rejected bulk holdings call.
func (m *Metrics) HoldingsFallback(policy string) {
	m.fallbacks.WithLabelValues(policy).Inc()
}

// SetUpstreamUp records the result of an upstream probe.
func (m *Metrics) SetUpstreamUp(up bool) {
	if up {
		m.upstreamUp.Set(1)
		return
	}
	m.upstreamUp.Set(0)
}
