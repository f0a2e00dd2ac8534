package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for backend calls.
// A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trackflow_gateway_requests_total",
				Help: "Total number of requests sent to the CRM backend.",
			},
			[]string{"resource", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trackflow_gateway_request_duration_seconds",
				Help:    "Latency of requests sent to the CRM backend.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
	}

	if err := reg.Register(m.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		reg.Unregister(m.requests)
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(resource, method, status string, latency time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(resource, method, status).Inc()
	m.duration.WithLabelValues(resource, method).Observe(latency.Seconds())
}
