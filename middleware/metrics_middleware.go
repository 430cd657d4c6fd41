package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"txsitter/message"
)

// Metrics holds the invocation collectors.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics registers the collectors with registry, or with the default
// registerer when registry is nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "txsitter_invocations_total",
			Help: "Invocations of tx-sitter functions by role and outcome",
		}, []string{"role", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txsitter_invocation_duration_seconds",
			Help:    "Latency of tx-sitter function invocations",
			Buckets: prometheus.DefBuckets,
		}, []string{"role"}),
	}
}

// MetricsMiddleware counts invocations and observes their latency.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *message.Invocation) ([]byte, error) {
			start := time.Now()
			reply, err := next(ctx, inv)
			m.Duration.WithLabelValues(string(inv.Role)).Observe(time.Since(start).Seconds())

			outcome := "ok"
			switch {
			case err != nil:
				outcome = "error"
			case len(reply) == 0:
				outcome = "empty"
			}
			m.Invocations.WithLabelValues(string(inv.Role), outcome).Inc()
			return reply, err
		}
	}
}
