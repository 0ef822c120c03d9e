package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// RegisterBusinessMetrics registers the application level collectors on reg.
// Calling it more than once is a no-op.
func RegisterBusinessMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		for _, m := range businessMetrics {
			c := NewMetric(m, "sitecraft")
			if err := reg.Register(c); err != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(err, &already) {
					c = already.ExistingCollector
				} else {
					continue
				}
			}
			m.MetricCollector = c
		}
	})
}

// ObserveWebhookEvent counts one processed webhook delivery. It is safe to call before
// RegisterBusinessMetrics (the sample is dropped).
func ObserveWebhookEvent(eventType, outcome string) {
	if cv, ok := MetricsWebhookEvents.MetricCollector.(*prometheus.CounterVec); ok {
		cv.WithLabelValues(eventType, outcome).Inc()
	}
}

// ObserveBusinessProcess records the latency of a named unit of work started at start.
func ObserveBusinessProcess(kind, subtype string, start time.Time) {
	if hv, ok := MetricsBusinessProcess.MetricCollector.(*prometheus.HistogramVec); ok {
		hv.WithLabelValues(kind, subtype).Observe(MillisecondsSince(start))
	}
}

// MillisecondsSince returns the elapsed time since start in fractional milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
