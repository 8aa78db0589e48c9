package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	// calculations counts engine calls by operation and result
	calculations *prometheus.CounterVec
	// requestDuration tracks handler latency per route pattern
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "abcalc_calculations_total",
			Help: "Total calculations by operation and result",
		}, []string{"operation", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "abcalc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}, []string{"route"}),
	}
}

func (m *metrics) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	m.calculations.WithLabelValues(operation, result).Inc()
}
