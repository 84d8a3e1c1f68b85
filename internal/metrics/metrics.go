// Package metrics exposes Prometheus instrumentation for gateway calls and
// payment status transitions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatewayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_gateway_requests_total",
			Help: "Gateway exchanges by operation and result.",
		}, []string{"operation", "result"}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payflow_gateway_request_duration_seconds",
			Help:    "Gateway exchange duration by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_status_transitions_total",
			Help: "Applied payment status transitions by target status.",
		}, []string{"to"}),
	}
}

// ObserveGatewayCall records one gateway exchange. Result is one of
// success, redirect, declined, fault.
func (r *Recorder) ObserveGatewayCall(operation, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.gatewayRequests.WithLabelValues(operation, result).Inc()
	r.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveTransition(to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(to).Inc()
}
