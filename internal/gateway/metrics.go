package gateway

import (
	"errors"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout_service",
		Subsystem: "payment_gateway",
		Name:      "call_duration_seconds",
		Help:      "Payment gateway call latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "result"})

	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "checkout_service",
		Subsystem: "payment_gateway",
		Name:      "breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	})
)

func observeCall(op string, err error, d time.Duration) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrGatewayUnavailable):
		result = "unavailable"
	default:
		result = "error"
	}
	gatewayCallDuration.WithLabelValues(op, result).Observe(d.Seconds())
}
