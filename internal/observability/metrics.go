package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	httpDurationHistogram    *prometheus.HistogramVec
	transferCreatedCounter   *prometheus.CounterVec
	statusTransitionCounter  *prometheus.CounterVec
	conversionFailureCounter *prometheus.CounterVec
	idempotencyCounter       *prometheus.CounterVec
	outboxRelayCounter       *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		transferCreatedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_created_total",
			Help: "Transfers created, by source currency",
		}, []string{"currency"})

		statusTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_status_transitions_total",
			Help: "Applied status transitions",
		}, []string{"from", "to"})

		conversionFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_conversion_failures_total",
			Help: "Currency conversions that failed at transfer creation",
		}, []string{"from", "to"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		outboxRelayCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_relay_runs_total",
			Help: "Outbox relay worker run outcomes",
		}, []string{"result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			transferCreatedCounter,
			statusTransitionCounter,
			conversionFailureCounter,
			idempotencyCounter,
			outboxRelayCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementTransferCreated(currency string) {
	if transferCreatedCounter == nil {
		return
	}
	transferCreatedCounter.WithLabelValues(currency).Inc()
}

func IncrementStatusTransition(from, to string) {
	if statusTransitionCounter == nil {
		return
	}
	statusTransitionCounter.WithLabelValues(from, to).Inc()
}

func IncrementConversionFailure(from, to string) {
	if conversionFailureCounter == nil {
		return
	}
	conversionFailureCounter.WithLabelValues(from, to).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementOutboxRelayRun(result string) {
	if outboxRelayCounter == nil {
		return
	}
	outboxRelayCounter.WithLabelValues(result).Inc()
}
