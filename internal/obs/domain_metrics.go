package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentIntentTotal counts payment intent creation outcomes.
	PaymentIntentTotal *prometheus.CounterVec
	// PaymentCaptureTotal counts capture (settlement) outcomes.
	PaymentCaptureTotal *prometheus.CounterVec
	// PaymentRefundTotal counts refund outcomes.
	PaymentRefundTotal *prometheus.CounterVec
	// ProviderCallDuration records provider round-trip latency in milliseconds.
	ProviderCallDuration *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentIntentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intent_total",
			Help:      "Count of payment intent processing outcomes.",
		}, []string{"result"})
		PaymentCaptureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_capture_total",
			Help:      "Count of payment capture outcomes.",
		}, []string{"result"})
		PaymentRefundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_refund_total",
			Help:      "Count of payment refund outcomes.",
		}, []string{"result"})
		ProviderCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_ms",
			Help:      "Latency of outbound provider calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"operation"})

		mustRegisterCollector(reg, PaymentIntentTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentIntentTotal = v
			}
		})
		mustRegisterCollector(reg, PaymentCaptureTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentCaptureTotal = v
			}
		})
		mustRegisterCollector(reg, PaymentRefundTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentRefundTotal = v
			}
		})
		mustRegisterCollector(reg, ProviderCallDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				ProviderCallDuration = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
