// Package metrics holds the Prometheus collectors of the shop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes used as the "outcome" label.
const (
	OutcomeSuccess           = "success"
	OutcomeValidation        = "validation"
	OutcomeUnavailable       = "unavailable"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeFailed            = "failed"
)

// Checkout counts checkout attempts by outcome and times them. A nil
// *Checkout records nothing.
type Checkout struct {
	Total    *prometheus.CounterVec
	Duration prometheus.Histogram
}

func NewCheckout(reg prometheus.Registerer) *Checkout {
	m := &Checkout{
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shop",
			Name:      "checkout_duration_seconds",
			Help:      "Checkout duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Total, m.Duration)
	return m
}

func (m *Checkout) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Total.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}
