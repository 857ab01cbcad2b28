package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	placed               prometheus.Counter
	failures             *prometheus.CounterVec
	notificationFailures prometheus.Counter
	duration             prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders persisted by the checkout workflow.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout submissions that did not produce an order.",
	}, []string{"reason"})
	notificationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_notification_failures_total",
		Help: "Order notifications that could not be delivered.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Time spent persisting and notifying a placed order.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(placed, failures, notificationFailures, duration)
	return &CheckoutMetrics{
		placed:               placed,
		failures:             failures,
		notificationFailures: notificationFailures,
		duration:             duration,
	}
}

func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncFailure counts a rejected or failed submission under reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (c *CheckoutMetrics) IncNotificationFailure() {
	if c == nil || c.notificationFailures == nil {
		return
	}
	c.notificationFailures.Inc()
}

func (c *CheckoutMetrics) ObserveDuration(d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
