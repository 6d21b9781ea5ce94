// internal/pkg/metrics/business.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business holds the storefront's funnel and order metrics
type Business struct {
	CartItemsAdded    prometheus.Counter
	WishlistToggles   *prometheus.CounterVec
	CheckoutStarted   prometheus.Counter
	CheckoutRejected  *prometheus.CounterVec
	CheckoutAbandoned prometheus.Counter
	PaymentAttempts   *prometheus.CounterVec
	LateCallbacks     prometheus.Counter
	OrdersCreated     *prometheus.CounterVec
	OrderValue        prometheus.Histogram
	OrdersSkipped     prometheus.Counter
	EmailsSent        *prometheus.CounterVec
}

// NewBusiness registers the business metrics with reg
func NewBusiness(reg prometheus.Registerer, namespace string) *Business {
	if namespace == "" {
		namespace = "zelie"
	}
	f := promauto.With(reg)

	return &Business{
		CartItemsAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Units added to carts",
		}),
		WishlistToggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wishlist_toggles_total",
			Help:      "Wishlist toggles by resulting membership",
		}, []string{"wishlisted"}),
		CheckoutStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_started_total",
			Help:      "Checkout sessions opened",
		}),
		CheckoutRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Checkout submissions sent back to editing",
		}, []string{"reason"}),
		CheckoutAbandoned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_abandoned_total",
			Help:      "Checkout sessions closed before payment",
		}),
		PaymentAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_attempts_total",
			Help:      "Gateway order creations and superseded payments by result",
		}, []string{"result"}),
		LateCallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_late_callbacks_total",
			Help:      "Payment callbacks ignored because checkout was closed",
		}),
		OrdersCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Paid checkouts by outcome",
		}, []string{"outcome"}),
		OrderValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value_rupees",
			Help:      "Order totals in rupees",
			Buckets:   []float64{100, 250, 500, 599, 1000, 2000, 5000},
		}),
		OrdersSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_skipped_total",
			Help:      "Stored orders skipped on read because they were malformed",
		}),
		EmailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Confirmation emails by result",
		}, []string{"result"}),
	}
}
