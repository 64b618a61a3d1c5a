package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techdeputies_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GiftCardsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techdeputies_gift_cards_issued_total",
			Help: "Total number of gift cards issued",
		},
	)

	GiftCardRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_gift_card_redemptions_total",
			Help: "Gift card redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	GiftCardRedeemedCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techdeputies_gift_card_redeemed_cents_total",
			Help: "Total minor currency units drawn from gift cards",
		},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_settlements_total",
			Help: "Purchase and booking settlements by item type and outcome",
		},
		[]string{"item_type", "outcome"},
	)

	SessionLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_session_limit_rejections_total",
			Help: "Bookings rejected because the plan's session cap was reached",
		},
		[]string{"tier"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techdeputies_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	BillingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_billing_events_total",
			Help: "Billing webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	EmailsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdeputies_emails_queued_total",
			Help: "Total number of emails queued",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordGiftCardIssued() {
	GiftCardsIssuedTotal.Inc()
}

func RecordRedemption(outcome string, redeemedCents int64) {
	GiftCardRedemptionsTotal.WithLabelValues(outcome).Inc()
	if redeemedCents > 0 {
		GiftCardRedeemedCents.Add(float64(redeemedCents))
	}
}

func RecordSettlement(itemType, outcome string) {
	SettlementsTotal.WithLabelValues(itemType, outcome).Inc()
}

func RecordSessionLimitRejection(tier string) {
	SessionLimitRejectionsTotal.WithLabelValues(tier).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordBillingEvent(eventType, outcome string) {
	BillingEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsQueuedTotal.WithLabelValues(emailType, status).Inc()
}
