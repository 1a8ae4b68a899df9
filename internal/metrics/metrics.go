package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counters below are the out-of-band alerting surface for failures the
// webhook response deliberately absorbs: once an event is verified and
// classified, the processor always gets a 200, so fulfillment and
// notification problems are only visible here and in the logs.
var (
	WebhookEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Webhook deliveries received, before verification",
	})

	WebhookEventsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_rejected_total",
		Help: "Deliveries rejected for signature or classification failure",
	})

	WebhookEventsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_skipped_total",
		Help: "Deliveries acknowledged without action (non-actionable event type)",
	})

	WebhookEventsDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_duplicate_total",
		Help: "Deliveries for an event ID that was already admitted",
	})

	FulfillmentOrdersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_orders_placed_total",
		Help: "Orders accepted by the fulfillment provider",
	})

	FulfillmentRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_rejected_total",
		Help: "Orders rejected by the fulfillment provider (terminal, alert)",
	})

	FulfillmentRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_retries_total",
		Help: "Retried fulfillment attempts after a transient provider failure",
	})

	FulfillmentExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_exhausted_total",
		Help: "Events whose fulfillment retries ran out (terminal, alert)",
	})

	NotificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Order confirmation emails accepted by the mail provider",
	})

	NotificationsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Confirmation emails that failed to send (order still placed)",
	})

	EventProcessingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "webhook_event_processing_duration_seconds",
		Help:    "Duration of admitted event processing, end to end",
		Buckets: prometheus.DefBuckets,
	})
)

func Register() {
	prometheus.MustRegister(
		WebhookEventsTotal,
		WebhookEventsRejectedTotal,
		WebhookEventsSkippedTotal,
		WebhookEventsDuplicateTotal,
		FulfillmentOrdersPlacedTotal,
		FulfillmentRejectedTotal,
		FulfillmentRetriesTotal,
		FulfillmentExhaustedTotal,
		NotificationsSentTotal,
		NotificationsFailedTotal,
		EventProcessingDuration,
	)
}
