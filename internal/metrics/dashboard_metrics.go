package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// QueryProducts labels failures of the tracked product listing.
	QueryProducts = "products"
	// QueryLatest labels failures of the latest price point lookup.
	QueryLatest = "latest"
	// QueryHistory labels failures of the price history lookup.
	QueryHistory = "history"
)

var (
	// QueryFailures counts read queries that failed and were rendered as empty results.
	QueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_failures_total",
		Help: "The total number of failed dashboard queries rendered as empty",
	}, []string{"query"})

	// StaleHistoryDiscarded counts history results dropped because the selection changed while they were in flight.
	StaleHistoryDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_stale_history_discarded_total",
		Help: "The total number of price history results discarded after a newer selection",
	})

	// PushNotificationsSent counts Web Push deliveries by result.
	PushNotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_notifications_sent_total",
		Help: "The total number of push notifications sent, by result",
	}, []string{"result"})

	// PushSubscriptionsPruned counts subscriptions removed after the push service reported them gone.
	PushSubscriptionsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_subscriptions_pruned_total",
		Help: "The total number of expired push subscriptions removed",
	})

	// RelayMessages counts price alert queue messages by outcome.
	RelayMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_alert_relay_messages_total",
		Help: "The total number of price alert messages consumed, by outcome",
	}, []string{"outcome"})
)
