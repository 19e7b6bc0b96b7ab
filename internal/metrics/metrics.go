package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Domain metrics
	SwipesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetmatch_swipes_total",
			Help: "Total number of recorded swipes by direction",
		},
		[]string{"direction"},
	)

	MatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetmatch_matches_total",
			Help: "Total number of mutual matches detected at swipe time",
		},
	)

	ChatsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetmatch_chats_created_total",
			Help: "Total number of chats created by trigger",
		},
		[]string{"trigger"},
	)

	ChatCreationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetmatch_chat_creation_failures_total",
			Help: "Chat creations that failed after a match was detected",
		},
	)

	MessagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetmatch_messages_sent_total",
			Help: "Total number of messages sent",
		},
	)

	MessagesReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetmatch_messages_read_total",
			Help: "Total number of messages marked as read",
		},
	)

	EventsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetmatch_events_created_total",
			Help: "Total number of events created",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetmatch_api_requests_total",
			Help: "Total number of API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetmatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(SwipesTotal)
	prometheus.MustRegister(MatchesTotal)
	prometheus.MustRegister(ChatsCreatedTotal)
	prometheus.MustRegister(ChatCreationFailures)
	prometheus.MustRegister(MessagesSentTotal)
	prometheus.MustRegister(MessagesReadTotal)
	prometheus.MustRegister(EventsCreatedTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
