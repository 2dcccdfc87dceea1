package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newswizard_turns_total",
			Help: "Total number of dialog turns by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newswizard_feed_fetch_total",
			Help: "Total number of upstream feed fetches by topic and result",
		},
		[]string{"topic", "result"},
	)

	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newswizard_feed_fetch_duration_seconds",
			Help:    "Duration of upstream feed fetch and parse in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	ProgressiveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newswizard_progressive_response_failures_total",
			Help: "Total number of progressive responses that could not be delivered",
		},
	)

	ConversationsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newswizard_conversations_swept_total",
			Help: "Total number of expired conversation states removed",
		},
	)
)
