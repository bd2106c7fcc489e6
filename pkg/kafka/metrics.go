package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Producer metrics, all labelled by topic.
var (
	ProducerMessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka",
		Subsystem: "producer",
		Name:      "messages_published_total",
		Help:      "Events acknowledged by the brokers.",
	}, []string{"topic"})

	ProducerPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka",
		Subsystem: "producer",
		Name:      "publish_errors_total",
		Help:      "Events the brokers did not accept.",
	}, []string{"topic"})

	ProducerPublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kafka",
		Subsystem: "producer",
		Name:      "publish_duration_seconds",
		Help:      "Time spent in a single synchronous write.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"topic"})
)
