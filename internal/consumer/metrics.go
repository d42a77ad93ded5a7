package consumer

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka messages handled successfully by the recommendation consumer.",
	}, []string{"topic"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "consumer",
		Name:      "messages_failed_total",
		Help:      "Number of Kafka messages that were committed without a stored recommendation, by reason.",
	}, []string{"topic", "reason"})

	fetchErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "consumer",
		Name:      "fetch_errors_total",
		Help:      "Number of failed fetches from Kafka.",
	})

	commitErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "consumer",
		Name:      "commit_errors_total",
		Help:      "Number of failed offset commits.",
	})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recommendation_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Timestamp of the most recent Kafka message processed.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, failedCounter, fetchErrorCounter, commitErrorCounter, lastMessageGauge)
}

// RecordProcessed updates counters for successfully handled messages.
func RecordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordFailure(msg Message, err error) {
	failedCounter.WithLabelValues(msg.Topic, failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrPersist):
		return "persist"
	case errors.Is(err, ErrHandlerPanic):
		return "panic"
	default:
		return "handler"
	}
}
