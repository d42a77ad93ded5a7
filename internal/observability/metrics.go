package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	stageCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "pipeline",
		Name:      "stage_events_total",
		Help:      "Pipeline stage events grouped by stage and outcome.",
	}, []string{"stage", "outcome"})

	modelLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "recommendation_service",
		Subsystem: "model",
		Name:      "invoke_duration_seconds",
		Help:      "Latency of outbound model invocations, including failures.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	generatedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "pipeline",
		Name:      "recommendations_generated_total",
		Help:      "Recommendations produced, labeled by whether model output or the default was used.",
	}, []string{"source"})

	persistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recommendation_service",
		Subsystem: "persistence",
		Name:      "last_recommendation_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent recommendation saved to the store.",
	})
)

func init() {
	prometheus.MustRegister(stageCounter, modelLatency, generatedCounter, persistGauge)
}

func recordStage(evt Event) {
	stageCounter.WithLabelValues(string(evt.Stage), string(evt.Outcome)).Inc()
	if evt.Stage == StageModel && evt.Duration > 0 {
		modelLatency.Observe(evt.Duration.Seconds())
	}
}

// RecordGenerated counts a produced recommendation. fallback marks the canned default.
func RecordGenerated(fallback bool) {
	source := "model"
	if fallback {
		source = "default"
	}
	generatedCounter.WithLabelValues(source).Inc()
}

// RecordRecommendationPersisted updates the persistence watermark gauge.
func RecordRecommendationPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	persistGauge.Set(float64(ts.Unix()))
}
