// Package observability carries logging, stage events, and Prometheus metrics for the pipeline.
package observability

import (
	"time"

	"github.com/rs/zerolog"
)

// Stage names a step of the recommendation pipeline.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageModel    Stage = "model"
	StageEnvelope Stage = "envelope"
	StageParse    Stage = "parse"
	StageExtract  Stage = "extract"
	StageGenerate Stage = "generate"
	StagePersist  Stage = "persist"
)

// Outcome classifies how a stage finished.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
	OutcomeFailed   Outcome = "failed"
)

// Event is a single stage-tagged pipeline observation.
type Event struct {
	Stage      Stage
	Outcome    Outcome
	ActivityID string
	UserID     string
	Duration   time.Duration
	Detail     string
	Err        error
}

// Observer receives pipeline events. Implementations must be safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// NopObserver discards every event.
type NopObserver struct{}

// Observe implements Observer.
func (NopObserver) Observe(Event) {}

// LogObserver writes events to a zerolog logger and updates stage metrics.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver constructs a LogObserver.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Observe implements Observer.
func (o *LogObserver) Observe(evt Event) {
	recordStage(evt)

	var e *zerolog.Event
	switch evt.Outcome {
	case OutcomeFailed:
		e = o.logger.Error()
	case OutcomeFallback:
		e = o.logger.Warn()
	default:
		e = o.logger.Debug()
	}

	e = e.Str("stage", string(evt.Stage)).
		Str("outcome", string(evt.Outcome))
	if evt.ActivityID != "" {
		e = e.Str("activity_id", evt.ActivityID)
	}
	if evt.UserID != "" {
		e = e.Str("user_id", evt.UserID)
	}
	if evt.Duration > 0 {
		e = e.Dur("duration", evt.Duration)
	}
	if evt.Err != nil {
		e = e.Err(evt.Err)
	}
	e.Msg(evt.Detail)
}
