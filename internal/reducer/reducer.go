// Package reducer turns raw model responses into recommendations.
//
// The raw text passes through four named stages: envelope unwrap, fence strip,
// inner parse, and field extraction. The first failing stage short-circuits to
// the default recommendation, so Reduce always returns a usable value.
package reducer

import (
	"fmt"
	"strings"
	"time"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
)

// Option configures optional behaviour for the Reducer.
type Option func(*Reducer)

// WithObserver sets the observer that receives stage events.
func WithObserver(o observability.Observer) Option {
	return func(r *Reducer) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock overrides the timestamp source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) {
		if now != nil {
			r.now = now
		}
	}
}

// Reducer is stateless apart from its observer and clock and is safe for concurrent use.
type Reducer struct {
	observer observability.Observer
	now      func() time.Time
}

// New constructs a Reducer.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		observer: observability.NopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies stages 1-4 to raw and returns the first stage error, if any.
func Run(raw string) (Extraction, error) {
	text, err := Unwrap(raw)
	if err != nil {
		return Extraction{}, err
	}
	doc, err := ParseInner(StripFences(text))
	if err != nil {
		return Extraction{}, err
	}
	return Extract(doc), nil
}

// Reduce converts raw into a recommendation for activity. It never panics and
// falls back to domain.DefaultRecommendation on blank input or any stage error.
func (r *Reducer) Reduce(activity domain.Activity, raw string) (rec domain.Recommendation) {
	defer func() {
		if p := recover(); p != nil {
			r.fallback(activity, &StageError{Stage: observability.StageExtract, Err: fmt.Errorf("panic: %v", p)})
			rec = domain.DefaultRecommendation(activity, r.now())
		}
	}()

	if strings.TrimSpace(raw) == "" {
		r.observer.Observe(observability.Event{
			Stage:      observability.StageEnvelope,
			Outcome:    observability.OutcomeFallback,
			ActivityID: activity.ID,
			UserID:     activity.UserID,
			Detail:     "model response is empty",
		})
		return domain.DefaultRecommendation(activity, r.now())
	}

	extraction, err := Run(raw)
	if err != nil {
		r.fallback(activity, err)
		return domain.DefaultRecommendation(activity, r.now())
	}

	r.observer.Observe(observability.Event{
		Stage:      observability.StageExtract,
		Outcome:    observability.OutcomeOK,
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Detail:     "model response reduced",
	})
	return domain.NewRecommendation(activity, domain.RecommendationContent{
		Text:         extraction.Analysis,
		Improvements: extraction.Improvements,
		Suggestions:  extraction.Suggestions,
		Safety:       extraction.Safety,
	}, r.now())
}

func (r *Reducer) fallback(activity domain.Activity, err error) {
	stage := StageOf(err)
	if stage == "" {
		stage = observability.StageExtract
	}
	r.observer.Observe(observability.Event{
		Stage:      stage,
		Outcome:    observability.OutcomeFallback,
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Detail:     "falling back to default recommendation",
		Err:        err,
	})
}
