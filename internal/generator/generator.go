// Package generator produces a recommendation for an activity by prompting
// the model and reducing its answer.
package generator

import (
	"context"
	"fmt"
	"time"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/model"
	"example.com/recommendation/internal/observability"
	"example.com/recommendation/internal/prompt"
	"example.com/recommendation/internal/reducer"
)

// Option configures optional behaviour for the Generator.
type Option func(*Generator)

// WithObserver sets the observer used for model and reducer events.
func WithObserver(o observability.Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithClock overrides the clock used for CreatedAt and latency measurement.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator ties prompt building, model invocation, and reduction together.
type Generator struct {
	client   model.Client
	observer observability.Observer
	now      func() time.Time
	reducer  *reducer.Reducer
}

// New constructs a Generator around client.
func New(client model.Client, opts ...Option) *Generator {
	g := &Generator{
		client:   client,
		observer: observability.NopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reducer = reducer.New(reducer.WithObserver(g.observer), reducer.WithClock(g.now))
	return g
}

// Generate always returns a recommendation. A failed model call is treated
// as an empty response and yields the default recommendation, and so does a
// panic anywhere in the pipeline.
func (g *Generator) Generate(ctx context.Context, activity domain.Activity) (rec domain.Recommendation) {
	stage := observability.StageGenerate
	defer func() {
		if p := recover(); p != nil {
			g.observePanic(activity, stage, p)
			rec = domain.DefaultRecommendation(activity, g.now())
			observability.RecordGenerated(true)
		}
	}()

	text := prompt.Build(activity)

	stage = observability.StageModel
	start := g.now()
	raw, err := g.client.Invoke(ctx, text)
	elapsed := g.now().Sub(start)

	evt := observability.Event{
		Stage:      observability.StageModel,
		Outcome:    observability.OutcomeOK,
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Duration:   elapsed,
		Detail:     "model invoked",
	}
	if err != nil {
		evt.Outcome = observability.OutcomeFallback
		evt.Detail = "model invocation failed"
		evt.Err = err
		raw = ""
	}
	stage = observability.StageGenerate
	g.observer.Observe(evt)

	rec = g.reducer.Reduce(activity, raw)
	observability.RecordGenerated(rec.IsDefault())
	return rec
}

// observePanic reports a recovered panic. The observer may be what panicked,
// so a second panic here is swallowed.
func (g *Generator) observePanic(activity domain.Activity, stage observability.Stage, p any) {
	defer func() { _ = recover() }()
	g.observer.Observe(observability.Event{
		Stage:      stage,
		Outcome:    observability.OutcomeFallback,
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Detail:     "generation panicked",
		Err:        fmt.Errorf("panic: %v", p),
	})
}
