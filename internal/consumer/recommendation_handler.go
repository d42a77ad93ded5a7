package consumer

import (
	"context"
	"errors"
	"fmt"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
)

var (
	// ErrPersist marks a generated recommendation that could not be stored.
	ErrPersist = errors.New("persist recommendation")
	// ErrHandlerPanic marks a handler that panicked while processing a message.
	ErrHandlerPanic = errors.New("handler panic")
)

// Generator produces a recommendation for an activity. It must not fail.
type Generator interface {
	Generate(ctx context.Context, activity domain.Activity) domain.Recommendation
}

// RecommendationHandler decodes activity events, generates a recommendation
// and stores it. Failed saves are reported and not retried.
type RecommendationHandler struct {
	generator Generator
	store     domain.Store
	observer  observability.Observer
}

// HandlerOption configures a RecommendationHandler.
type HandlerOption func(*RecommendationHandler)

// WithHandlerObserver sets the observer for decode and persist events.
func WithHandlerObserver(o observability.Observer) HandlerOption {
	return func(h *RecommendationHandler) {
		if o != nil {
			h.observer = o
		}
	}
}

// NewRecommendationHandler constructs a handler backed by generator and store.
func NewRecommendationHandler(generator Generator, store domain.Store, opts ...HandlerOption) *RecommendationHandler {
	h := &RecommendationHandler{generator: generator, store: store, observer: observability.NopObserver{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Handler = (*RecommendationHandler)(nil)

// Handle implements Handler.
func (h *RecommendationHandler) Handle(ctx context.Context, msg Message) error {
	activity, err := DecodeActivity(msg.Payload)
	if err != nil {
		h.observer.Observe(observability.Event{
			Stage:   observability.StageDecode,
			Outcome: observability.OutcomeFailed,
			Detail:  "skipping undecodable activity event",
			Err:     err,
		})
		return err
	}
	if activity.UserID == "" && len(msg.Key) > 0 {
		activity.UserID = string(msg.Key)
	}

	rec := h.generator.Generate(ctx, activity)

	saved, err := h.store.Save(ctx, rec)
	if err != nil {
		err = fmt.Errorf("%w for activity %s: %w", ErrPersist, activity.ID, err)
		h.observer.Observe(observability.Event{
			Stage:      observability.StagePersist,
			Outcome:    observability.OutcomeFailed,
			ActivityID: activity.ID,
			UserID:     activity.UserID,
			Detail:     "dropping recommendation",
			Err:        err,
		})
		return err
	}

	observability.RecordRecommendationPersisted(saved.CreatedAt)
	h.observer.Observe(observability.Event{
		Stage:      observability.StagePersist,
		Outcome:    observability.OutcomeOK,
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Detail:     "recommendation stored",
	})
	return nil
}
