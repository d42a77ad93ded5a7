// Package domain defines the recommendation model and the read-side service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	// ErrRecommendationNotFound is returned when no recommendation exists for the lookup key.
	ErrRecommendationNotFound = errors.New("recommendation not found")
)

// Store captures persistence operations for recommendations.
type Store interface {
	Save(ctx context.Context, rec Recommendation) (Recommendation, error)
	GetByActivity(ctx context.Context, activityID string) (*Recommendation, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Recommendation, *Cursor, error)
}

// Cursor models the pagination token for per-user listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// DefaultCacheTTL bounds how long a by-activity lookup may be served from memory.
const DefaultCacheTTL = 30 * time.Second

// Service serves stored recommendations to the API layer.
type Service struct {
	store     Store
	cacheSize int
	cacheTTL  time.Duration
	cache     *expirable.LRU[string, Recommendation]
}

// ServiceOption configures optional behaviour for the Service.
type ServiceOption func(*Service)

// WithCacheSize enables an LRU of by-activity lookups. Sizes <= 0 disable caching.
func WithCacheSize(size int) ServiceOption {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithCacheTTL sets how long cached lookups stay valid. Redelivered activities
// produce newer rows, so entries must age out. Non-positive values keep the default.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize > 0 {
		s.cache = expirable.NewLRU[string, Recommendation](s.cacheSize, nil, s.cacheTTL)
	}
	return s
}

// GetActivityRecommendation fetches the recommendation produced for an activity.
func (s *Service) GetActivityRecommendation(ctx context.Context, activityID string) (*Recommendation, error) {
	if s.cache != nil {
		if rec, ok := s.cache.Get(activityID); ok {
			return &rec, nil
		}
	}

	rec, err := s.store.GetByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecommendationNotFound
	}
	// A default is the likeliest row to be superseded by a redelivery.
	if s.cache != nil && !rec.IsDefault() {
		s.cache.Add(activityID, *rec)
	}
	return rec, nil
}

// ListUserRecommendations fetches a user's recommendations newest first with cursor pagination.
func (s *Service) ListUserRecommendations(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Recommendation, *Cursor, error) {
	return s.store.ListByUser(ctx, userID, cursor, limit)
}
