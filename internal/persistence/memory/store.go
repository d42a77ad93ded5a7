// Package memory keeps recommendations in process memory for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"example.com/recommendation/internal/domain"
)

// Store is a goroutine-safe in-memory domain.Store.
type Store struct {
	mu      sync.RWMutex
	records []domain.Recommendation
}

var _ domain.Store = (*Store)(nil)

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Save implements domain.Store.
func (s *Store) Save(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, err
	}
	rec = rec.WithID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec, nil
}

// GetByActivity implements domain.Store. The newest match wins.
func (s *Store) GetByActivity(ctx context.Context, activityID string) (*domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.Recommendation
	for i := range s.records {
		rec := s.records[i]
		if rec.ActivityID != activityID {
			continue
		}
		if found == nil || newer(rec, *found) {
			found = &rec
		}
	}
	return found, nil
}

// ListByUser implements domain.Store.
func (s *Store) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Recommendation, *domain.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	matches := make([]domain.Recommendation, 0)
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		if cursor != nil && !before(rec, *cursor) {
			continue
		}
		matches = append(matches, rec)
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return newer(matches[i], matches[j]) })

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	var next *domain.Cursor
	if limit > 0 && len(matches) == limit {
		last := matches[len(matches)-1]
		next = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return matches, next, nil
}

// newer orders by CreatedAt then ID, both descending.
func newer(a, b domain.Recommendation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func before(rec domain.Recommendation, c domain.Cursor) bool {
	if !rec.CreatedAt.Equal(c.CreatedAt) {
		return rec.CreatedAt.Before(c.CreatedAt)
	}
	return rec.ID < c.ID
}
