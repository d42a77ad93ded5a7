// Package postgres stores recommendations in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/recommendation/internal/domain"
)

const selectColumns = `recommendation_id::text, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at`

// Repository provides Postgres-backed persistence for recommendations.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Repository)(nil)

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts rec under a freshly assigned identifier.
func (r *Repository) Save(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	id := uuid.NewString()

	const stmt = `INSERT INTO recommendations (recommendation_id, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.pool.Exec(ctx, stmt,
		id,
		rec.ActivityID,
		rec.UserID,
		rec.ActivityType,
		rec.Text,
		rec.Improvements(),
		rec.Suggestions(),
		rec.Safety(),
		rec.CreatedAt,
	)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return rec.WithID(id), nil
}

// GetByActivity returns the newest recommendation for activityID, or nil when none exists.
func (r *Repository) GetByActivity(ctx context.Context, activityID string) (*domain.Recommendation, error) {
	query := `SELECT ` + selectColumns + `
        FROM recommendations WHERE activity_id=$1
        ORDER BY created_at DESC, recommendation_id DESC LIMIT 1`

	rec, err := scanRecommendation(r.pool.QueryRow(ctx, query, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListByUser returns recommendations for a user newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Recommendation, *domain.Cursor, error) {
	args := []any{userID, limit}
	query := `SELECT ` + selectColumns + `
        FROM recommendations WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (created_at, recommendation_id) < ($3, $4::uuid)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, recommendation_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Recommendation, 0, limit)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return results, nextCursor, nil
}

func scanRecommendation(row pgx.Row) (domain.Recommendation, error) {
	var (
		id, activityID, userID, activityType, analysis string
		improvements, suggestions, safety              []string
		createdAt                                      time.Time
	)
	if err := row.Scan(&id, &activityID, &userID, &activityType, &analysis, &improvements, &suggestions, &safety, &createdAt); err != nil {
		return domain.Recommendation{}, err
	}
	return domain.Restore(id, activityID, userID, activityType, analysis, improvements, suggestions, safety, createdAt.UTC()), nil
}
