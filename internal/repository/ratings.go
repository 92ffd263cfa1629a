package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scenepin/scenepin/internal/domain"
)

// RatingsRepository provides helpers for weighted estimate ratings.
type RatingsRepository struct {
	db Querier
}

// RatingUpsertParams captures the payload required to upsert a rating.
// Weight is the vote weight captured at casting time.
type RatingUpsertParams struct {
	EstimateID string
	UserID     string
	Score      int
	Weight     float64
	Comment    *string
}

// Upsert inserts or overwrites the rating for one (estimate, user) pair and
// indicates whether it was newly created. Re-rating refreshes score, weight,
// and comment; the primary key keeps the pair unique under concurrency.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO ratings (estimate_id, user_id, score, weight, comment)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (estimate_id, user_id)
        DO UPDATE SET score = EXCLUDED.score,
                      weight = EXCLUDED.weight,
                      comment = EXCLUDED.comment,
                      updated_at = now()
        RETURNING estimate_id, user_id, score, weight, comment, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.db.QueryRow(ctx, query, params.EstimateID, params.UserID, params.Score, params.Weight, params.Comment).Scan(
		&rating.EstimateID,
		&rating.UserID,
		&rating.Score,
		&rating.Weight,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, false, ErrNotFound
		}
		return domain.Rating{}, false, err
	}

	return rating, inserted, nil
}

// Summarize recomputes the weighted sum and row count over all current
// ratings of an estimate. Always a full recomputation so edits can never
// drift the cumulative score.
func (r *RatingsRepository) Summarize(ctx context.Context, estimateID string) (domain.RatingSummary, error) {
	const query = `
        SELECT COALESCE(SUM(score::float8 * weight), 0)::float8 AS weighted,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE estimate_id = $1
    `

	var summary domain.RatingSummary
	err := r.db.QueryRow(ctx, query, estimateID).Scan(&summary.Weighted, &summary.Count)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize ratings: %w", err)
	}
	return summary, nil
}

// Get retrieves the rating for a specific estimate/user combination.
func (r *RatingsRepository) Get(ctx context.Context, estimateID, userID string) (domain.Rating, error) {
	const query = `
        SELECT estimate_id, user_id, score, weight, comment, created_at, updated_at
        FROM ratings
        WHERE estimate_id = $1 AND user_id = $2
    `
	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, estimateID, userID).Scan(
		&rating.EstimateID,
		&rating.UserID,
		&rating.Score,
		&rating.Weight,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}
