package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scenepin/scenepin/internal/domain"
)

// ShotsRepository provides persistence helpers for shot intervals.
type ShotsRepository struct {
	db Querier
}

const shotColumns = `
    id,
    film_id,
    timestamp_start,
    timestamp_end,
    label,
    created_at
`

// ShotCreateParams bundles the fields required to create a shot.
type ShotCreateParams struct {
	FilmID         string
	TimestampStart int
	TimestampEnd   int
	Label          string
}

// Create inserts a new shot row and returns the stored entity.
func (r *ShotsRepository) Create(ctx context.Context, params ShotCreateParams) (domain.Shot, error) {
	query := fmt.Sprintf(`
        INSERT INTO shots (id, film_id, timestamp_start, timestamp_end, label)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, shotColumns)

	row := r.db.QueryRow(ctx, query, uuid.NewString(), params.FilmID,
		params.TimestampStart, params.TimestampEnd, params.Label)
	return scanShot(row)
}

// FindCovering returns the shot of the given film whose interval covers t.
// When several intervals cover t the narrowest wins, oldest first on ties.
func (r *ShotsRepository) FindCovering(ctx context.Context, filmID string, t int) (domain.Shot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM shots
        WHERE film_id = $1 AND timestamp_start <= $2 AND timestamp_end >= $2
        ORDER BY (timestamp_end - timestamp_start) ASC, created_at ASC
        LIMIT 1
    `, shotColumns)

	shot, err := scanShot(r.db.QueryRow(ctx, query, filmID, t))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Shot{}, ErrNotFound
		}
		return domain.Shot{}, err
	}
	return shot, nil
}

// GetByID fetches a shot by its identifier.
func (r *ShotsRepository) GetByID(ctx context.Context, id string) (domain.Shot, error) {
	query := fmt.Sprintf(`SELECT %s FROM shots WHERE id = $1`, shotColumns)
	shot, err := scanShot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Shot{}, ErrNotFound
		}
		return domain.Shot{}, err
	}
	return shot, nil
}

func scanShot(row pgx.Row) (domain.Shot, error) {
	var shot domain.Shot
	err := row.Scan(
		&shot.ID,
		&shot.FilmID,
		&shot.TimestampStart,
		&shot.TimestampEnd,
		&shot.Label,
		&shot.CreatedAt,
	)
	if err != nil {
		return domain.Shot{}, err
	}
	return shot, nil
}
