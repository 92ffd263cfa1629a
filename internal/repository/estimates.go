package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scenepin/scenepin/internal/domain"
)

// EstimatesRepository provides persistence helpers for location estimates and
// their evidence attachments.
type EstimatesRepository struct {
	db Querier
}

const estimateColumns = `
    id,
    shot_id,
    lat,
    lng,
    address,
    confidence,
    status,
    score,
    created_by,
    created_at,
    updated_at,
    confirmed_at
`

// EstimateCreateParams bundles the fields required to create an estimate.
type EstimateCreateParams struct {
	ShotID     string
	Lat        float64
	Lng        float64
	Address    *string
	Confidence domain.Confidence
	CreatedBy  *string
}

// EvidenceCreateParams bundles the fields of one evidence attachment.
type EvidenceCreateParams struct {
	EstimateID string
	SourceType string
	SourceURL  *string
	Note       *string
}

// Create inserts a new estimate row in the initial estimated state.
func (r *EstimatesRepository) Create(ctx context.Context, params EstimateCreateParams) (domain.Estimate, error) {
	query := fmt.Sprintf(`
        INSERT INTO estimates (id, shot_id, lat, lng, address, confidence, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING %s
    `, estimateColumns)

	row := r.db.QueryRow(ctx, query, uuid.NewString(), params.ShotID,
		params.Lat, params.Lng, params.Address, params.Confidence, params.CreatedBy)
	return scanEstimate(row)
}

// GetByID fetches an estimate by its identifier.
func (r *EstimatesRepository) GetByID(ctx context.Context, id string) (domain.Estimate, error) {
	query := fmt.Sprintf(`SELECT %s FROM estimates WHERE id = $1`, estimateColumns)
	est, err := scanEstimate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Estimate{}, ErrNotFound
		}
		return domain.Estimate{}, err
	}
	return est, nil
}

// GetByIDForUpdate fetches an estimate and takes its row lock, serializing
// concurrent rating transactions on the same estimate. Callers must be
// inside a transaction.
func (r *EstimatesRepository) GetByIDForUpdate(ctx context.Context, id string) (domain.Estimate, error) {
	query := fmt.Sprintf(`SELECT %s FROM estimates WHERE id = $1 FOR UPDATE`, estimateColumns)
	est, err := scanEstimate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Estimate{}, ErrNotFound
		}
		return domain.Estimate{}, err
	}
	return est, nil
}

// FindForTimestamp returns the best non-rejected estimate covering the given
// timestamp of a film, along with its shot. Narrowest shot interval wins,
// then confirmed estimates beat estimated ones, then highest weighted score.
func (r *EstimatesRepository) FindForTimestamp(ctx context.Context, filmID string, t int) (domain.Estimate, domain.Shot, error) {
	query := fmt.Sprintf(`
        SELECT %s,
               s.id, s.film_id, s.timestamp_start, s.timestamp_end, s.label, s.created_at
        FROM estimates e
        JOIN shots s ON s.id = e.shot_id
        WHERE s.film_id = $1
          AND s.timestamp_start <= $2
          AND s.timestamp_end >= $2
          AND e.status <> 'rejected'
        ORDER BY (s.timestamp_end - s.timestamp_start) ASC,
                 (e.status = 'confirmed') DESC,
                 e.score DESC,
                 e.created_at ASC
        LIMIT 1
    `, prefixColumns("e", estimateColumns))

	var (
		est  domain.Estimate
		shot domain.Shot
	)
	err := r.db.QueryRow(ctx, query, filmID, t).Scan(
		&est.ID,
		&est.ShotID,
		&est.Lat,
		&est.Lng,
		&est.Address,
		&est.Confidence,
		&est.Status,
		&est.Score,
		&est.CreatedBy,
		&est.CreatedAt,
		&est.UpdatedAt,
		&est.ConfirmedAt,
		&shot.ID,
		&shot.FilmID,
		&shot.TimestampStart,
		&shot.TimestampEnd,
		&shot.Label,
		&shot.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Estimate{}, domain.Shot{}, ErrNotFound
		}
		return domain.Estimate{}, domain.Shot{}, err
	}
	return est, shot, nil
}

// SetScore overwrites the cumulative weighted score with a freshly
// recomputed value.
func (r *EstimatesRepository) SetScore(ctx context.Context, id string, score float64) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE estimates SET score = $2, updated_at = now() WHERE id = $1
    `, id, score)
	if err != nil {
		return fmt.Errorf("set estimate score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Confirm transitions an estimate to confirmed. The confirmation timestamp
// is set once and never overwritten.
func (r *EstimatesRepository) Confirm(ctx context.Context, id string) (domain.Estimate, error) {
	query := fmt.Sprintf(`
        UPDATE estimates
        SET status = 'confirmed',
            confirmed_at = COALESCE(confirmed_at, now()),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, estimateColumns)
	est, err := scanEstimate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Estimate{}, ErrNotFound
		}
		return domain.Estimate{}, err
	}
	return est, nil
}

// Reject transitions an estimate to rejected.
func (r *EstimatesRepository) Reject(ctx context.Context, id string) (domain.Estimate, error) {
	query := fmt.Sprintf(`
        UPDATE estimates
        SET status = 'rejected',
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, estimateColumns)
	est, err := scanEstimate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Estimate{}, ErrNotFound
		}
		return domain.Estimate{}, err
	}
	return est, nil
}

// InsertEvidence attaches an immutable evidence note to an estimate.
func (r *EstimatesRepository) InsertEvidence(ctx context.Context, params EvidenceCreateParams) (domain.Evidence, error) {
	var ev domain.Evidence
	err := r.db.QueryRow(ctx, `
        INSERT INTO evidence (id, estimate_id, source_type, source_url, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, estimate_id, source_type, source_url, note, created_at
    `, uuid.NewString(), params.EstimateID, params.SourceType, params.SourceURL, params.Note).Scan(
		&ev.ID,
		&ev.EstimateID,
		&ev.SourceType,
		&ev.SourceURL,
		&ev.Note,
		&ev.CreatedAt,
	)
	if err != nil {
		return domain.Evidence{}, fmt.Errorf("insert evidence: %w", err)
	}
	return ev, nil
}

// ListEvidence returns all evidence attached to an estimate, oldest first.
func (r *EstimatesRepository) ListEvidence(ctx context.Context, estimateID string) ([]domain.Evidence, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, estimate_id, source_type, source_url, note, created_at
        FROM evidence
        WHERE estimate_id = $1
        ORDER BY created_at ASC, id ASC
    `, estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Evidence, 0)
	for rows.Next() {
		var ev domain.Evidence
		if err := rows.Scan(&ev.ID, &ev.EstimateID, &ev.SourceType, &ev.SourceURL, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias so column constants stay reusable in joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func scanEstimate(row pgx.Row) (domain.Estimate, error) {
	var est domain.Estimate
	err := row.Scan(
		&est.ID,
		&est.ShotID,
		&est.Lat,
		&est.Lng,
		&est.Address,
		&est.Confidence,
		&est.Status,
		&est.Score,
		&est.CreatedBy,
		&est.CreatedAt,
		&est.UpdatedAt,
		&est.ConfirmedAt,
	)
	if err != nil {
		return domain.Estimate{}, err
	}
	return est, nil
}
