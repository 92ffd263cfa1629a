package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scenepin/scenepin/internal/domain"
)

// UsersRepository provides persistence helpers for contributors.
type UsersRepository struct {
	db Querier
}

const userColumns = `
    id,
    handle,
    reputation,
    created_at
`

// GetOrCreateByHandle resolves a contributor handle to its user row, creating
// the row on first contact. The no-op conflict update makes RETURNING yield
// the existing row.
func (r *UsersRepository) GetOrCreateByHandle(ctx context.Context, handle string) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, handle)
        VALUES ($1,$2)
        ON CONFLICT (handle) DO UPDATE SET handle = EXCLUDED.handle
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, uuid.NewString(), handle))
	if err != nil {
		return domain.User{}, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

// GetByID fetches a user by its identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// AddReputation adjusts a user's reputation by delta and returns the new
// value.
func (r *UsersRepository) AddReputation(ctx context.Context, id string, delta float64) (float64, error) {
	var reputation float64
	err := r.db.QueryRow(ctx, `
        UPDATE users SET reputation = reputation + $2 WHERE id = $1
        RETURNING reputation
    `, id, delta).Scan(&reputation)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("add reputation: %w", err)
	}
	return reputation, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Handle,
		&user.Reputation,
		&user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
