package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenepin/scenepin/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository methods run standalone or inside a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Films     *FilmsRepository
	Shots     *ShotsRepository
	Estimates *EstimatesRepository
	Ratings   *RatingsRepository
	Users     *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithQuerier(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return NewWithQuerier(pool)
}

// NewWithQuerier binds repositories to any querier, typically a single
// connection in one-shot commands.
func NewWithQuerier(q Querier) *Repository {
	return &Repository{
		Films:     &FilmsRepository{db: q},
		Shots:     &ShotsRepository{db: q},
		Estimates: &EstimatesRepository{db: q},
		Ratings:   &RatingsRepository{db: q},
		Users:     &UsersRepository{db: q},
	}
}

// WithTx returns a view of the repositories bound to the given transaction.
// The receiver is unchanged.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return NewWithQuerier(tx)
}
