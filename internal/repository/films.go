package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scenepin/scenepin/internal/domain"
)

// FilmsRepository provides persistence helpers for the film catalog.
type FilmsRepository struct {
	db Querier
}

const filmColumns = `
    id,
    title,
    wikipedia_title,
    wikidata_id,
    seed_segment,
    goat_score,
    pageviews_12m,
    search_score,
    created_at,
    updated_at
`

// FilmCreateParams bundles the fields required to create a film.
type FilmCreateParams struct {
	Title          string
	WikipediaTitle *string
	WikidataID     *string
	SeedSegment    *string
	GoatScore      *int
	Pageviews12m   *int64
	SearchScore    *float64
}

// FilmListFilters encapsulates search and pagination options.
type FilmListFilters struct {
	Query   *string
	Segment *string
	Limit   int
	Cursor  *FilmCursor
}

// FilmCursor allows stable pagination by created_at/id.
type FilmCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// FilmListResult returns the paginated payload.
type FilmListResult struct {
	Items      []domain.Film
	NextCursor *string
}

// Create inserts a new film row and returns the stored entity.
func (r *FilmsRepository) Create(ctx context.Context, params FilmCreateParams) (domain.Film, error) {
	query := fmt.Sprintf(`
        INSERT INTO films (id, title, wikipedia_title, wikidata_id, seed_segment, goat_score, pageviews_12m, search_score)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, filmColumns)

	row := r.db.QueryRow(ctx, query, uuid.NewString(), params.Title,
		params.WikipediaTitle, params.WikidataID, params.SeedSegment,
		params.GoatScore, params.Pageviews12m, params.SearchScore)
	return scanFilm(row)
}

// UpsertSeed inserts a seed-list row, refreshing catalog metadata when the
// wikidata identifier already exists. Rows without a wikidata id always
// insert fresh.
func (r *FilmsRepository) UpsertSeed(ctx context.Context, params FilmCreateParams) (domain.Film, error) {
	query := fmt.Sprintf(`
        INSERT INTO films (id, title, wikipedia_title, wikidata_id, seed_segment, goat_score, pageviews_12m, search_score)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (wikidata_id) WHERE wikidata_id IS NOT NULL
        DO UPDATE SET
            title = EXCLUDED.title,
            wikipedia_title = EXCLUDED.wikipedia_title,
            seed_segment = EXCLUDED.seed_segment,
            goat_score = EXCLUDED.goat_score,
            pageviews_12m = EXCLUDED.pageviews_12m,
            search_score = EXCLUDED.search_score,
            updated_at = now()
        RETURNING %s
    `, filmColumns)

	row := r.db.QueryRow(ctx, query, uuid.NewString(), params.Title,
		params.WikipediaTitle, params.WikidataID, params.SeedSegment,
		params.GoatScore, params.Pageviews12m, params.SearchScore)
	return scanFilm(row)
}

// GetByID fetches a film by its identifier.
func (r *FilmsRepository) GetByID(ctx context.Context, id string) (domain.Film, error) {
	query := fmt.Sprintf(`SELECT %s FROM films WHERE id = $1`, filmColumns)
	film, err := scanFilm(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Film{}, ErrNotFound
		}
		return domain.Film{}, err
	}
	return film, nil
}

// GetByTitle fetches the film matching a title. Duplicate titles (remakes)
// resolve to the highest-ranked catalog entry.
func (r *FilmsRepository) GetByTitle(ctx context.Context, title string) (domain.Film, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM films
        WHERE title = $1
        ORDER BY search_score DESC NULLS LAST, created_at ASC
        LIMIT 1
    `, filmColumns)
	film, err := scanFilm(r.db.QueryRow(ctx, query, title))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Film{}, ErrNotFound
		}
		return domain.Film{}, err
	}
	return film, nil
}

// List returns films that match the provided filters.
func (r *FilmsRepository) List(ctx context.Context, filters FilmListFilters) (FilmListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		p1 := arg(q)
		p2 := arg(q)
		where = append(where, fmt.Sprintf("(title ILIKE %s OR wikipedia_title ILIKE %s)", p1, p2))
	}
	if filters.Segment != nil && strings.TrimSpace(*filters.Segment) != "" {
		where = append(where, fmt.Sprintf("seed_segment = %s", arg(strings.TrimSpace(*filters.Segment))))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(filmColumns)
	queryBuilder.WriteString(" FROM films")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return FilmListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Film, 0)
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return FilmListResult{}, err
		}
		items = append(items, film)
	}
	if err := rows.Err(); err != nil {
		return FilmListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(FilmCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return FilmListResult{}, err
		}
		nextCursor = &token
	}

	return FilmListResult{Items: items, NextCursor: nextCursor}, nil
}

func scanFilm(row pgx.Row) (domain.Film, error) {
	var film domain.Film
	err := row.Scan(
		&film.ID,
		&film.Title,
		&film.WikipediaTitle,
		&film.WikidataID,
		&film.SeedSegment,
		&film.GoatScore,
		&film.Pageviews12m,
		&film.SearchScore,
		&film.CreatedAt,
		&film.UpdatedAt,
	)
	if err != nil {
		return domain.Film{}, err
	}
	return film, nil
}

func encodeCursor(c FilmCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a FilmCursor.
func DecodeCursor(token string) (*FilmCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor FilmCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
