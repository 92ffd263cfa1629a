package httpserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/scenepin/scenepin/internal/domain"
	"github.com/scenepin/scenepin/internal/repository"
)

type filmCreateRequest struct {
	Title          string   `json:"title"`
	WikipediaTitle *string  `json:"wikipediaTitle"`
	WikidataID     *string  `json:"wikidataId"`
	SeedSegment    *string  `json:"seedSegment"`
	GoatScore      *int     `json:"goatScore"`
	Pageviews12m   *int64   `json:"pageviews12m"`
	SearchScore    *float64 `json:"searchScore"`
}

type filmResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	WikipediaTitle *string  `json:"wikipediaTitle,omitempty"`
	WikidataID     *string  `json:"wikidataId,omitempty"`
	SeedSegment    *string  `json:"seedSegment,omitempty"`
	SearchScore    *float64 `json:"searchScore,omitempty"`
}

type filmListResponse struct {
	Items      []filmResponse `json:"items"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}

func (s *Server) handleListFilms(w http.ResponseWriter, r *http.Request) {
	filters, err := buildFilmFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Films.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list films error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list films")
		return
	}

	items := make([]filmResponse, 0, len(result.Items))
	for _, film := range result.Items {
		items = append(items, toFilmResponse(film))
	}

	resp := filmListResponse{Items: items}
	if result.NextCursor != nil {
		resp.NextCursor = result.NextCursor
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func buildFilmFilters(query url.Values) (repository.FilmListFilters, error) {
	var filters repository.FilmListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("segment")); val != "" {
		filters.Segment = &val
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, errInvalidQueryValue("limit")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, errInvalidQueryValue("cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleCreateFilm(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req filmCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}

	film, err := s.repo.Films.Create(r.Context(), repository.FilmCreateParams{
		Title:          strings.TrimSpace(req.Title),
		WikipediaTitle: normalizeStringPtr(req.WikipediaTitle),
		WikidataID:     normalizeStringPtr(req.WikidataID),
		SeedSegment:    normalizeStringPtr(req.SeedSegment),
		GoatScore:      req.GoatScore,
		Pageviews12m:   req.Pageviews12m,
		SearchScore:    req.SearchScore,
	})
	if err != nil {
		s.logger.Printf("create film error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create film")
		return
	}

	w.Header().Set("Location", "/films/"+url.PathEscape(film.Title))
	s.respondJSON(w, http.StatusCreated, toFilmResponse(film))
}

func toFilmResponse(film domain.Film) filmResponse {
	return filmResponse{
		ID:             film.ID,
		Title:          film.Title,
		WikipediaTitle: film.WikipediaTitle,
		WikidataID:     film.WikidataID,
		SeedSegment:    film.SeedSegment,
		SearchScore:    film.SearchScore,
	}
}

func normalizeStringPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}

type queryValueError struct {
	field string
}

func (e queryValueError) Error() string {
	return "invalid " + e.field + " value"
}

func errInvalidQueryValue(field string) error {
	return queryValueError{field: field}
}
