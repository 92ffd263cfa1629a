package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scenepin/scenepin/internal/location"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondLocationError maps the location error taxonomy onto the HTTP error
// envelope. Anything unclassified is an opaque store failure.
func (s *Server) respondLocationError(w http.ResponseWriter, err error, fallback string) {
	var invalid *location.InvalidInputError
	switch {
	case errors.Is(err, location.ErrUnauthenticated):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
	case errors.As(err, &invalid):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", invalid.Reason)
	case errors.Is(err, location.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("%s: %v", fallback, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

// contributorHandle extracts the authenticated contributor identity supplied
// by the out-of-scope identity layer. Empty means unauthenticated.
func contributorHandle(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Contributor"))
}

func decodeTitleParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "title")
	if raw == "" {
		return "", fmt.Errorf("missing title parameter")
	}
	title, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid title parameter")
	}
	return title, nil
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}
