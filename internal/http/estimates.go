package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scenepin/scenepin/internal/location"
)

type evidenceRequest struct {
	SourceType string  `json:"sourceType"`
	SourceURL  *string `json:"sourceUrl"`
	Note       *string `json:"note"`
}

type estimateCreateRequest struct {
	Timestamp  *int              `json:"timestamp"`
	Lat        *float64          `json:"lat"`
	Lng        *float64          `json:"lng"`
	W3W        *string           `json:"w3w"`
	Confidence string            `json:"confidence"`
	Evidence   []evidenceRequest `json:"evidence"`
}

type estimateCreateResponse struct {
	EstimateID string  `json:"estimateId"`
	ShotID     string  `json:"shotId"`
	Status     string  `json:"status"`
	Address    *string `json:"address,omitempty"`
}

type ratingRequest struct {
	Score   *int    `json:"score"`
	Comment *string `json:"comment"`
}

type ratingResponse struct {
	Score       float64 `json:"score"`
	Weighted    float64 `json:"weighted"`
	RatingCount int64   `json:"ratingCount"`
	Status      string  `json:"status"`
}

type evidenceResponse struct {
	SourceType string  `json:"sourceType"`
	SourceURL  *string `json:"sourceUrl,omitempty"`
	Note       *string `json:"note,omitempty"`
}

type estimateViewResponse struct {
	EstimateID  string             `json:"estimateId"`
	ShotID      string             `json:"shotId"`
	Lat         float64            `json:"lat"`
	Lng         float64            `json:"lng"`
	Address     *string            `json:"address,omitempty"`
	Confidence  string             `json:"confidence"`
	Status      string             `json:"status"`
	Score       float64            `json:"score"`
	RatingCount int64              `json:"ratingCount"`
	Shot        shotResponse       `json:"shot"`
	Evidence    []evidenceResponse `json:"evidence"`
	ConfirmedAt *time.Time         `json:"confirmedAt,omitempty"`
}

type shotResponse struct {
	TimestampStart int    `json:"timestampStart"`
	TimestampEnd   int    `json:"timestampEnd"`
	Label          string `json:"label"`
}

func (s *Server) handleSubmitEstimate(w http.ResponseWriter, r *http.Request) {
	title, err := decodeTitleParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req estimateCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Timestamp == nil || req.Lat == nil || req.Lng == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "timestamp, lat, and lng are required")
		return
	}

	evidence := make([]location.EvidenceInput, 0, len(req.Evidence))
	for _, ev := range req.Evidence {
		evidence = append(evidence, location.EvidenceInput{
			SourceType: ev.SourceType,
			SourceURL:  normalizeStringPtr(ev.SourceURL),
			Note:       ev.Note,
		})
	}

	result, err := s.locations.SubmitEstimate(r.Context(), location.SubmitEstimateInput{
		Title:      title,
		Handle:     contributorHandle(r),
		Timestamp:  *req.Timestamp,
		Lat:        *req.Lat,
		Lng:        *req.Lng,
		W3W:        normalizeStringPtr(req.W3W),
		Confidence: strings.TrimSpace(req.Confidence),
		Evidence:   evidence,
	})
	if err != nil {
		s.respondLocationError(w, err, "Failed to submit estimate")
		return
	}

	w.Header().Set("Location", "/estimates/"+result.EstimateID)
	s.respondJSON(w, http.StatusCreated, estimateCreateResponse{
		EstimateID: result.EstimateID,
		ShotID:     result.ShotID,
		Status:     string(result.Status),
		Address:    result.Address,
	})
}

func (s *Server) handleLookupEstimate(w http.ResponseWriter, r *http.Request) {
	title, err := decodeTitleParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("t"))
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing t parameter")
		return
	}
	timestamp, err := strconv.Atoi(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid t value")
		return
	}

	view, err := s.locations.LookupEstimate(r.Context(), title, timestamp)
	if err != nil {
		s.respondLocationError(w, err, "Failed to look up estimate")
		return
	}
	s.respondJSON(w, http.StatusOK, toEstimateViewResponse(view))
}

func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	view, err := s.locations.GetEstimate(r.Context(), chi.URLParam(r, "estimateID"))
	if err != nil {
		s.respondLocationError(w, err, "Failed to fetch estimate")
		return
	}
	s.respondJSON(w, http.StatusOK, toEstimateViewResponse(view))
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Score == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "score is required")
		return
	}

	result, err := s.locations.SubmitRating(r.Context(), location.SubmitRatingInput{
		EstimateID: chi.URLParam(r, "estimateID"),
		Handle:     contributorHandle(r),
		Score:      *req.Score,
		Comment:    req.Comment,
	})
	if err != nil {
		s.respondLocationError(w, err, "Failed to submit rating")
		return
	}

	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, ratingResponse{
		Score:       result.Score,
		Weighted:    result.Weighted,
		RatingCount: result.RatingCount,
		Status:      string(result.Status),
	})
}

func toEstimateViewResponse(view location.EstimateView) estimateViewResponse {
	evidence := make([]evidenceResponse, 0, len(view.Evidence))
	for _, ev := range view.Evidence {
		evidence = append(evidence, evidenceResponse{
			SourceType: ev.SourceType,
			SourceURL:  ev.SourceURL,
			Note:       ev.Note,
		})
	}
	return estimateViewResponse{
		EstimateID:  view.Estimate.ID,
		ShotID:      view.Estimate.ShotID,
		Lat:         view.Estimate.Lat,
		Lng:         view.Estimate.Lng,
		Address:     view.Estimate.Address,
		Confidence:  string(view.Estimate.Confidence),
		Status:      string(view.Estimate.Status),
		Score:       view.Estimate.Score,
		RatingCount: view.Summary.Count,
		Shot: shotResponse{
			TimestampStart: view.Shot.TimestampStart,
			TimestampEnd:   view.Shot.TimestampEnd,
			Label:          view.Shot.Label,
		},
		Evidence:    evidence,
		ConfirmedAt: view.Estimate.ConfirmedAt,
	}
}
