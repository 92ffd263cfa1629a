package domain

import "time"

// EstimateStatus is the lifecycle state of an estimate. Transitions are
// forward-only: estimated -> confirmed and estimated -> rejected; both
// targets are terminal.
type EstimateStatus string

const (
	StatusEstimated EstimateStatus = "estimated"
	StatusConfirmed EstimateStatus = "confirmed"
	StatusRejected  EstimateStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s EstimateStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// Confidence is the submitter's own confidence band for an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ValidConfidence reports whether c is one of the accepted bands.
func ValidConfidence(c Confidence) bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Estimate is a candidate filming location for a shot. Score is the weighted
// sum over all current ratings and is always recomputed in full, never
// incrementally adjusted.
type Estimate struct {
	ID          string
	ShotID      string
	Lat         float64
	Lng         float64
	Address     *string
	Confidence  Confidence
	Status      EstimateStatus
	Score       float64
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}

// Evidence is an immutable note attached to an estimate.
type Evidence struct {
	ID         string
	EstimateID string
	SourceType string
	SourceURL  *string
	Note       *string
	CreatedAt  time.Time
}
