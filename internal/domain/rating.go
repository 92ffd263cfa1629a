package domain

import "time"

// Rating is a single contributor's vote on an estimate. Weight is captured
// when the vote is cast and refreshed on re-rate; it is never recomputed
// retroactively when the contributor's reputation changes later.
type Rating struct {
	EstimateID string
	UserID     string
	Score      int
	Weight     float64
	Comment    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RatingSummary provides the aggregate statistics the confirmation state
// machine evaluates.
type RatingSummary struct {
	Weighted float64
	Count    int64
}
