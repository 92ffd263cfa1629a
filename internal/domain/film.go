package domain

import "time"

// Film is a catalog entry from the seed list. Rows are immutable after
// seeding except for search score recomputation, which happens offline.
type Film struct {
	ID             string
	Title          string
	WikipediaTitle *string
	WikidataID     *string
	SeedSegment    *string
	GoatScore      *int
	Pageviews12m   *int64
	SearchScore    *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Shot is an inclusive time segment [TimestampStart, TimestampEnd] in seconds
// belonging to exactly one film. Shots may overlap; the resolver prefers the
// narrowest covering interval.
type Shot struct {
	ID             string
	FilmID         string
	TimestampStart int
	TimestampEnd   int
	Label          string
	CreatedAt      time.Time
}

// Span returns the width of the shot interval in seconds.
func (s Shot) Span() int {
	return s.TimestampEnd - s.TimestampStart
}

// Covers reports whether t falls inside the shot interval.
func (s Shot) Covers(t int) bool {
	return s.TimestampStart <= t && t <= s.TimestampEnd
}
