package domain

import "time"

// User is a contributor. Reputation only ever grows, and only through
// confirmation of estimates the user authored.
type User struct {
	ID         string
	Handle     string
	Reputation float64
	CreatedAt  time.Time
}
