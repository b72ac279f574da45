package domain

import "time"

// Suggestion is a citizen improvement proposal, optionally scoped to a ward.
// Unlike complaints, suggestions have no lifecycle; admins mark them
// reviewed with a response and citizens upvote them.
type Suggestion struct {
	ID            string
	Title         string
	Description   string
	Category      string
	WardID        *string
	CitizenID     string
	Upvotes       int
	IsReviewed    bool
	AdminResponse *string
	CreatedAt     time.Time
}
