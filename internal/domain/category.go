package domain

import "time"

// Category classifies complaints (roads, sanitation, water supply, ...).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
