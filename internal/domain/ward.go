package domain

import "time"

// District is a parent administrative geography grouping wards.
type District struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Ward is the smallest administrative geography owning complaints and
// officers. Its polygon boundary lives in the store as PostGIS geometry and
// is only consulted through containment queries, never materialized here.
type Ward struct {
	ID         string
	Name       string
	DistrictID string
	Population int64
	CreatedAt  time.Time
}
