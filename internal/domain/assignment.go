package domain

import "time"

// Assignment links a complaint to the officer responsible for it. The active
// row marks the current owner; deactivated rows remain as history. At most
// one active assignment exists per complaint (enforced by the store).
type Assignment struct {
	ID          string
	ComplaintID string
	OfficerID   string
	IsActive    bool
	AssignedAt  time.Time
}
