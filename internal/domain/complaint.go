package domain

import (
	"fmt"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusRejected   ComplaintStatus = "REJECTED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

// Valid reports whether the value is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved,
		ComplaintStatusRejected, ComplaintStatusClosed:
		return true
	}
	return false
}

// UrgencyLevel enumerates citizen-declared urgency.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

// Valid reports whether the value is a known urgency level.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Complaint is the aggregate for citizen grievances. Description doubles as
// an append-only audit log: official remarks are appended as timestamped
// suffixes and never rewrite earlier content.
type Complaint struct {
	ID                  string
	ReferenceKey        string
	Title               string
	Description         string
	CategoryID          string
	Urgency             UrgencyLevel
	Status              ComplaintStatus
	WardID              string
	CitizenID           string
	Anonymous           bool
	Address             *string
	GeoPoint            *GeoPoint
	CreatedAt           time.Time
	LastStatusChangedAt time.Time
}

// Remark labels distinguish who appended an audit line.
const (
	RemarkLabelOfficer = "Officer Remark"
	RemarkLabelAdmin   = "ADMIN OVERRIDE"
)

// AppendRemark returns the description with an attributable audit line
// appended. The line format is stable; dashboards parse it.
func AppendRemark(description string, at time.Time, label, remarks string) string {
	return fmt.Sprintf("%s\n\n[%s] %s: %s", description, at.UTC().Format(time.RFC3339), label, remarks)
}
