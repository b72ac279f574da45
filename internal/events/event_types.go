package events

import (
	"time"

	"github.com/civic-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintEscalated     EventType = "complaint_escalated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID string      `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	WardID   string              `json:"ward_id"`
	Title    string              `json:"title"`
	Urgency  domain.UrgencyLevel `json:"urgency"`
	Assigned bool                `json:"assigned"`
}

// ComplaintStatusChangedPayload carries what the notification worker needs
// to decide on and compose a citizen mail without re-reading the store.
// Description is the text before any remark was appended; the remark
// travels in its own field.
type ComplaintStatusChangedPayload struct {
	OldStatus    domain.ComplaintStatus `json:"old_status"`
	NewStatus    domain.ComplaintStatus `json:"new_status"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Remarks      string                 `json:"remarks,omitempty"`
	CitizenEmail string                 `json:"citizen_email,omitempty"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	EscalatedFrom string `json:"escalated_from"`
	EscalatedTo   string `json:"escalated_to"`
	Reason        string `json:"reason"`
}
