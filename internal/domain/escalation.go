package domain

import "time"

// EscalationReasonStalled is the fixed reason recorded by the sweeper.
const EscalationReasonStalled = "Auto-escalation: No resolution in 30 hours"

// Escalation records a stalled complaint being raised for administrative
// attention. At most one escalation ever exists per complaint; the store
// enforces this with a uniqueness constraint on the complaint reference.
type Escalation struct {
	ID            string
	ComplaintID   string
	EscalatedFrom string
	EscalatedTo   string
	Reason        string
	CreatedAt     time.Time
}
