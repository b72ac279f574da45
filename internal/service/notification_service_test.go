package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
)

func statusEvent(role domain.Role, status domain.ComplaintStatus, email string) events.Event {
	return events.Event{
		ID:          "evt-1",
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: "complaint-1",
		Actor:       events.Actor{Role: role, UserID: "actor-1"},
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus:    domain.ComplaintStatusPending,
			NewStatus:    status,
			Title:        "Pothole on main road",
			Description:  "Deep pothole near the bus stop",
			Remarks:      "Filled and leveled",
			CitizenEmail: email,
		},
	}
}

func TestNotificationMatrix(t *testing.T) {
	cases := []struct {
		name     string
		role     domain.Role
		status   domain.ComplaintStatus
		expected bool
	}{
		{"officer resolved", domain.RoleOfficer, domain.ComplaintStatusResolved, true},
		{"officer rejected", domain.RoleOfficer, domain.ComplaintStatusRejected, true},
		{"officer in progress", domain.RoleOfficer, domain.ComplaintStatusInProgress, true},
		{"officer closed", domain.RoleOfficer, domain.ComplaintStatusClosed, false},
		{"officer pending", domain.RoleOfficer, domain.ComplaintStatusPending, false},
		{"admin resolved", domain.RoleAdmin, domain.ComplaintStatusResolved, true},
		{"admin rejected", domain.RoleAdmin, domain.ComplaintStatusRejected, true},
		{"admin in progress", domain.RoleAdmin, domain.ComplaintStatusInProgress, false},
		{"citizen resolved", domain.RoleCitizen, domain.ComplaintStatusResolved, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mailer := &recordingMailer{}
			svc := NewNotificationService(mailer, nil)
			dispatcher := events.NewInMemoryDispatcher()
			svc.RegisterHandlers(dispatcher)

			err := dispatcher.Publish(context.Background(), statusEvent(tc.role, tc.status, "citizen@example.com"))
			require.NoError(t, err)
			if tc.expected {
				require.Len(t, mailer.sent, 1)
				assert.Equal(t, "citizen@example.com", mailer.sent[0].To)
				assert.Equal(t, string(tc.status), mailer.sent[0].Status)
				assert.Equal(t, "Filled and leveled", mailer.sent[0].Remarks)
			} else {
				assert.Empty(t, mailer.sent)
			}
		})
	}
}

func TestNotificationSkipsEmptyEmail(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewNotificationService(mailer, nil)
	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(),
		statusEvent(domain.RoleOfficer, domain.ComplaintStatusResolved, ""))
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestNotificationDeliveryFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{Err: errors.New("smtp refused")}
	svc := NewNotificationService(mailer, nil)
	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(),
		statusEvent(domain.RoleAdmin, domain.ComplaintStatusRejected, "citizen@example.com"))
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}
