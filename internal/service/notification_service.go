package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/mail"
)

// NotificationService turns lifecycle events into citizen emails. It runs
// after commit, off the write path: a delivery failure is logged and never
// surfaces to the actor who changed the complaint.
type NotificationService struct {
	mailer mail.Mailer
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: mailer, logger: logger}
}

// RegisterHandlers subscribes the service to the dispatcher.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintStatusChanged, s.handleStatusChanged)
}

func (s *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		s.logger.Warn("unexpected payload type for status change event",
			zap.String("event_id", event.ID))
		return nil
	}
	if !notifiable(event.Actor.Role, payload.NewStatus) {
		return nil
	}
	if payload.CitizenEmail == "" {
		s.logger.Warn("citizen email unavailable; skipping notification",
			zap.String("complaint_id", event.ComplaintID))
		return nil
	}

	update := mail.StatusUpdate{
		To:          payload.CitizenEmail,
		Subject:     fmt.Sprintf("Complaint update: %s", payload.NewStatus),
		Title:       payload.Title,
		Description: payload.Description,
		Status:      string(payload.NewStatus),
		Remarks:     payload.Remarks,
	}
	if err := s.mailer.SendStatusUpdate(ctx, update); err != nil {
		s.logger.Error("failed to send status notification",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("status", string(payload.NewStatus)),
			zap.Error(err))
	}
	return nil
}

// notifiable decides whether a transition warrants a citizen email. Officer
// actions notify on progress and terminal outcomes; admin overrides notify
// on terminal outcomes only.
func notifiable(actorRole domain.Role, status domain.ComplaintStatus) bool {
	switch actorRole {
	case domain.RoleOfficer:
		return status == domain.ComplaintStatusResolved ||
			status == domain.ComplaintStatusRejected ||
			status == domain.ComplaintStatusInProgress
	case domain.RoleAdmin:
		return status == domain.ComplaintStatusResolved ||
			status == domain.ComplaintStatusRejected
	default:
		return false
	}
}
