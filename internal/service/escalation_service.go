package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/config"
	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/repository"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// EscalationService runs the stall sweep: open complaints whose active
// assignment has aged past the threshold get a single, permanent escalation
// record addressed to the configured administrator.
type EscalationService struct {
	complaints  repository.ComplaintRepository
	escalations repository.EscalationRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	cfg         config.EscalationConfig
	logger      *zap.Logger
}

// EscalationDependencies bundles the sweep collaborators.
type EscalationDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	EscalationRepo repository.EscalationRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Config         config.EscalationConfig
	Logger         *zap.Logger
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationService{
		complaints:  deps.ComplaintRepo,
		escalations: deps.EscalationRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		cfg:         deps.Config,
		logger:      logger,
	}
}

// Sweep escalates every stalled complaint exactly once and returns how many
// new escalations were recorded. Already-escalated complaints surface as
// store conflicts and are skipped silently, so concurrent sweeps stay safe.
// A sweep with no valid recipient is a no-op, logged at warn.
func (s *EscalationService) Sweep(ctx context.Context, now time.Time) (int, error) {
	recipient, err := s.resolveRecipient(ctx)
	if err != nil {
		return 0, err
	}
	if recipient == nil {
		s.logger.Warn("escalation sweep skipped: no escalation recipient available")
		return 0, nil
	}

	cutoff := now.Add(-s.cfg.StallThreshold())
	stalled, err := s.complaints.ListStalled(ctx, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	escalated := 0
	for _, candidate := range stalled {
		escalation := &domain.Escalation{
			ComplaintID:   candidate.ComplaintID,
			EscalatedFrom: candidate.OfficerID,
			EscalatedTo:   recipient.ID,
			Reason:        domain.EscalationReasonStalled,
		}
		inserted, err := s.escalations.Create(ctx, escalation)
		if err != nil {
			return escalated, apperrors.MapError(err)
		}
		if !inserted {
			continue
		}
		escalated++
		s.logger.Info("complaint escalated",
			zap.String("complaint_id", candidate.ComplaintID),
			zap.String("officer_id", candidate.OfficerID),
			zap.Time("assigned_at", candidate.AssignedAt))

		s.publishEscalated(ctx, escalation)
	}
	return escalated, nil
}

// RecentEscalations lists escalations for the admin dashboard.
func (s *EscalationService) RecentEscalations(ctx context.Context, limit, offset int) ([]domain.Escalation, error) {
	list, err := s.escalations.ListRecent(ctx, limit, offset)
	return list, apperrors.MapError(err)
}

// resolveRecipient picks the admin who receives escalations. The configured
// address wins when it names an active admin; otherwise the oldest admin
// account serves as fallback. nil with no error means nobody qualifies.
func (s *EscalationService) resolveRecipient(ctx context.Context) (*domain.User, error) {
	if s.cfg.RecipientEmail != "" {
		user, err := s.users.GetByEmail(ctx, s.cfg.RecipientEmail)
		switch {
		case err == nil:
			if user.Role == domain.RoleAdmin && user.IsActive {
				return user, nil
			}
			s.logger.Warn("configured escalation recipient is not an active admin",
				zap.String("email", s.cfg.RecipientEmail))
		case errors.Is(err, pgx.ErrNoRows):
			s.logger.Warn("configured escalation recipient not found",
				zap.String("email", s.cfg.RecipientEmail))
		default:
			return nil, apperrors.MapError(err)
		}
	}

	user, err := s.users.FirstByRole(ctx, domain.RoleAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

func (s *EscalationService) publishEscalated(ctx context.Context, escalation *domain.Escalation) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintEscalated,
		ComplaintID: escalation.ComplaintID,
		Actor:       events.Actor{Role: domain.RoleAdmin, UserID: "system"},
		Timestamp:   time.Now(),
		Payload: events.ComplaintEscalatedPayload{
			EscalatedFrom: escalation.EscalatedFrom,
			EscalatedTo:   escalation.EscalatedTo,
			Reason:        escalation.Reason,
		},
	})
}
