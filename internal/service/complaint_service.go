package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/repository"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// ComplaintService mediates all complaint state changes, enforcing who may
// see and alter what.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	assignments repository.AssignmentRepository
	wards       repository.WardRepository
	categories  repository.CategoryRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	AssignmentRepo repository.AssignmentRepository
	WardRepo       repository.WardRepository
	CategoryRepo   repository.CategoryRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		assignments: deps.AssignmentRepo,
		wards:       deps.WardRepo,
		categories:  deps.CategoryRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Actor identifies who performs a lifecycle operation. WardID is set for
// officers only.
type Actor struct {
	ID     string
	Role   domain.Role
	WardID *string
}

// ActorFromUser derives an Actor from an authenticated account.
func ActorFromUser(user *domain.User) Actor {
	return Actor{ID: user.ID, Role: user.Role, WardID: user.WardID}
}

// CreateComplaintInput describes complaint creation payload. Exactly one of
// WardID or Location must resolve to a ward.
type CreateComplaintInput struct {
	Title       string
	Description string
	CategoryID  string
	Urgency     domain.UrgencyLevel
	WardID      *string
	Location    *domain.GeoPoint
	Address     *string
	Anonymous   bool
}

// Create files a new complaint for a citizen. The ward comes from the
// explicit selection or from boundary containment of the given coordinates;
// neither resolving is a validation failure. Storing the geographic point
// itself is best-effort and never fails the create.
func (s *ComplaintService) Create(ctx context.Context, citizenID string, input CreateComplaintInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(title) < 5 {
		return nil, apperrors.NewValidationError("title must be at least 5 characters", nil)
	}
	if utf8.RuneCountInString(description) < 10 {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", nil)
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyMedium
	}
	if !urgency.Valid() {
		return nil, apperrors.NewValidationError("unknown urgency level", map[string]any{"urgency": input.Urgency})
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}

	ward, err := s.resolveWard(ctx, input)
	if err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		ReferenceKey: generateReferenceKey(),
		Title:        title,
		Description:  description,
		CategoryID:   input.CategoryID,
		Urgency:      urgency,
		Status:       domain.ComplaintStatusPending,
		WardID:       ward.ID,
		CitizenID:    citizenID,
		Anonymous:    input.Anonymous,
		Address:      input.Address,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Location != nil {
		if err := s.complaints.SetGeoPoint(ctx, complaint.ID, *input.Location); err != nil {
			s.logger.Warn("failed to store complaint geo point",
				zap.String("complaint_id", complaint.ID), zap.Error(err))
		} else {
			complaint.GeoPoint = input.Location
		}
	}

	assigned := s.assignResidentOfficer(ctx, complaint)

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{Role: domain.RoleCitizen, UserID: citizenID},
		Payload: events.ComplaintCreatedPayload{
			WardID:   complaint.WardID,
			Title:    complaint.Title,
			Urgency:  complaint.Urgency,
			Assigned: assigned,
		},
	})
	return complaint, nil
}

// UpdateStatus applies a status transition. Officers are confined to their
// own ward; admins bypass the ward check. Remarks, when present, are
// appended to the description log with an attributable prefix. The status
// field and its timestamp move together in one store write.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor Actor, complaintID string, newStatus domain.ComplaintStatus, remarks string) (*domain.Complaint, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	complaint, err := s.loadScoped(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	priorDescription := complaint.Description
	description := priorDescription
	if strings.TrimSpace(remarks) != "" {
		label := domain.RemarkLabelOfficer
		if actor.Role == domain.RoleAdmin {
			label = domain.RemarkLabelAdmin
		}
		description = domain.AppendRemark(description, now, label, strings.TrimSpace(remarks))
	}

	oldStatus := complaint.Status
	if err := s.complaints.UpdateStatus(ctx, complaint.ID, newStatus, description, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	complaint.Status = newStatus
	complaint.Description = description
	complaint.LastStatusChangedAt = now

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       events.Actor{Role: actor.Role, UserID: actor.ID},
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Title:     complaint.Title,
			// pre-append text; the remark travels separately so the
			// notification never repeats it inside the issue summary
			Description:  priorDescription,
			Remarks:      strings.TrimSpace(remarks),
			CitizenEmail: s.citizenEmail(ctx, complaint),
		},
	})
	return complaint, nil
}

// EditComplaintInput describes officer/admin detail edits.
type EditComplaintInput struct {
	Title       string
	Description string
	Urgency     domain.UrgencyLevel
}

// Edit updates title, description and urgency under the same ward scoping
// rule as UpdateStatus. Status and timestamps are untouched.
func (s *ComplaintService) Edit(ctx context.Context, actor Actor, complaintID string, input EditComplaintInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(title) < 3 {
		return nil, apperrors.NewValidationError("title must be at least 3 characters", nil)
	}
	if utf8.RuneCountInString(description) < 5 {
		return nil, apperrors.NewValidationError("description must be at least 5 characters", nil)
	}
	if !input.Urgency.Valid() {
		return nil, apperrors.NewValidationError("unknown urgency level", map[string]any{"urgency": input.Urgency})
	}

	complaint, err := s.loadScoped(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}

	if err := s.complaints.UpdateDetails(ctx, complaint.ID, title, description, input.Urgency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	complaint.Title = title
	complaint.Description = description
	complaint.Urgency = input.Urgency
	return complaint, nil
}

// Delete hard-deletes a complaint under ward scoping. No audit entry is
// written; escalation and assignment rows go with the complaint.
func (s *ComplaintService) Delete(ctx context.Context, actor Actor, complaintID string) error {
	complaint, err := s.loadScoped(ctx, actor, complaintID)
	if err != nil {
		return err
	}
	if err := s.complaints.Delete(ctx, complaint.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetForCitizen fetches a complaint ensuring ownership.
func (s *ComplaintService) GetForCitizen(ctx context.Context, citizenID, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	if complaint.CitizenID != citizenID {
		return nil, apperrors.NewAccessDenied("not your complaint")
	}
	return complaint, nil
}

// ListForCitizen returns the citizen's own complaints.
func (s *ComplaintService) ListForCitizen(ctx context.Context, citizenID string, limit, offset int) ([]domain.Complaint, error) {
	filter := repository.ComplaintFilter{CitizenID: &citizenID, Limit: limit, Offset: offset}
	list, err := s.complaints.List(ctx, filter)
	return list, apperrors.MapError(err)
}

// ListForWard returns the officer queue for a ward.
func (s *ComplaintService) ListForWard(ctx context.Context, wardID string, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	filter.WardID = &wardID
	list, err := s.complaints.List(ctx, filter)
	return list, apperrors.MapError(err)
}

// ListAll returns complaints across wards for administrators.
func (s *ComplaintService) ListAll(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	list, err := s.complaints.List(ctx, filter)
	return list, apperrors.MapError(err)
}

func (s *ComplaintService) resolveWard(ctx context.Context, input CreateComplaintInput) (*domain.Ward, error) {
	if input.WardID != nil && *input.WardID != "" {
		ward, err := s.wards.GetByID(ctx, *input.WardID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown ward", map[string]any{"ward_id": *input.WardID})
			}
			return nil, apperrors.MapError(err)
		}
		return ward, nil
	}
	if input.Location != nil {
		ward, err := s.wards.FindContaining(ctx, *input.Location)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("could not determine ward from location", nil)
			}
			return nil, apperrors.MapError(err)
		}
		return ward, nil
	}
	return nil, apperrors.NewValidationError("ward or coordinates required", nil)
}

// assignResidentOfficer creates the initial active assignment when the ward
// has a resident officer. Best-effort: an unstaffed ward or a failed insert
// leaves the complaint unassigned.
func (s *ComplaintService) assignResidentOfficer(ctx context.Context, complaint *domain.Complaint) bool {
	officerID, err := s.wards.OfficerForWard(ctx, complaint.WardID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("failed to look up ward officer",
				zap.String("ward_id", complaint.WardID), zap.Error(err))
		}
		return false
	}
	assignment := &domain.Assignment{ComplaintID: complaint.ID, OfficerID: officerID, IsActive: true}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		s.logger.Warn("failed to create assignment",
			zap.String("complaint_id", complaint.ID), zap.Error(err))
		return false
	}
	return true
}

func (s *ComplaintService) loadScoped(ctx context.Context, actor Actor, complaintID string) (*domain.Complaint, error) {
	if actor.Role != domain.RoleOfficer && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAccessDenied("officer or admin required")
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleOfficer {
		if actor.WardID == nil || *actor.WardID != complaint.WardID {
			return nil, apperrors.NewAccessDenied("complaint is not in your ward")
		}
	}
	return complaint, nil
}

func (s *ComplaintService) citizenEmail(ctx context.Context, complaint *domain.Complaint) string {
	citizen, err := s.users.GetByID(ctx, complaint.CitizenID)
	if err != nil {
		s.logger.Warn("failed to load citizen for notification",
			zap.String("complaint_id", complaint.ID), zap.Error(err))
		return ""
	}
	return citizen.Email
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateReferenceKey() string {
	return "GRV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
