package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/config"
	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/repository"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

const (
	dashboardCacheKey = "admin:dashboard:stats"
	dashboardCacheTTL = 30 * time.Second

	// DefaultOfficerDesignation is applied when provisioning omits one.
	DefaultOfficerDesignation = "Ward Officer"

	// urgentFetchLimit caps each branch of the urgent view before merging.
	urgentFetchLimit = 200
)

// AdminService covers administrator surfaces: officer provisioning, the
// dashboard, urgent views, assignment control and geography listings.
type AdminService struct {
	users       repository.UserRepository
	complaints  repository.ComplaintRepository
	wards       repository.WardRepository
	assignments repository.AssignmentRepository
	escalations repository.EscalationRepository
	redis       *redis.Client
	authCfg     config.AuthConfig
	stallAfter  time.Duration
	logger      *zap.Logger
}

// AdminDependencies bundles admin service collaborators.
type AdminDependencies struct {
	UserRepo       repository.UserRepository
	ComplaintRepo  repository.ComplaintRepository
	WardRepo       repository.WardRepository
	AssignmentRepo repository.AssignmentRepository
	EscalationRepo repository.EscalationRepository
	Redis          *redis.Client
	AuthConfig     config.AuthConfig
	Escalation     config.EscalationConfig
	Logger         *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:       deps.UserRepo,
		complaints:  deps.ComplaintRepo,
		wards:       deps.WardRepo,
		assignments: deps.AssignmentRepo,
		escalations: deps.EscalationRepo,
		redis:       deps.Redis,
		authCfg:     deps.AuthConfig,
		stallAfter:  deps.Escalation.StallThreshold(),
		logger:      logger,
	}
}

// DashboardStats summarizes platform volume for the admin landing view.
type DashboardStats struct {
	TotalComplaints int64                             `json:"total_complaints"`
	ByStatus        map[domain.ComplaintStatus]int64  `json:"by_status"`
	TotalCitizens   int64                             `json:"total_citizens"`
	TotalOfficers   int64                             `json:"total_officers"`
	TotalWards      int64                             `json:"total_wards"`
	GeneratedAt     time.Time                         `json:"generated_at"`
}

// Dashboard aggregates counts, serving from a short-lived cache when one is
// available. Cache failures fall through to the store.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	byStatus, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var total int64
	for _, count := range byStatus {
		total += count
	}
	citizens, err := s.users.CountByRole(ctx, domain.RoleCitizen)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	officers, err := s.users.CountByRole(ctx, domain.RoleOfficer)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	wardCount, err := s.wards.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		TotalComplaints: total,
		ByStatus:        byStatus,
		TotalCitizens:   citizens,
		TotalOfficers:   officers,
		TotalWards:      wardCount,
		GeneratedAt:     time.Now().UTC(),
	}
	if s.redis != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, dashboardCacheKey, encoded, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// WardMetrics reports complaint volume per ward, busiest first.
func (s *AdminService) WardMetrics(ctx context.Context) ([]repository.WardComplaintCount, error) {
	counts, err := s.complaints.WardCounts(ctx)
	return counts, apperrors.MapError(err)
}

// UrgentComplaints lists complaints needing administrator attention: the
// union of critical complaints still open regardless of age, and open
// complaints of any urgency that have lingered past the stall threshold.
// Open here means any status except RESOLVED and REJECTED. The merge is
// deduplicated and ordered newest first.
func (s *AdminService) UrgentComplaints(ctx context.Context, limit, offset int) ([]domain.Complaint, error) {
	openStatuses := []domain.ComplaintStatus{
		domain.ComplaintStatusPending,
		domain.ComplaintStatusInProgress,
		domain.ComplaintStatusClosed,
	}

	critical, err := s.complaints.List(ctx, repository.ComplaintFilter{
		Urgencies: []domain.UrgencyLevel{domain.UrgencyCritical},
		Statuses:  openStatuses,
		Limit:     urgentFetchLimit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	cutoff := time.Now().Add(-s.stallAfter)
	stale, err := s.complaints.List(ctx, repository.ComplaintFilter{
		Statuses:      openStatuses,
		CreatedBefore: &cutoff,
		Limit:         urgentFetchLimit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	seen := make(map[string]struct{}, len(critical))
	merged := make([]domain.Complaint, 0, len(critical)+len(stale))
	for _, complaint := range append(critical, stale...) {
		if _, ok := seen[complaint.ID]; ok {
			continue
		}
		seen[complaint.ID] = struct{}{}
		merged = append(merged, complaint)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(merged) {
		return []domain.Complaint{}, nil
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[offset:end], nil
}

// ComplaintDetail is the admin view of one complaint with its full
// assignment history and escalation state.
type ComplaintDetail struct {
	Complaint   *domain.Complaint
	Assignments []domain.Assignment
	Escalated   bool
}

// ComplaintDetail loads a complaint together with every assignment it ever
// had and whether it was escalated.
func (s *AdminService) ComplaintDetail(ctx context.Context, complaintID string) (*ComplaintDetail, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	assignments, err := s.assignments.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	escalated, err := s.escalations.ExistsForComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ComplaintDetail{
		Complaint:   complaint,
		Assignments: assignments,
		Escalated:   escalated,
	}, nil
}

// ReassignComplaint hands a complaint to a different officer. The current
// active assignment is retired and kept as history; reassigning to the
// officer already holding the complaint is a no-op.
func (s *AdminService) ReassignComplaint(ctx context.Context, complaintID, officerID string) (*domain.Assignment, error) {
	if _, err := s.complaints.GetByID(ctx, complaintID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	officer, err := s.users.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown officer", map[string]any{"officer_id": officerID})
		}
		return nil, apperrors.MapError(err)
	}
	if officer.Role != domain.RoleOfficer || !officer.IsActive {
		return nil, apperrors.NewValidationError("account is not an active officer", map[string]any{"officer_id": officerID})
	}

	current, err := s.assignments.GetActiveByComplaint(ctx, complaintID)
	switch {
	case err == nil:
		if current.OfficerID == officerID {
			return current, nil
		}
		if err := s.assignments.Deactivate(ctx, complaintID); err != nil {
			return nil, apperrors.MapError(err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// unassigned complaint, nothing to retire
	default:
		return nil, apperrors.MapError(err)
	}

	assignment := &domain.Assignment{ComplaintID: complaintID, OfficerID: officerID, IsActive: true}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("complaint reassigned",
		zap.String("complaint_id", complaintID), zap.String("officer_id", officerID))
	return assignment, nil
}

// CreateOfficerInput describes officer provisioning.
type CreateOfficerInput struct {
	FullName    string
	Email       string
	Password    string
	WardID      string
	Designation string
}

// CreateOfficer provisions an officer account bound to a ward.
func (s *AdminService) CreateOfficer(ctx context.Context, input CreateOfficerInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" {
		return nil, apperrors.NewValidationError("full name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.wards.GetByID(ctx, input.WardID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown ward", map[string]any{"ward_id": input.WardID})
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	designation := strings.TrimSpace(input.Designation)
	if designation == "" {
		designation = DefaultOfficerDesignation
	}
	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{FullName: fullName, Email: email, PasswordHash: hash}
	if err := s.users.CreateOfficer(ctx, user, input.WardID, designation); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("officer provisioned",
		zap.String("user_id", user.ID), zap.String("ward_id", input.WardID))
	return user, nil
}

// ListOfficers returns all officer accounts with their ward placement.
func (s *AdminService) ListOfficers(ctx context.Context) ([]domain.User, error) {
	officers, err := s.users.ListOfficers(ctx)
	return officers, apperrors.MapError(err)
}

// DeleteOfficer removes an officer account. Only officer accounts can be
// removed through this path.
func (s *AdminService) DeleteOfficer(ctx context.Context, officerID string) error {
	user, err := s.users.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("officer", map[string]any{"officer_id": officerID})
		}
		return apperrors.MapError(err)
	}
	if user.Role != domain.RoleOfficer {
		return apperrors.NewValidationError("account is not an officer", map[string]any{"officer_id": officerID})
	}
	return apperrors.MapError(s.users.Delete(ctx, officerID))
}

// ListWards returns all wards.
func (s *AdminService) ListWards(ctx context.Context) ([]domain.Ward, error) {
	wards, err := s.wards.List(ctx)
	return wards, apperrors.MapError(err)
}
