package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
	"github.com/civic-kit/grievance-service/internal/mail"
	"github.com/civic-kit/grievance-service/internal/repository"
)

type mockComplaintRepo struct{ mock.Mock }

func (m *mockComplaintRepo) Create(ctx context.Context, complaint *domain.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *mockComplaintRepo) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *mockComplaintRepo) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *mockComplaintRepo) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, description string, changedAt time.Time) error {
	args := m.Called(ctx, id, status, description, changedAt)
	return args.Error(0)
}

func (m *mockComplaintRepo) UpdateDetails(ctx context.Context, id, title, description string, urgency domain.UrgencyLevel) error {
	args := m.Called(ctx, id, title, description, urgency)
	return args.Error(0)
}

func (m *mockComplaintRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockComplaintRepo) SetGeoPoint(ctx context.Context, id string, point domain.GeoPoint) error {
	args := m.Called(ctx, id, point)
	return args.Error(0)
}

func (m *mockComplaintRepo) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ComplaintStatus]int64), args.Error(1)
}

func (m *mockComplaintRepo) WardCounts(ctx context.Context) ([]repository.WardComplaintCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.WardComplaintCount), args.Error(1)
}

func (m *mockComplaintRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]repository.StalledComplaint, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StalledComplaint), args.Error(1)
}

type mockAssignmentRepo struct{ mock.Mock }

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) GetActiveByComplaint(ctx context.Context, complaintID string) (*domain.Assignment, error) {
	args := m.Called(ctx, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) Deactivate(ctx context.Context, complaintID string) error {
	args := m.Called(ctx, complaintID)
	return args.Error(0)
}

func (m *mockAssignmentRepo) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Assignment, error) {
	args := m.Called(ctx, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

type mockWardRepo struct{ mock.Mock }

func (m *mockWardRepo) GetByID(ctx context.Context, id string) (*domain.Ward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ward), args.Error(1)
}

func (m *mockWardRepo) List(ctx context.Context) ([]domain.Ward, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ward), args.Error(1)
}

func (m *mockWardRepo) FindContaining(ctx context.Context, point domain.GeoPoint) (*domain.Ward, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ward), args.Error(1)
}

func (m *mockWardRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWardRepo) OfficerForWard(ctx context.Context, wardID string) (string, error) {
	args := m.Called(ctx, wardID)
	return args.String(0), args.Error(1)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) CreateOfficer(ctx context.Context, user *domain.User, wardID, designation string) error {
	args := m.Called(ctx, user, wardID, designation)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ListOfficers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockEscalationRepo struct{ mock.Mock }

func (m *mockEscalationRepo) Create(ctx context.Context, escalation *domain.Escalation) (bool, error) {
	args := m.Called(ctx, escalation)
	return args.Bool(0), args.Error(1)
}

func (m *mockEscalationRepo) ExistsForComplaint(ctx context.Context, complaintID string) (bool, error) {
	args := m.Called(ctx, complaintID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEscalationRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Escalation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Escalation), args.Error(1)
}

type mockSuggestionRepo struct{ mock.Mock }

func (m *mockSuggestionRepo) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	args := m.Called(ctx, suggestion)
	return args.Error(0)
}

func (m *mockSuggestionRepo) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Suggestion), args.Error(1)
}

func (m *mockSuggestionRepo) List(ctx context.Context, filter repository.SuggestionFilter) ([]domain.Suggestion, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Suggestion), args.Error(1)
}

func (m *mockSuggestionRepo) Respond(ctx context.Context, id, response string) error {
	args := m.Called(ctx, id, response)
	return args.Error(0)
}

func (m *mockSuggestionRepo) Upvote(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// capturingDispatcher records published events for assertions.
type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

// recordingMailer captures sent updates; Err, when set, is returned from
// every send.
type recordingMailer struct {
	sent []mail.StatusUpdate
	Err  error
}

func (m *recordingMailer) SendStatusUpdate(_ context.Context, update mail.StatusUpdate) error {
	m.sent = append(m.sent, update)
	if m.Err != nil {
		return m.Err
	}
	return nil
}
