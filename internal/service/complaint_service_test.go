package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/events"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

type complaintFixture struct {
	complaints  *mockComplaintRepo
	assignments *mockAssignmentRepo
	wards       *mockWardRepo
	categories  *mockCategoryRepo
	users       *mockUserRepo
	dispatcher  *capturingDispatcher
	svc         *ComplaintService
}

func newComplaintFixture() *complaintFixture {
	f := &complaintFixture{
		complaints:  &mockComplaintRepo{},
		assignments: &mockAssignmentRepo{},
		wards:       &mockWardRepo{},
		categories:  &mockCategoryRepo{},
		users:       &mockUserRepo{},
		dispatcher:  &capturingDispatcher{},
	}
	f.svc = NewComplaintService(ComplaintDependencies{
		ComplaintRepo:  f.complaints,
		AssignmentRepo: f.assignments,
		WardRepo:       f.wards,
		CategoryRepo:   f.categories,
		UserRepo:       f.users,
		Dispatcher:     f.dispatcher,
	})
	return f
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func validCreateInput() CreateComplaintInput {
	wardID := "ward-1"
	return CreateComplaintInput{
		Title:       "Streetlight broken",
		Description: "The streetlight at the corner has been out for a week",
		CategoryID:  "cat-1",
		Urgency:     domain.UrgencyHigh,
		WardID:      &wardID,
	}
}

func TestCreateComplaintValidation(t *testing.T) {
	f := newComplaintFixture()

	cases := []struct {
		name   string
		mutate func(*CreateComplaintInput)
	}{
		{"short title", func(in *CreateComplaintInput) { in.Title = "abc" }},
		{"short description", func(in *CreateComplaintInput) { in.Description = "too short" }},
		{"bad urgency", func(in *CreateComplaintInput) { in.Urgency = "EXTREME" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := f.svc.Create(context.Background(), "citizen-1", input)
			assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
		})
	}
}

func TestCreateComplaintLengthsCountCharacters(t *testing.T) {
	f := newComplaintFixture()

	input := validCreateInput()
	input.Title = strings.Repeat("म", 4)
	_, err := f.svc.Create(context.Background(), "citizen-1", input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	input = validCreateInput()
	input.Description = strings.Repeat("म", 9)
	_, err = f.svc.Create(context.Background(), "citizen-1", input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)
	f.wards.On("GetByID", mock.Anything, "ward-1").Return(&domain.Ward{ID: "ward-1"}, nil)
	f.complaints.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Complaint).ID = "complaint-1"
	}).Return(nil)
	f.wards.On("OfficerForWard", mock.Anything, "ward-1").Return("", pgx.ErrNoRows)

	input = validCreateInput()
	input.Title = strings.Repeat("म", 5)
	input.Description = strings.Repeat("म", 10)
	_, err = f.svc.Create(context.Background(), "citizen-1", input)
	require.NoError(t, err)
}

func TestCreateComplaintRequiresWardOrLocation(t *testing.T) {
	f := newComplaintFixture()
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)

	input := validCreateInput()
	input.WardID = nil
	input.Location = nil

	_, err := f.svc.Create(context.Background(), "citizen-1", input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestCreateComplaintResolvesWardFromLocation(t *testing.T) {
	f := newComplaintFixture()
	point := domain.GeoPoint{Latitude: 12.97, Longitude: 77.59}
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)
	f.wards.On("FindContaining", mock.Anything, point).Return(&domain.Ward{ID: "ward-9"}, nil)
	f.complaints.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Complaint) bool {
		return c.WardID == "ward-9" && c.Status == domain.ComplaintStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Complaint).ID = "complaint-1"
	}).Return(nil)
	f.complaints.On("SetGeoPoint", mock.Anything, "complaint-1", point).Return(nil)
	f.wards.On("OfficerForWard", mock.Anything, "ward-9").Return("officer-1", nil)
	f.assignments.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Assignment) bool {
		return a.ComplaintID == "complaint-1" && a.OfficerID == "officer-1" && a.IsActive
	})).Return(nil)

	input := validCreateInput()
	input.WardID = nil
	input.Location = &point

	complaint, err := f.svc.Create(context.Background(), "citizen-1", input)
	require.NoError(t, err)
	assert.Equal(t, "ward-9", complaint.WardID)
	require.NotNil(t, complaint.GeoPoint)
	assert.Equal(t, point, *complaint.GeoPoint)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventComplaintCreated, f.dispatcher.published[0].Type)
	payload := f.dispatcher.published[0].Payload.(events.ComplaintCreatedPayload)
	assert.True(t, payload.Assigned)
}

func TestCreateComplaintLocationOutsideAllWards(t *testing.T) {
	f := newComplaintFixture()
	point := domain.GeoPoint{Latitude: 0, Longitude: 0}
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)
	f.wards.On("FindContaining", mock.Anything, point).Return(nil, pgx.ErrNoRows)

	input := validCreateInput()
	input.WardID = nil
	input.Location = &point

	_, err := f.svc.Create(context.Background(), "citizen-1", input)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestCreateComplaintGeoWriteFailureIsNonFatal(t *testing.T) {
	f := newComplaintFixture()
	point := domain.GeoPoint{Latitude: 12.97, Longitude: 77.59}
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)
	f.wards.On("GetByID", mock.Anything, "ward-1").Return(&domain.Ward{ID: "ward-1"}, nil)
	f.complaints.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Complaint).ID = "complaint-1"
	}).Return(nil)
	f.complaints.On("SetGeoPoint", mock.Anything, "complaint-1", point).Return(errors.New("postgis down"))
	f.wards.On("OfficerForWard", mock.Anything, "ward-1").Return("", pgx.ErrNoRows)

	input := validCreateInput()
	input.Location = &point

	complaint, err := f.svc.Create(context.Background(), "citizen-1", input)
	require.NoError(t, err)
	assert.Nil(t, complaint.GeoPoint)
}

func TestCreateComplaintUnstaffedWardLeavesUnassigned(t *testing.T) {
	f := newComplaintFixture()
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&domain.Category{ID: "cat-1"}, nil)
	f.wards.On("GetByID", mock.Anything, "ward-1").Return(&domain.Ward{ID: "ward-1"}, nil)
	f.complaints.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Complaint).ID = "complaint-1"
	}).Return(nil)
	f.wards.On("OfficerForWard", mock.Anything, "ward-1").Return("", pgx.ErrNoRows)

	_, err := f.svc.Create(context.Background(), "citizen-1", validCreateInput())
	require.NoError(t, err)
	f.assignments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	require.Len(t, f.dispatcher.published, 1)
	payload := f.dispatcher.published[0].Payload.(events.ComplaintCreatedPayload)
	assert.False(t, payload.Assigned)
}

func wardComplaint(wardID string) *domain.Complaint {
	return &domain.Complaint{
		ID:          "complaint-1",
		Title:       "Overflowing drain",
		Description: "The drain on 5th street overflows every morning",
		Status:      domain.ComplaintStatusPending,
		WardID:      wardID,
		CitizenID:   "citizen-1",
	}
}

func officerActor(wardID string) Actor {
	return Actor{ID: "officer-1", Role: domain.RoleOfficer, WardID: &wardID}
}

func TestUpdateStatusAppendsOfficerRemark(t *testing.T) {
	f := newComplaintFixture()
	complaint := wardComplaint("ward-1")
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(complaint, nil)
	f.complaints.On("UpdateStatus", mock.Anything, "complaint-1", domain.ComplaintStatusResolved,
		mock.MatchedBy(func(desc string) bool {
			return strings.HasPrefix(desc, "The drain on 5th street") &&
				strings.Contains(desc, "] Officer Remark: Cleared the blockage")
		}), mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, "citizen-1").Return(&domain.User{ID: "citizen-1", Email: "citizen@example.com"}, nil)

	updated, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", domain.ComplaintStatusResolved, "Cleared the blockage")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, updated.Status)
	assert.Contains(t, updated.Description, "Officer Remark: Cleared the blockage")

	require.Len(t, f.dispatcher.published, 1)
	payload := f.dispatcher.published[0].Payload.(events.ComplaintStatusChangedPayload)
	assert.Equal(t, domain.ComplaintStatusPending, payload.OldStatus)
	assert.Equal(t, domain.ComplaintStatusResolved, payload.NewStatus)
	assert.Equal(t, "citizen@example.com", payload.CitizenEmail)
}

func TestUpdateStatusPayloadCarriesOriginalDescription(t *testing.T) {
	f := newComplaintFixture()
	complaint := wardComplaint("ward-1")
	original := complaint.Description
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(complaint, nil)
	f.complaints.On("UpdateStatus", mock.Anything, "complaint-1", domain.ComplaintStatusResolved,
		mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, "citizen-1").Return(&domain.User{ID: "citizen-1", Email: "citizen@example.com"}, nil)

	_, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", domain.ComplaintStatusResolved, "Cleared the blockage")
	require.NoError(t, err)

	require.Len(t, f.dispatcher.published, 1)
	payload := f.dispatcher.published[0].Payload.(events.ComplaintStatusChangedPayload)
	assert.Equal(t, original, payload.Description)
	assert.NotContains(t, payload.Description, "Cleared the blockage")
	assert.Equal(t, "Cleared the blockage", payload.Remarks)
}

func TestUpdateStatusAdminOverrideLabel(t *testing.T) {
	f := newComplaintFixture()
	complaint := wardComplaint("ward-1")
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(complaint, nil)
	f.complaints.On("UpdateStatus", mock.Anything, "complaint-1", domain.ComplaintStatusRejected,
		mock.MatchedBy(func(desc string) bool {
			return strings.Contains(desc, "] ADMIN OVERRIDE: Duplicate of another report")
		}), mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, "citizen-1").Return(&domain.User{ID: "citizen-1", Email: "citizen@example.com"}, nil)

	admin := Actor{ID: "admin-1", Role: domain.RoleAdmin}
	updated, err := f.svc.UpdateStatus(context.Background(), admin,
		"complaint-1", domain.ComplaintStatusRejected, "Duplicate of another report")
	require.NoError(t, err)
	assert.Contains(t, updated.Description, "ADMIN OVERRIDE")
}

func TestUpdateStatusWithoutRemarksKeepsDescription(t *testing.T) {
	f := newComplaintFixture()
	complaint := wardComplaint("ward-1")
	original := complaint.Description
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(complaint, nil)
	f.complaints.On("UpdateStatus", mock.Anything, "complaint-1", domain.ComplaintStatusInProgress,
		original, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, "citizen-1").Return(&domain.User{ID: "citizen-1", Email: "citizen@example.com"}, nil)

	updated, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", domain.ComplaintStatusInProgress, "   ")
	require.NoError(t, err)
	assert.Equal(t, original, updated.Description)
}

func TestUpdateStatusOfficerOutsideWardDenied(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(wardComplaint("ward-2"), nil)

	_, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", domain.ComplaintStatusResolved, "done")
	assert.Equal(t, "ACCESS_DENIED", domainCode(t, err))
	f.complaints.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusCitizenDenied(t *testing.T) {
	f := newComplaintFixture()
	citizen := Actor{ID: "citizen-1", Role: domain.RoleCitizen}
	_, err := f.svc.UpdateStatus(context.Background(), citizen,
		"complaint-1", domain.ComplaintStatusResolved, "")
	assert.Equal(t, "ACCESS_DENIED", domainCode(t, err))
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newComplaintFixture()
	_, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", "ARCHIVED", "")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestUpdateStatusMissingComplaint(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.On("GetByID", mock.Anything, "complaint-404").Return(nil, pgx.ErrNoRows)

	_, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-404", domain.ComplaintStatusResolved, "")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestEditValidation(t *testing.T) {
	f := newComplaintFixture()
	_, err := f.svc.Edit(context.Background(), officerActor("ward-1"), "complaint-1",
		EditComplaintInput{Title: "ab", Description: "valid text", Urgency: domain.UrgencyLow})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = f.svc.Edit(context.Background(), officerActor("ward-1"), "complaint-1",
		EditComplaintInput{Title: "valid", Description: "abcd", Urgency: domain.UrgencyLow})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestEditUpdatesDetails(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(wardComplaint("ward-1"), nil)
	f.complaints.On("UpdateDetails", mock.Anything, "complaint-1",
		"Drain overflow", "Now flooding the sidewalk as well", domain.UrgencyCritical).Return(nil)

	updated, err := f.svc.Edit(context.Background(), officerActor("ward-1"), "complaint-1",
		EditComplaintInput{
			Title:       "Drain overflow",
			Description: "Now flooding the sidewalk as well",
			Urgency:     domain.UrgencyCritical,
		})
	require.NoError(t, err)
	assert.Equal(t, domain.UrgencyCritical, updated.Urgency)
}

func TestGetForCitizenOwnership(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(wardComplaint("ward-1"), nil)

	_, err := f.svc.GetForCitizen(context.Background(), "someone-else", "complaint-1")
	assert.Equal(t, "ACCESS_DENIED", domainCode(t, err))

	complaint, err := f.svc.GetForCitizen(context.Background(), "citizen-1", "complaint-1")
	require.NoError(t, err)
	assert.Equal(t, "complaint-1", complaint.ID)
}

func TestDeleteScoped(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(wardComplaint("ward-1"), nil)
	f.complaints.On("Delete", mock.Anything, "complaint-1").Return(nil)

	err := f.svc.Delete(context.Background(), officerActor("ward-1"), "complaint-1")
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), officerActor("ward-3"), "complaint-1")
	assert.Equal(t, "ACCESS_DENIED", domainCode(t, err))
}

func TestReferenceKeyFormat(t *testing.T) {
	key := generateReferenceKey()
	assert.True(t, strings.HasPrefix(key, "GRV-"))
	assert.Len(t, key, 12)
	assert.Equal(t, strings.ToUpper(key), key)
	assert.NotEqual(t, key, generateReferenceKey())
}

func TestPublishEventFillsDefaults(t *testing.T) {
	f := newComplaintFixture()
	f.svc.publishEvent(context.Background(), events.Event{Type: events.EventComplaintCreated})
	require.Len(t, f.dispatcher.published, 1)
	assert.NotEmpty(t, f.dispatcher.published[0].ID)
	assert.False(t, f.dispatcher.published[0].Timestamp.IsZero())
}

func TestUpdateStatusTimestampMovesWithStatus(t *testing.T) {
	f := newComplaintFixture()
	complaint := wardComplaint("ward-1")
	before := time.Now().UTC()
	f.complaints.On("GetByID", mock.Anything, "complaint-1").Return(complaint, nil)
	f.complaints.On("UpdateStatus", mock.Anything, "complaint-1", domain.ComplaintStatusInProgress,
		mock.Anything, mock.MatchedBy(func(at time.Time) bool {
			return !at.Before(before)
		})).Return(nil)
	f.users.On("GetByID", mock.Anything, "citizen-1").Return(&domain.User{ID: "citizen-1", Email: "c@example.com"}, nil)

	updated, err := f.svc.UpdateStatus(context.Background(), officerActor("ward-1"),
		"complaint-1", domain.ComplaintStatusInProgress, "")
	require.NoError(t, err)
	assert.False(t, updated.LastStatusChangedAt.Before(before))
}
