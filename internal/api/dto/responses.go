package dto

import (
	"time"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
)

// AuthResponse returns an issued token with its account.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"is_active"`
	WardID      *string `json:"ward_id,omitempty"`
	Designation *string `json:"designation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeoPointResponse mirrors a stored coordinate pair.
type GeoPointResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ComplaintResponse is the public view of a complaint. Citizen identity is
// withheld for anonymous complaints.
type ComplaintResponse struct {
	ID                  string            `json:"id"`
	ReferenceKey        string            `json:"reference_key"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	CategoryID          string            `json:"category_id"`
	Urgency             string            `json:"urgency"`
	Status              string            `json:"status"`
	WardID              string            `json:"ward_id"`
	CitizenID           string            `json:"citizen_id,omitempty"`
	Anonymous           bool              `json:"anonymous"`
	Address             *string           `json:"address,omitempty"`
	Location            *GeoPointResponse `json:"location,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	LastStatusChangedAt time.Time         `json:"last_status_changed_at"`
}

// SuggestionResponse is the public view of a suggestion.
type SuggestionResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	WardID        *string   `json:"ward_id,omitempty"`
	Upvotes       int       `json:"upvotes"`
	IsReviewed    bool      `json:"is_reviewed"`
	AdminResponse *string   `json:"admin_response,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EscalationResponse is the dashboard view of an escalation.
type EscalationResponse struct {
	ID            string    `json:"id"`
	ComplaintID   string    `json:"complaint_id"`
	EscalatedFrom string    `json:"escalated_from"`
	EscalatedTo   string    `json:"escalated_to"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssignmentResponse is one entry in a complaint's assignment trail.
type AssignmentResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	OfficerID   string    `json:"officer_id"`
	IsActive    bool      `json:"is_active"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// ComplaintDetailResponse is the admin view of a single complaint with
// its assignment history and escalation state.
type ComplaintDetailResponse struct {
	Complaint   ComplaintResponse    `json:"complaint"`
	Assignments []AssignmentResponse `json:"assignments"`
	Escalated   bool                 `json:"escalated"`
}

// WardResponse is the public view of a ward.
type WardResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DistrictID string `json:"district_id"`
	Population int64  `json:"population"`
}

// WardMetricResponse reports complaint volume for a ward.
type WardMetricResponse struct {
	WardID   string `json:"ward_id"`
	WardName string `json:"ward_name"`
	Count    int64  `json:"count"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		WardID:      user.WardID,
		Designation: user.Designation,
		CreatedAt:   user.CreatedAt,
	}
}

// NewAuthResponse maps a login or registration result.
func NewAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      NewUserResponse(result.User),
	}
}

// NewComplaintResponse maps a domain complaint. The citizen reference is
// dropped when the complaint was filed anonymously.
func NewComplaintResponse(complaint *domain.Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:                  complaint.ID,
		ReferenceKey:        complaint.ReferenceKey,
		Title:               complaint.Title,
		Description:         complaint.Description,
		CategoryID:          complaint.CategoryID,
		Urgency:             string(complaint.Urgency),
		Status:              string(complaint.Status),
		WardID:              complaint.WardID,
		Anonymous:           complaint.Anonymous,
		Address:             complaint.Address,
		CreatedAt:           complaint.CreatedAt,
		LastStatusChangedAt: complaint.LastStatusChangedAt,
	}
	if !complaint.Anonymous {
		resp.CitizenID = complaint.CitizenID
	}
	if complaint.GeoPoint != nil {
		resp.Location = &GeoPointResponse{
			Latitude:  complaint.GeoPoint.Latitude,
			Longitude: complaint.GeoPoint.Longitude,
		}
	}
	return resp
}

// NewComplaintListResponse maps a complaint slice.
func NewComplaintListResponse(complaints []domain.Complaint) []ComplaintResponse {
	result := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		result = append(result, NewComplaintResponse(&complaints[i]))
	}
	return result
}

// NewSuggestionResponse maps a domain suggestion.
func NewSuggestionResponse(suggestion *domain.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:            suggestion.ID,
		Title:         suggestion.Title,
		Description:   suggestion.Description,
		Category:      suggestion.Category,
		WardID:        suggestion.WardID,
		Upvotes:       suggestion.Upvotes,
		IsReviewed:    suggestion.IsReviewed,
		AdminResponse: suggestion.AdminResponse,
		CreatedAt:     suggestion.CreatedAt,
	}
}

// NewSuggestionListResponse maps a suggestion slice.
func NewSuggestionListResponse(suggestions []domain.Suggestion) []SuggestionResponse {
	result := make([]SuggestionResponse, 0, len(suggestions))
	for i := range suggestions {
		result = append(result, NewSuggestionResponse(&suggestions[i]))
	}
	return result
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(assignment *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          assignment.ID,
		ComplaintID: assignment.ComplaintID,
		OfficerID:   assignment.OfficerID,
		IsActive:    assignment.IsActive,
		AssignedAt:  assignment.AssignedAt,
	}
}

// NewComplaintDetailResponse maps an admin complaint detail.
func NewComplaintDetailResponse(detail *service.ComplaintDetail) ComplaintDetailResponse {
	assignments := make([]AssignmentResponse, 0, len(detail.Assignments))
	for i := range detail.Assignments {
		assignments = append(assignments, NewAssignmentResponse(&detail.Assignments[i]))
	}
	return ComplaintDetailResponse{
		Complaint:   NewComplaintResponse(detail.Complaint),
		Assignments: assignments,
		Escalated:   detail.Escalated,
	}
}

// NewEscalationListResponse maps an escalation slice.
func NewEscalationListResponse(escalations []domain.Escalation) []EscalationResponse {
	result := make([]EscalationResponse, 0, len(escalations))
	for _, escalation := range escalations {
		result = append(result, EscalationResponse{
			ID:            escalation.ID,
			ComplaintID:   escalation.ComplaintID,
			EscalatedFrom: escalation.EscalatedFrom,
			EscalatedTo:   escalation.EscalatedTo,
			Reason:        escalation.Reason,
			CreatedAt:     escalation.CreatedAt,
		})
	}
	return result
}

// NewWardListResponse maps a ward slice.
func NewWardListResponse(wards []domain.Ward) []WardResponse {
	result := make([]WardResponse, 0, len(wards))
	for _, ward := range wards {
		result = append(result, WardResponse{
			ID:         ward.ID,
			Name:       ward.Name,
			DistrictID: ward.DistrictID,
			Population: ward.Population,
		})
	}
	return result
}

// NewWardMetricListResponse maps ward complaint counts.
func NewWardMetricListResponse(counts []repository.WardComplaintCount) []WardMetricResponse {
	result := make([]WardMetricResponse, 0, len(counts))
	for _, count := range counts {
		result = append(result, WardMetricResponse{
			WardID:   count.WardID,
			WardName: count.WardName,
			Count:    count.Count,
		})
	}
	return result
}

// NewCategoryListResponse maps a category slice.
func NewCategoryListResponse(categories []domain.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		result = append(result, CategoryResponse{ID: category.ID, Name: category.Name})
	}
	return result
}
