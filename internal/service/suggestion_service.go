package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/repository"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// SuggestionService manages citizen improvement proposals and the admin
// review flow over them.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	wards       repository.WardRepository
	logger      *zap.Logger
}

// NewSuggestionService constructs the service.
func NewSuggestionService(suggestions repository.SuggestionRepository, wards repository.WardRepository, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{suggestions: suggestions, wards: wards, logger: logger}
}

// CreateSuggestionInput describes a new proposal.
type CreateSuggestionInput struct {
	Title       string
	Description string
	Category    string
	WardID      *string
}

// Create files a suggestion. Ward association is optional; when present it
// must name a real ward.
func (s *SuggestionService) Create(ctx context.Context, citizenID string, input CreateSuggestionInput) (*domain.Suggestion, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(title) < 5 {
		return nil, apperrors.NewValidationError("title must be at least 5 characters", nil)
	}
	if utf8.RuneCountInString(description) < 10 {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", nil)
	}
	if input.WardID != nil && *input.WardID != "" {
		if _, err := s.wards.GetByID(ctx, *input.WardID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown ward", map[string]any{"ward_id": *input.WardID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	suggestion := &domain.Suggestion{
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(input.Category),
		WardID:      input.WardID,
		CitizenID:   citizenID,
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return nil, apperrors.MapError(err)
	}
	return suggestion, nil
}

// List returns suggestions matching the filter, newest first.
func (s *SuggestionService) List(ctx context.Context, filter repository.SuggestionFilter) ([]domain.Suggestion, error) {
	list, err := s.suggestions.List(ctx, filter)
	return list, apperrors.MapError(err)
}

// Upvote increments a suggestion's vote count.
func (s *SuggestionService) Upvote(ctx context.Context, suggestionID string) error {
	if err := s.suggestions.Upvote(ctx, suggestionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Respond records an admin response and marks the suggestion reviewed.
func (s *SuggestionService) Respond(ctx context.Context, suggestionID, response string) (*domain.Suggestion, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperrors.NewValidationError("response is required", nil)
	}
	if err := s.suggestions.Respond(ctx, suggestionID, response); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return nil, apperrors.MapError(err)
	}
	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	return suggestion, apperrors.MapError(err)
}
