package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/grievance-service/internal/api/dto"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// SuggestionsHandler serves citizen suggestions and the admin review flow.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionsHandler constructs the handler.
func NewSuggestionsHandler(suggestions *service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions}
}

// Create files a suggestion for the authenticated citizen.
func (h *SuggestionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	suggestion, err := h.suggestions.Create(c.Context(), principal.User.ID, service.CreateSuggestionInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		WardID:      req.WardID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSuggestionResponse(suggestion))
}

// List returns suggestions, optionally filtered by ward and review state.
func (h *SuggestionsHandler) List(c *fiber.Ctx) error {
	filter := repository.SuggestionFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if wardID := c.Query("ward_id"); wardID != "" {
		filter.WardID = &wardID
	}
	if reviewed := c.Query("reviewed"); reviewed != "" {
		isReviewed := reviewed == "true"
		filter.IsReviewed = &isReviewed
	}
	suggestions, err := h.suggestions.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"suggestions": dto.NewSuggestionListResponse(suggestions)})
}

// Upvote increments a suggestion's vote count.
func (h *SuggestionsHandler) Upvote(c *fiber.Ctx) error {
	if err := h.suggestions.Upvote(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Respond records an admin response on a suggestion.
func (h *SuggestionsHandler) Respond(c *fiber.Ctx) error {
	var req dto.RespondSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	suggestion, err := h.suggestions.Respond(c.Context(), c.Params("id"), req.Response)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuggestionResponse(suggestion))
}
