package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/grievance-service/internal/api/dto"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// ComplaintsHandler serves the citizen complaint surface.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	categories repository.CategoryRepository
}

// NewComplaintsHandler constructs the handler.
func NewComplaintsHandler(complaints *service.ComplaintService, categories repository.CategoryRepository) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, categories: categories}
}

// Create files a new complaint for the authenticated citizen.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	input := service.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Urgency:     domain.UrgencyLevel(req.Urgency),
		WardID:      req.WardID,
		Address:     req.Address,
		Anonymous:   req.Anonymous,
	}
	if req.Location != nil {
		input.Location = &domain.GeoPoint{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}
	complaint, err := h.complaints.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewComplaintResponse(complaint))
}

// List returns the citizen's own complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	complaints, err := h.complaints.ListForCitizen(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaints": dto.NewComplaintListResponse(complaints)})
}

// Get returns one of the citizen's complaints.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	complaint, err := h.complaints.GetForCitizen(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintResponse(complaint))
}

// Categories lists available complaint categories.
func (h *ComplaintsHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"categories": dto.NewCategoryListResponse(categories)})
}
