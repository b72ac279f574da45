package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/grievance-service/internal/api/dto"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// OfficerHandler serves the ward officer queue and triage actions.
type OfficerHandler struct {
	complaints *service.ComplaintService
}

// NewOfficerHandler constructs the handler.
func NewOfficerHandler(complaints *service.ComplaintService) *OfficerHandler {
	return &OfficerHandler{complaints: complaints}
}

// Queue lists complaints in the officer's ward, with optional status,
// urgency and free-text filters.
func (h *OfficerHandler) Queue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.User.WardID == nil {
		return apperrors.NewAccessDenied("no ward placement")
	}

	filter := repository.ComplaintFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if statuses := parseStatuses(c.Query("status")); len(statuses) > 0 {
		filter.Statuses = statuses
	}
	if urgencies := parseUrgencies(c.Query("urgency")); len(urgencies) > 0 {
		filter.Urgencies = urgencies
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}

	complaints, err := h.complaints.ListForWard(c.Context(), *principal.User.WardID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaints": dto.NewComplaintListResponse(complaints)})
}

// UpdateStatus moves a complaint in the officer's ward to a new status.
func (h *OfficerHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	complaint, err := h.complaints.UpdateStatus(c.Context(),
		service.ActorFromUser(principal.User),
		c.Params("id"),
		domain.ComplaintStatus(req.Status),
		req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintResponse(complaint))
}

// Edit updates complaint details within the officer's ward.
func (h *OfficerHandler) Edit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.EditComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	complaint, err := h.complaints.Edit(c.Context(),
		service.ActorFromUser(principal.User),
		c.Params("id"),
		service.EditComplaintInput{
			Title:       req.Title,
			Description: req.Description,
			Urgency:     domain.UrgencyLevel(req.Urgency),
		})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintResponse(complaint))
}

// Delete removes a complaint within the officer's ward.
func (h *OfficerHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.complaints.Delete(c.Context(), service.ActorFromUser(principal.User), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseStatuses(raw string) []domain.ComplaintStatus {
	var result []domain.ComplaintStatus
	for _, part := range strings.Split(raw, ",") {
		status := domain.ComplaintStatus(strings.ToUpper(strings.TrimSpace(part)))
		if status.Valid() {
			result = append(result, status)
		}
	}
	return result
}

func parseUrgencies(raw string) []domain.UrgencyLevel {
	var result []domain.UrgencyLevel
	for _, part := range strings.Split(raw, ",") {
		urgency := domain.UrgencyLevel(strings.ToUpper(strings.TrimSpace(part)))
		if urgency.Valid() {
			result = append(result, urgency)
		}
	}
	return result
}
