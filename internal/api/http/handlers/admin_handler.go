package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/grievance-service/internal/api/dto"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/domain"
	"github.com/civic-kit/grievance-service/internal/observability"
	"github.com/civic-kit/grievance-service/internal/repository"
	"github.com/civic-kit/grievance-service/internal/service"
	apperrors "github.com/civic-kit/grievance-service/pkg/util"
)

// AdminHandler serves administrator surfaces: dashboard, cross-ward
// complaint views, officer provisioning and escalation history.
type AdminHandler struct {
	admin       *service.AdminService
	complaints  *service.ComplaintService
	escalations *service.EscalationService
	metrics     *observability.Metrics
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admin *service.AdminService, complaints *service.ComplaintService, escalations *service.EscalationService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{admin: admin, complaints: complaints, escalations: escalations, metrics: metrics}
}

// Dashboard returns aggregate platform stats.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.admin.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// WardMetrics returns complaint volume per ward.
func (h *AdminHandler) WardMetrics(c *fiber.Ctx) error {
	counts, err := h.admin.WardMetrics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"wards": dto.NewWardMetricListResponse(counts)})
}

// UrgentComplaints returns long-open critical complaints.
func (h *AdminHandler) UrgentComplaints(c *fiber.Ctx) error {
	complaints, err := h.admin.UrgentComplaints(c.Context(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaints": dto.NewComplaintListResponse(complaints)})
}

// ListComplaints returns complaints across all wards with optional filters.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	filter := repository.ComplaintFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if wardID := c.Query("ward_id"); wardID != "" {
		filter.WardID = &wardID
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
	complaints, err := h.complaints.ListAll(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaints": dto.NewComplaintListResponse(complaints)})
}

// GetComplaint returns one complaint with its assignment trail and
// escalation state.
func (h *AdminHandler) GetComplaint(c *fiber.Ctx) error {
	detail, err := h.admin.ComplaintDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintDetailResponse(detail))
}

// Reassign hands a complaint to a different officer, retiring any
// existing active assignment.
func (h *AdminHandler) Reassign(c *fiber.Ctx) error {
	var req dto.AssignComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	assignment, err := h.admin.ReassignComplaint(c.Context(), c.Params("id"), req.OfficerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAssignmentResponse(assignment))
}

// UpdateStatus applies an admin override to any complaint.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
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

// DeleteComplaint removes any complaint.
func (h *AdminHandler) DeleteComplaint(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.complaints.Delete(c.Context(), service.ActorFromUser(principal.User), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateOfficer provisions an officer account.
func (h *AdminHandler) CreateOfficer(c *fiber.Ctx) error {
	var req dto.CreateOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	officer, err := h.admin.CreateOfficer(c.Context(), service.CreateOfficerInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		WardID:      req.WardID,
		Designation: req.Designation,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(officer))
}

// ListOfficers lists officer accounts.
func (h *AdminHandler) ListOfficers(c *fiber.Ctx) error {
	officers, err := h.admin.ListOfficers(c.Context())
	if err != nil {
		return err
	}
	result := make([]dto.UserResponse, 0, len(officers))
	for i := range officers {
		result = append(result, dto.NewUserResponse(&officers[i]))
	}
	return c.JSON(fiber.Map{"officers": result})
}

// DeleteOfficer removes an officer account.
func (h *AdminHandler) DeleteOfficer(c *fiber.Ctx) error {
	if err := h.admin.DeleteOfficer(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListWards lists administrative wards.
func (h *AdminHandler) ListWards(c *fiber.Ctx) error {
	wards, err := h.admin.ListWards(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"wards": dto.NewWardListResponse(wards)})
}

// RunEscalationSweep triggers a sweep on demand and reports how many
// complaints were escalated.
func (h *AdminHandler) RunEscalationSweep(c *fiber.Ctx) error {
	count, err := h.escalations.Sweep(c.Context(), time.Now())
	if err != nil {
		return err
	}
	h.metrics.RecordEscalations(count)
	return c.JSON(fiber.Map{"escalated": count})
}

// Escalations lists recent escalations.
func (h *AdminHandler) Escalations(c *fiber.Ctx) error {
	escalations, err := h.escalations.RecentEscalations(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"escalations": dto.NewEscalationListResponse(escalations)})
}
