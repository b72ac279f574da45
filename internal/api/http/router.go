package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-kit/grievance-service/internal/api/http/handlers"
	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/domain"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Complaints  *handlers.ComplaintsHandler
	Officer     *handlers.OfficerHandler
	Admin       *handlers.AdminHandler
	Suggestions *handlers.SuggestionsHandler
}

// RegisterRoutes mounts all routes on the app.
func RegisterRoutes(app *fiber.App, h Handlers, authMW *auth.AuthMiddleware) {
	app.Get("/healthz", h.Health.Live)
	app.Get("/readyz", h.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/me", authMW.Handle, h.Auth.Me)

	api.Get("/categories", h.Complaints.Categories)

	citizen := api.Group("/complaints", authMW.Handle, auth.RequireRole(domain.RoleCitizen))
	citizen.Post("/", h.Complaints.Create)
	citizen.Get("/", h.Complaints.List)
	citizen.Get("/:id", h.Complaints.Get)

	officer := api.Group("/officer", authMW.Handle, auth.RequireRole(domain.RoleOfficer))
	officer.Get("/complaints", h.Officer.Queue)
	officer.Patch("/complaints/:id/status", h.Officer.UpdateStatus)
	officer.Put("/complaints/:id", h.Officer.Edit)
	officer.Delete("/complaints/:id", h.Officer.Delete)

	admin := api.Group("/admin", authMW.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/wards/metrics", h.Admin.WardMetrics)
	admin.Get("/wards", h.Admin.ListWards)
	admin.Get("/complaints/urgent", h.Admin.UrgentComplaints)
	admin.Get("/complaints", h.Admin.ListComplaints)
	admin.Get("/complaints/:id", h.Admin.GetComplaint)
	admin.Post("/complaints/:id/assign", h.Admin.Reassign)
	admin.Patch("/complaints/:id/status", h.Admin.UpdateStatus)
	admin.Delete("/complaints/:id", h.Admin.DeleteComplaint)
	admin.Post("/officers", h.Admin.CreateOfficer)
	admin.Get("/officers", h.Admin.ListOfficers)
	admin.Delete("/officers/:id", h.Admin.DeleteOfficer)
	admin.Get("/escalations", h.Admin.Escalations)
	admin.Post("/escalations/run", h.Admin.RunEscalationSweep)

	suggestions := api.Group("/suggestions", authMW.Handle)
	suggestions.Get("/", h.Suggestions.List)
	suggestions.Post("/", auth.RequireRole(domain.RoleCitizen), h.Suggestions.Create)
	suggestions.Post("/:id/upvote", auth.RequireRole(domain.RoleCitizen), h.Suggestions.Upvote)
	suggestions.Post("/:id/respond", auth.RequireRole(domain.RoleAdmin), h.Suggestions.Respond)
}
