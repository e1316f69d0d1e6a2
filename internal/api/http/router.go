package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Companies      *handlers.CompaniesHandler
	Identities     *handlers.IdentitiesHandler
	Leads          *handlers.LeadsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Route guards are a coarse first
// gate; the per-row decisions happen in the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password-reset", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password", cfg.Auth.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	companies := protected.Group("/companies", auth.RequireRole(domain.RoleSuperAdmin))
	companies.Get("/", cfg.Companies.ListCompanies)
	companies.Post("/", cfg.Companies.CreateCompany)
	companies.Get("/:id", cfg.Companies.GetCompany)
	companies.Put("/:id", cfg.Companies.UpdateCompany)
	companies.Delete("/:id", cfg.Companies.DeleteCompany)

	// Admins see the company-scoped admin directory; creating, editing
	// and deleting admin profiles stays SuperAdmin-only in the service.
	admins := protected.Group("/admins", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin))
	admins.Get("/", cfg.Identities.ListAdmins)
	admins.Post("/", cfg.Identities.CreateAdmin)
	admins.Get("/:id", cfg.Identities.GetProfile)
	admins.Put("/:id", cfg.Identities.UpdateProfile)
	admins.Delete("/:id", cfg.Identities.DeleteProfile)

	users := protected.Group("/users", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin))
	users.Get("/", cfg.Identities.ListUsers)
	users.Post("/", cfg.Identities.CreateUser)
	users.Get("/:id", cfg.Identities.GetProfile)
	users.Put("/:id", cfg.Identities.UpdateProfile)
	users.Delete("/:id", cfg.Identities.DeleteProfile)

	leads := protected.Group("/leads")
	leads.Get("/", cfg.Leads.ListLeads)
	leads.Post("/", cfg.Leads.CreateLead)
	leads.Get("/my-leads", cfg.Leads.ListMyLeads)
	leads.Get("/my-work", cfg.Leads.ListMyWork)
	leads.Get("/:id", cfg.Leads.GetLead)
	leads.Put("/:id", cfg.Leads.UpdateLead)
	leads.Delete("/:id", cfg.Leads.DeleteLead)
	leads.Get("/:id/comments", cfg.Comments.ListLeadComments)

	comments := protected.Group("/comments")
	comments.Get("/", cfg.Comments.ListComments)
	comments.Post("/", cfg.Comments.CreateComment)
	comments.Get("/mine", cfg.Comments.ListMyComments)
	comments.Get("/:id", cfg.Comments.GetComment)
	comments.Put("/:id", cfg.Comments.UpdateComment)
	comments.Delete("/:id", cfg.Comments.DeleteComment)
}
