package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/api/http/handlers"
	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Signup         *handlers.SignupHandler
	Users          *handlers.UsersHandler
	Donations      *handlers.DonationsHandler
	Collections    *handlers.CollectionsHandler
	Donors         *handlers.DonorsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth", cfg.AuthMiddleware.RequireAnonymous())
	authGroup.Post("/signup", cfg.Signup.Signup)
	authGroup.Post("/signup/verify", cfg.Signup.Verify)
	authGroup.Post("/signup/resend", cfg.Signup.Resend)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/profile", cfg.Users.Profile)
	protected.Put("/profile", cfg.Users.UpdateProfile)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/dashboard", cfg.Donations.Dashboard)
	admin.Get("/donations/pending", cfg.Donations.ListPending)
	admin.Get("/donations/previous", cfg.Donations.ListPrevious)
	admin.Get("/donations/:id", cfg.Donations.Get)
	admin.Post("/donations/:id/accept", cfg.Donations.Accept)
	admin.Post("/donations/:id/reject", cfg.Donations.Reject)
	admin.Post("/donations/:id/assign", cfg.Donations.Assign)
	admin.Get("/agents", cfg.Donations.ListAgents)

	agent := protected.Group("/agent", auth.RequireRole(domain.RoleAgent))
	agent.Get("/dashboard", cfg.Collections.Dashboard)
	agent.Get("/collections/pending", cfg.Collections.ListPending)
	agent.Get("/collections/previous", cfg.Collections.ListPrevious)
	agent.Get("/collections/:id", cfg.Collections.Get)
	agent.Post("/collections/:id/collect", cfg.Collections.Collect)

	donor := protected.Group("/donor", auth.RequireRole(domain.RoleDonor))
	donor.Get("/donations", cfg.Donors.List)
	donor.Post("/donations", cfg.Donors.Create)
	donor.Get("/donations/:id", cfg.Donors.Get)
}
