package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Put("/:id/assign", auth.RequireRole(domain.RoleAdmin, domain.RoleAgent), cfg.Tickets.Assign)
	tickets.Get("/:id/activity", auth.RequireRole(domain.RoleAdmin, domain.RoleAgent), cfg.Tickets.Activity)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole())
	users.Get("/agents", auth.RequireRole(domain.RoleAdmin, domain.RoleAgent), cfg.Users.Agents)
	users.Get("/profile", cfg.Users.Profile)
	users.Put("/profile", cfg.Users.UpdateProfile)
	users.Put("/profile/password", cfg.Users.ChangePassword)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Put("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.UpdateRole)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Delete)

	activity := app.Group("/activity", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin, domain.RoleAgent))
	activity.Get("/", cfg.Activity.List)
}
