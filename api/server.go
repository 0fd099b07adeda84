/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/auth/login       Public
  /api/auth/register    Admin only
  /api/users            List elevated; delete and password reset admin only
  /api/wfh/requests/*   Authenticated; mutations beyond create are elevated
  /api/holidays/*       Reads authenticated, mutations elevated
  /api/settings/wfh     Reads authenticated, writes elevated
  /api/wfh/balance      Authenticated

AUTHORIZATION MODEL:
  RequireAuth resolves the bearer token to a live user on every request.
  RequireElevated then gates approver/admin operations. Create is open to
  every authenticated user; the service layer enforces that non-elevated
  users can only file for themselves.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Middleware implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/auth/register", h.RegisterUser)
				r.Delete("/users/{id}", h.DeleteUser)
				r.Put("/users/{id}/password", h.UpdateUserPassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireElevated)
				r.Get("/users", h.ListUsers)
			})

			r.Route("/wfh", func(r chi.Router) {
				r.Get("/balance", h.GetBalance)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.CreateRequest)

					// Approver/admin operations
					r.Group(func(r chi.Router) {
						r.Use(RequireElevated)
						r.Get("/", h.ListRequests)
						r.Put("/{id}/approve", h.ApproveRequest)
						r.Put("/{id}/reject", h.RejectRequest)
						r.Put("/{id}/date", h.RescheduleRequest)
						r.Delete("/{id}", h.DeleteRequest)
					})
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(RequireElevated)
					r.Post("/", h.CreateHoliday)
					r.Put("/{id}", h.UpdateHoliday)
					r.Delete("/{id}", h.DeleteHoliday)
				})
			})

			r.Route("/settings/wfh", func(r chi.Router) {
				r.Get("/", h.GetSettings)

				r.Group(func(r chi.Router) {
					r.Use(RequireElevated)
					r.Put("/", h.UpdateSettings)
				})
			})
		})
	})

	return r
}
