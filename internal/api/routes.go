package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Rate limiter for DELETE operations: 100 deletes max, refill 1 per 100ms
	// This allows burst of 100 deletes, then sustained rate of 10/second
	deleteRateLimiter := NewDeleteRateLimiter(100, 100*time.Millisecond)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)

		// Protected routes (auth + owner required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))
			r.Use(OwnerMiddleware)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.ListTasks)
				r.Post("/", h.CreateTask)

				r.Post("/recurring", h.CreateRecurring)
				r.Get("/recurring/{groupId}", h.GetGroup)
				r.Patch("/recurring/{groupId}", h.UpdateGroup)
				r.With(deleteRateLimiter.Middleware).Delete("/recurring/{groupId}", h.DeleteGroup)

				r.Get("/{id}", h.GetTask)
				r.Patch("/{id}", h.UpdateTask)
				r.With(deleteRateLimiter.Middleware).Delete("/{id}", h.DeleteTask)
				r.Get("/{id}/performance", h.TaskPerformance)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", h.ListGoals)
				r.Post("/", h.CreateGoal)
				r.Get("/{id}", h.GetGoal)
				r.Patch("/{id}", h.UpdateGoal)
				r.With(deleteRateLimiter.Middleware).Delete("/{id}", h.DeleteGoal)
			})
		})
	})

	return r
}
