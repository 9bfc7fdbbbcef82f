package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	hrest "area-access-service/internal/handler/rest"
	"area-access-service/pkg/auth/middleware"
)

func SetupRoutes(
	r chi.Router,
	h *hrest.AreaAccessHandler,
	auth *middleware.AuthMiddleware,
	rdb redis.UniversalClient,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false, // must be false when using "*"
		MaxAge:           300,
	}))

	// ============================================================
	// Authenticated Endpoints
	// ============================================================
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware)
		pr.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "area"))

		// Any signed-in user: catalog + own effective access
		pr.Get("/areas", h.HandleListAreas)
		pr.Get("/users/me/areas", h.HandleGetMyAreas)

		// Override editor surface: super admins only. Everyone else gets a
		// 404, the editor simply does not exist for them.
		pr.Group(func(sa chi.Router) {
			sa.Use(auth.RequireSuperAdmin)

			sa.Post("/areas", h.HandleCreateAreas)
			sa.Patch("/areas/{code}", h.HandleUpdateArea)

			sa.Get("/users/{userID}/areas", h.HandleGetUserAreas)
			sa.Put("/users/{userID}/areas", h.HandleSaveUserAreas)
			sa.Delete("/users/{userID}/areas", h.HandleRemoveUserAreas)
			sa.Post("/users/{userID}/role", h.HandleAssignUserRole)

			sa.Get("/role-defaults", h.HandleListRoleDefaults)
			sa.Get("/audit/events", h.HandleListAuditEvents)
		})
	})

	return r
}
