package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/middleware"
	"github.com/infinitas/crm/internal/plugins/activities"
	"github.com/infinitas/crm/internal/plugins/admin"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/plugins/contacts"
	"github.com/infinitas/crm/internal/plugins/gbp"
	"github.com/infinitas/crm/internal/plugins/organizations"
	"github.com/infinitas/crm/internal/plugins/properties"
	"github.com/infinitas/crm/internal/ratelimit"
)

// RegisterRoutes builds every plugin's dependency chain and mounts all
// routes. This is the single place where plugins are aggregated; adding a
// plugin means adding its wiring here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container orchestration. Unauthenticated
	// and unthrottled.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "down"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Rate limit tiers ---
	// Public routes are limited per client IP. Authenticated routes check
	// both the IP and the user budget.
	limitAuth := middleware.Limit(a.Limiter, ratelimit.TierAuth)
	limitAPI := middleware.LimitWithUser(a.Limiter, ratelimit.TierAPI, auth.GetUserID)
	limitCreate := middleware.LimitWithUser(a.Limiter, ratelimit.TierCreate, auth.GetUserID)
	limitSearch := middleware.LimitWithUser(a.Limiter, ratelimit.TierSearch, auth.GetUserID)
	limitAdmin := middleware.LimitWithUser(a.Limiter, ratelimit.TierAdmin, auth.GetUserID)
	limitUpload := middleware.LimitWithUser(a.Limiter, ratelimit.TierUpload, auth.GetUserID)

	// --- Repositories ---
	userRepo := auth.NewUserRepository(a.DB)
	orgRepo := organizations.NewOrganizationRepository(a.DB)
	contactRepo := contacts.NewContactRepository(a.DB)
	propertyRepo := properties.NewPropertyRepository(a.DB)
	activityRepo := activities.NewActivityRepository(a.DB)
	profileRepo := gbp.NewProfileRepository(a.DB)
	statsRepo := admin.NewStatsRepository(a.DB)

	// --- Services ---
	authService := auth.NewAuthService(userRepo, a.Redis, a.Config.Auth.SecretKey, a.Config.Auth.SessionTTL)
	orgService := organizations.NewOrganizationService(orgRepo)
	contactService := contacts.NewContactService(contactRepo)
	propertyService := properties.NewPropertyService(propertyRepo, contactService)
	activityService := activities.NewActivityService(activityRepo)
	gbpService := gbp.NewService(profileRepo, orgRepo, activityService, gbp.NewGoogleClient(a.Config.GBP))
	adminService := admin.NewService(statsRepo, orgRepo, a.Limiter)

	// --- Auth gates ---
	requireAuth := auth.RequireAuth(authService)
	requireAdmin := auth.RequireSystemAdmin(a.Config.Auth.ServiceRoleKey)

	// --- API v1 ---
	api := e.Group("/api/v1")
	auth.RegisterRoutes(api, auth.NewHandler(authService), limitAuth, requireAuth)

	// Everything below requires a valid session with an organization.
	authed := api.Group("", requireAuth)
	organizations.RegisterRoutes(authed, organizations.NewHandler(orgService), limitAPI, limitCreate)
	contacts.RegisterRoutes(authed, contacts.NewHandler(contactService), limitAPI, limitSearch, limitCreate)
	properties.RegisterRoutes(authed, properties.NewHandler(propertyService), limitAPI, limitCreate)
	activities.RegisterRoutes(authed, activities.NewHandler(activityService), limitAPI, limitCreate)
	gbp.RegisterRoutes(authed, gbp.NewHandler(gbpService), limitAPI, limitCreate, limitUpload)
	admin.RegisterRoutes(authed, admin.NewHandler(adminService), requireAdmin, limitAdmin)
}
