package admin

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the admin endpoints. requireAdmin is the
// system-admin gate; every route also rides the admin rate tier.
func RegisterRoutes(api *echo.Group, h *Handler, requireAdmin, limitAdmin echo.MiddlewareFunc) {
	g := api.Group("/admin", requireAdmin, limitAdmin)

	g.GET("/stats", h.Stats)
	g.GET("/organizations", h.ListOrganizations)
	g.GET("/organizations/:id", h.GetOrganization)
	g.GET("/users", h.ListUsers)
	g.POST("/ratelimits/clear", h.ClearRateLimits)
}
