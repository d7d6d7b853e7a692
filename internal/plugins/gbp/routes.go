package gbp

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the GBP endpoints on an authenticated API group.
// Sync is expensive upstream, so it rides the upload tier.
func RegisterRoutes(api *echo.Group, h *Handler, limitAPI, limitCreate, limitUpload echo.MiddlewareFunc) {
	g := api.Group("/gbp")

	g.GET("/profile", h.GetProfile, limitAPI)
	g.PUT("/profile", h.UpsertProfile, limitCreate)
	g.PUT("/tokens", h.StoreTokens, limitCreate)
	g.POST("/sync", h.Sync, limitUpload)
}
