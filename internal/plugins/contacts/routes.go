package contacts

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the contact endpoints on an authenticated API group.
// Reads ride the api tier, search its own tier, and mutations the stricter
// two-factor create tier.
func RegisterRoutes(api *echo.Group, h *Handler, limitAPI, limitSearch, limitCreate echo.MiddlewareFunc) {
	g := api.Group("/contacts")

	g.GET("", h.List, limitAPI)
	g.GET("/search", h.Search, limitSearch)
	g.GET("/:id", h.Get, limitAPI)
	g.POST("", h.Create, limitCreate)
	g.PUT("/:id", h.Update, limitCreate)
	g.DELETE("/:id", h.Delete, limitCreate)
}
