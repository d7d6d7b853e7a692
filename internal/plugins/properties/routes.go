package properties

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the property endpoints on an authenticated API group.
func RegisterRoutes(api *echo.Group, h *Handler, limitAPI, limitCreate echo.MiddlewareFunc) {
	g := api.Group("/properties")

	g.GET("", h.List, limitAPI)
	g.GET("/:id", h.Get, limitAPI)
	g.POST("", h.Create, limitCreate)
	g.PUT("/:id", h.Update, limitCreate)
	g.DELETE("/:id", h.Delete, limitCreate)
}
