package organizations

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the organization endpoints on an authenticated API
// group. Reads ride the api tier limiter; the update rides the create tier.
func RegisterRoutes(api *echo.Group, h *Handler, limitAPI, limitCreate echo.MiddlewareFunc) {
	api.GET("/organization", h.Get, limitAPI)
	api.PUT("/organization", h.Update, limitCreate)
}
