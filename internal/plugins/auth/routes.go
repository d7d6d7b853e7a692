package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the auth endpoints on the given API group.
// Register and login are public and ride the strict auth rate-limit tier
// (middleware supplied by the app root); logout and me require a session.
func RegisterRoutes(api *echo.Group, h *Handler, limitAuth echo.MiddlewareFunc, requireAuth echo.MiddlewareFunc) {
	g := api.Group("/auth")

	g.POST("/register", h.Register, limitAuth)
	g.POST("/login", h.Login, limitAuth)

	g.POST("/logout", h.Logout, requireAuth)
	g.GET("/me", h.Me, requireAuth)
}
