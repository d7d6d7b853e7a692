// Package middleware provides HTTP middleware for the CRM Echo server.
// Middleware is applied globally (all routes) or per-route group depending
// on the middleware type. See internal/app for registration.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/response"
)

// Recovery returns middleware that recovers from panics, logs the stack
// trace, and returns a 500 error envelope to the client. This prevents a
// single panicking handler from crashing the entire server.
func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (returnErr error) {
			defer func() {
				if r := recover(); r != nil {
					// Log the panic with full stack trace for debugging.
					stack := debug.Stack()
					slog.Error("panic recovered",
						slog.Any("panic", r),
						slog.String("stack", string(stack)),
						slog.String("method", c.Request().Method),
						slog.String("path", c.Request().URL.Path),
					)

					// The client only sees a generic error.
					returnErr = response.Error(c,
						http.StatusInternalServerError, "Internal server error")
				}
			}()

			return next(c)
		}
	}
}
