package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// Context key for the per-request AuthContext. Other plugins read it through
// the exported getters below.
const contextKeyAuth = "auth_context"

// RequireAuth returns middleware that resolves the Authorization bearer token
// to an AuthContext and injects it into the Echo context.
//
// Failure mapping: missing or invalid token is 401 Unauthorized; a valid
// identity with no organization is 400 "No organization found"; anything else
// is logged server-side and surfaced as a generic 500. On any failure the
// wrapped handler is never invoked.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}

			authCtx, err := service.ValidateToken(c.Request().Context(), token)
			if err != nil {
				if appErr, ok := err.(*apperror.AppError); ok {
					switch appErr.Code {
					case http.StatusUnauthorized:
						return response.Error(c, http.StatusUnauthorized, "Unauthorized")
					case http.StatusBadRequest:
						return response.Error(c, http.StatusBadRequest, appErr.Message)
					}
				}
				slog.Error("auth validation failed",
					slog.String("path", c.Request().URL.Path),
					slog.Any("error", err),
				)
				return response.Error(c, http.StatusInternalServerError, "Internal server error")
			}

			c.Set(contextKeyAuth, authCtx)
			return next(c)
		}
	}
}

// RequireSystemAdmin gates the admin surface. It passes when the
// authenticated user is a super admin, or when the request carries the
// server-side service key in X-Service-Key.
// Must run after RequireAuth on the route chain.
func RequireSystemAdmin(serviceKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if serviceKey != "" {
				provided := c.Request().Header.Get("X-Service-Key")
				if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) == 1 {
					return next(c)
				}
			}
			if authCtx := GetAuthContext(c); authCtx != nil && authCtx.User.IsSuperAdmin {
				return next(c)
			}
			return response.Error(c, http.StatusForbidden, "Forbidden")
		}
	}
}

// --- Exported getters for other plugins ---

// GetAuthContext retrieves the request's AuthContext.
// Returns nil when RequireAuth was not applied.
func GetAuthContext(c echo.Context) *AuthContext {
	authCtx, ok := c.Get(contextKeyAuth).(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// GetUserID returns the authenticated user's ID, or "" when unauthenticated.
// The rate-limit middleware uses this as its per-user key.
func GetUserID(c echo.Context) string {
	if authCtx := GetAuthContext(c); authCtx != nil {
		return authCtx.User.ID
	}
	return ""
}

// GetOrganizationID returns the request's organization scope, or "" when
// unauthenticated.
func GetOrganizationID(c echo.Context) string {
	if authCtx := GetAuthContext(c); authCtx != nil {
		return authCtx.OrganizationID
	}
	return ""
}

// BearerToken extracts the token from the Authorization header. Returns ""
// when the header is absent or not a Bearer scheme.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
