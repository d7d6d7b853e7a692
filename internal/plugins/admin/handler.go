package admin

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/plugins/organizations"
	"github.com/infinitas/crm/internal/response"
)

// Handler handles HTTP requests for the admin surface.
type Handler struct {
	service Service
}

// NewHandler creates an admin handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Stats returns the system census (GET /admin/stats).
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, stats)
}

// ListOrganizations returns a page of all tenants (GET /admin/organizations).
func (h *Handler) ListOrganizations(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at")

	orgs, total, err := h.service.ListOrganizations(c.Request().Context(), params.Offset(), params.Limit)
	if err != nil {
		return err
	}
	if orgs == nil {
		orgs = []organizations.Organization{}
	}
	return response.Paginated(c, orgs, response.NewPagination(params.Page, params.Limit, total))
}

// GetOrganization returns one tenant with its record counts
// (GET /admin/organizations/:id).
func (h *Handler) GetOrganization(c echo.Context) error {
	detail, err := h.service.OrganizationDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, detail)
}

// ListUsers returns a page of all user accounts (GET /admin/users).
func (h *Handler) ListUsers(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at")

	users, total, err := h.service.ListUsers(c.Request().Context(), params.Offset(), params.Limit)
	if err != nil {
		return err
	}
	if users == nil {
		users = []UserSummary{}
	}
	return response.Paginated(c, users, response.NewPagination(params.Page, params.Limit, total))
}

// ClearRateLimits flushes all rate limit state (POST /admin/ratelimits/clear).
func (h *Handler) ClearRateLimits(c echo.Context) error {
	stats := h.service.ClearRateLimits()

	slog.Warn("rate limits cleared",
		slog.String("by_user", auth.GetUserID(c)),
	)
	return response.OKMessage(c, stats, "Rate limits cleared")
}
