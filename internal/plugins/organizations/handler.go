package organizations

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// Handler handles HTTP requests for the current organization.
type Handler struct {
	service OrganizationService
}

// NewHandler creates an organizations handler.
func NewHandler(service OrganizationService) *Handler {
	return &Handler{service: service}
}

// Get returns the caller's organization (GET /organization).
func (h *Handler) Get(c echo.Context) error {
	org, err := h.service.Get(c.Request().Context(), auth.GetOrganizationID(c))
	if err != nil {
		return err
	}
	return response.OK(c, org)
}

// Update applies a partial update to the caller's organization
// (PUT /organization).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	org, err := h.service.Update(c.Request().Context(), auth.GetOrganizationID(c), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, org, "Organization updated successfully")
}
