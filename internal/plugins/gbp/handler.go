package gbp

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// Handler handles HTTP requests for the GBP integration.
type Handler struct {
	service Service
}

// NewHandler creates a GBP handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetProfile returns the organization's GBP binding (GET /gbp/profile).
func (h *Handler) GetProfile(c echo.Context) error {
	profile, err := h.service.GetProfile(c.Request().Context(), auth.GetOrganizationID(c))
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// UpsertProfile creates or updates the binding (PUT /gbp/profile).
func (h *Handler) UpsertProfile(c echo.Context) error {
	var req UpsertProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	profile, err := h.service.UpsertProfile(c.Request().Context(), auth.GetOrganizationID(c), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, profile, "Google Business Profile linked")
}

// StoreTokens saves OAuth credentials from an authorization flow
// (PUT /gbp/tokens). The credentials are write-only.
func (h *Handler) StoreTokens(c echo.Context) error {
	var req StoreTokensRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	if err := h.service.StoreTokens(c.Request().Context(), auth.GetOrganizationID(c), req); err != nil {
		return err
	}
	return response.OKMessage(c, nil, "Credentials stored")
}

// Sync refreshes the cached profile data (POST /gbp/sync).
func (h *Handler) Sync(c echo.Context) error {
	result, err := h.service.Sync(c.Request().Context(), auth.GetOrganizationID(c), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return response.OKMessage(c, result, "Profile synced")
}
