package properties

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// propertySortable is the allowlist of sortBy columns for property listings.
var propertySortable = []string{"created_at", "updated_at", "name", "property_type", "current_value", "square_feet"}

// Handler handles HTTP requests for properties.
type Handler struct {
	service PropertyService
}

// NewHandler creates a properties handler.
func NewHandler(service PropertyService) *Handler {
	return &Handler{service: service}
}

// List returns a page of the organization's properties (GET /properties).
// Supports ?propertyType= and ?tag= filters.
func (h *Handler) List(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at", propertySortable...)

	filter := ListFilter{
		PropertyType: c.QueryParam("propertyType"),
		Tag:          c.QueryParam("tag"),
	}

	properties, total, err := h.service.List(c.Request().Context(), auth.GetOrganizationID(c), filter, params)
	if err != nil {
		return err
	}
	if properties == nil {
		properties = []Property{}
	}
	return response.Paginated(c, properties, response.NewPagination(params.Page, params.Limit, total))
}

// Get returns one property (GET /properties/:id).
func (h *Handler) Get(c echo.Context) error {
	property, err := h.service.GetByID(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, property)
}

// Create adds a property (POST /properties).
func (h *Handler) Create(c echo.Context) error {
	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	property, err := h.service.Create(c.Request().Context(), auth.GetOrganizationID(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, property, "Property created successfully")
}

// Update modifies a property (PUT /properties/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	property, err := h.service.Update(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, property, "Property updated successfully")
}

// Delete removes a property (DELETE /properties/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id")); err != nil {
		return err
	}
	return response.OKMessage(c, nil, "Property deleted successfully")
}
