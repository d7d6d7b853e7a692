package contacts

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// contactSortable is the allowlist of sortBy columns for contact listings.
var contactSortable = []string{"created_at", "updated_at", "first_name", "last_name", "company_name", "email"}

// Handler handles HTTP requests for contacts.
type Handler struct {
	service ContactService
}

// NewHandler creates a contacts handler.
func NewHandler(service ContactService) *Handler {
	return &Handler{service: service}
}

// List returns a page of the organization's contacts (GET /contacts).
// Supports ?contactType=person|company and ?tag= filters.
func (h *Handler) List(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at", contactSortable...)

	filter := ListFilter{
		ContactType: c.QueryParam("contactType"),
		Tag:         c.QueryParam("tag"),
	}
	if filter.ContactType != "" && filter.ContactType != TypePerson && filter.ContactType != TypeCompany {
		return apperror.NewBadRequest("contactType must be person or company")
	}

	contacts, total, err := h.service.List(c.Request().Context(), auth.GetOrganizationID(c), filter, params)
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return response.Paginated(c, contacts, response.NewPagination(params.Page, params.Limit, total))
}

// Search finds contacts matching ?q= (GET /contacts/search).
func (h *Handler) Search(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at", contactSortable...)

	contacts, total, err := h.service.Search(c.Request().Context(), auth.GetOrganizationID(c), c.QueryParam("q"), params)
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return response.Paginated(c, contacts, response.NewPagination(params.Page, params.Limit, total))
}

// Get returns one contact (GET /contacts/:id).
func (h *Handler) Get(c echo.Context) error {
	contact, err := h.service.GetByID(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, contact)
}

// Create adds a contact (POST /contacts).
func (h *Handler) Create(c echo.Context) error {
	var req CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	contact, err := h.service.Create(c.Request().Context(), auth.GetOrganizationID(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, contact, "Contact created successfully")
}

// Update modifies a contact (PUT /contacts/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateContactRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	contact, err := h.service.Update(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, contact, "Contact updated successfully")
}

// Delete removes a contact (DELETE /contacts/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id")); err != nil {
		return err
	}
	return response.OKMessage(c, nil, "Contact deleted successfully")
}
