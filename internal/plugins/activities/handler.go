package activities

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/auth"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// activitySortable is the allowlist of sortBy columns for activity listings.
var activitySortable = []string{"created_at", "updated_at", "scheduled_at", "completed_at", "subject", "activity_type"}

// Handler handles HTTP requests for activities.
type Handler struct {
	service ActivityService
}

// NewHandler creates an activities handler.
func NewHandler(service ActivityService) *Handler {
	return &Handler{service: service}
}

// List returns a page of the organization's activities (GET /activities).
// Supports ?activityType=, ?contactId= and ?propertyId= filters.
func (h *Handler) List(c echo.Context) error {
	params := response.ParseListParams(c, 20, "created_at", activitySortable...)

	filter := ListFilter{
		ActivityType: c.QueryParam("activityType"),
		ContactID:    c.QueryParam("contactId"),
		PropertyID:   c.QueryParam("propertyId"),
	}
	if filter.ActivityType != "" && !validTypes[filter.ActivityType] {
		return apperror.NewBadRequest("unknown activityType")
	}

	activities, total, err := h.service.List(c.Request().Context(), auth.GetOrganizationID(c), filter, params)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []Activity{}
	}
	return response.Paginated(c, activities, response.NewPagination(params.Page, params.Limit, total))
}

// Get returns one activity (GET /activities/:id).
func (h *Handler) Get(c echo.Context) error {
	activity, err := h.service.GetByID(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, activity)
}

// Create adds an activity (POST /activities).
func (h *Handler) Create(c echo.Context) error {
	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	activity, err := h.service.Create(c.Request().Context(), auth.GetOrganizationID(c), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, activity, "Activity created successfully")
}

// Update modifies an activity (PUT /activities/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	activity, err := h.service.Update(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, activity, "Activity updated successfully")
}

// Complete marks an activity done (POST /activities/:id/complete).
func (h *Handler) Complete(c echo.Context) error {
	var req CompleteActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	activity, err := h.service.Complete(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, activity, "Activity completed")
}

// Delete removes an activity (DELETE /activities/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetOrganizationID(c), c.Param("id")); err != nil {
		return err
	}
	return response.OKMessage(c, nil, "Activity deleted successfully")
}
