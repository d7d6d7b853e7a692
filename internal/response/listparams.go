package response

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ListParams holds the pagination and sorting query parameters consumed by
// list endpoints. Sorting columns are validated against a per-route
// allowlist so client input never reaches SQL identifiers directly.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// maxListLimit caps the page size for all list endpoints.
const maxListLimit = 100

// ParseListParams reads page/limit/sortBy/sortOrder from the query string.
// Both camelCase (sortBy, sortOrder) and snake_case (sort_by, sort_direction)
// spellings are accepted. Out-of-range values clamp to defaults rather than
// erroring: a bad page number is not worth failing a read for.
//
// sortable is the allowlist of column names valid for this route; a sortBy
// outside the allowlist silently falls back to defaultSort.
func ParseListParams(c echo.Context, defaultLimit int, defaultSort string, sortable ...string) ListParams {
	p := ListParams{
		Page:      1,
		Limit:     defaultLimit,
		SortBy:    defaultSort,
		SortOrder: "desc",
	}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page >= 1 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit >= 1 && limit <= maxListLimit {
		p.Limit = limit
	}

	sortBy := firstQueryParam(c, "sortBy", "sort_by")
	for _, col := range sortable {
		if sortBy == col {
			p.SortBy = col
			break
		}
	}

	order := strings.ToLower(firstQueryParam(c, "sortOrder", "sort_direction"))
	if order == "asc" {
		p.SortOrder = "asc"
	}

	return p
}

// Offset returns the SQL OFFSET value for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderClause returns a safe "ORDER BY col dir" fragment. Callers must have
// populated SortBy via ParseListParams so the column is allowlisted.
func (p ListParams) OrderClause() string {
	dir := "DESC"
	if p.SortOrder == "asc" {
		dir = "ASC"
	}
	return p.SortBy + " " + dir
}

// firstQueryParam returns the first non-empty value among the given keys.
func firstQueryParam(c echo.Context, keys ...string) string {
	for _, key := range keys {
		if v := c.QueryParam(key); v != "" {
			return v
		}
	}
	return ""
}
