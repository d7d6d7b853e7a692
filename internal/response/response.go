// Package response defines the JSON envelope shared by every API route and
// the helpers that write it. Handlers never marshal ad-hoc maps; they call
// OK/Created/Paginated so success and error bodies stay uniform.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the standard API response body.
//
//	success: { "success": true, "data": ..., "message": "...", "pagination": {...} }
//	error:   { "success": false, "error": "..." }
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata from a total row count.
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// OK writes a 200 success envelope.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 success envelope with a human-readable message.
func OKMessage(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 success envelope with a message.
func Created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Paginated writes a 200 success envelope with pagination metadata.
func Paginated(c echo.Context, data any, p *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: p})
}

// Error writes an error envelope with the given status code.
func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Success: false, Error: message})
}
