package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
	"github.com/infinitas/crm/internal/validate"
)

// Handler handles HTTP requests for identity. Handlers stay thin: bind,
// validate, call the service, write the envelope.
type Handler struct {
	service AuthService
}

// NewHandler creates an auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// loginResponse is the payload of a successful register or login.
type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register creates an account and logs it straight in (POST /auth/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		return err
	}

	token, _, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Created(c, loginResponse{Token: token, User: user}, "Account created successfully")
}

// Login authenticates and issues a bearer token (POST /auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.OK(c, loginResponse{Token: token, User: user})
}

// Logout revokes the current token's session (POST /auth/logout).
func (h *Handler) Logout(c echo.Context) error {
	if token := BearerToken(c); token != "" {
		if err := h.service.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	return response.OKMessage(c, nil, "Logged out")
}

// Me returns the authenticated user (GET /auth/me).
func (h *Handler) Me(c echo.Context) error {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		return apperror.NewUnauthorized("Unauthorized")
	}
	return response.OK(c, authCtx.User)
}
