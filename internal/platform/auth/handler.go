package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justintake/justintake/internal/platform/tenant"
)

type Handler struct {
	service *LoginService
}

func NewHandler(service *LoginService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the login endpoint. It sits outside the
// authenticated API group.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) Login(c echo.Context) error {
	tenantID, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	token, user, err := h.service.Login(c.Request().Context(), tenantID, req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	})
}
