package schema

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justintake/justintake/internal/platform/db"
	"github.com/justintake/justintake/internal/platform/tenant"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/clinic-config", h.GetConfig)
}

// GetConfig returns the form configuration for the tenant resolved from
// the request host.
func (h *Handler) GetConfig(c echo.Context) error {
	tenantID, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	sch, err := h.service.GetSchema(c.Request().Context(), tenantID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "configuration not found")
		case errors.Is(err, db.ErrUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, sch)
}
