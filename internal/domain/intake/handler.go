package intake

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/justintake/justintake/internal/domain/schema"
	"github.com/justintake/justintake/internal/platform/auth"
	"github.com/justintake/justintake/internal/platform/db"
	"github.com/justintake/justintake/internal/platform/tenant"
	"github.com/justintake/justintake/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the record endpoints. Submission is open to
// intake operators; everything that reads or mutates stored records is
// admin-only.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/records", h.Submit, auth.RequireRole(auth.RoleIntake))
	g.GET("/records", h.List, auth.RequireRole(auth.RoleAdmin))
	g.GET("/records/:id", h.Get, auth.RequireRole(auth.RoleAdmin))
	g.GET("/records/:id/view", h.View, auth.RequireRole(auth.RoleAdmin))
	g.GET("/records/:id/form", h.EditForm, auth.RequireRole(auth.RoleAdmin))
	g.PUT("/records/:id", h.Update, auth.RequireRole(auth.RoleAdmin))
	g.DELETE("/records/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

type submitRequest struct {
	TenantID string           `json:"tenantId"`
	Data     schema.FormValue `json:"data"`
}

type validationResponse struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields"`
}

func (h *Handler) Submit(c echo.Context) error {
	tenantID, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.service.Submit(c.Request().Context(), tenantID, req.TenantID, req.Data)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) List(c echo.Context) error {
	tenantID, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	p := pagination.FromContext(c)
	records, total, err := h.service.List(c.Request().Context(), tenantID, p.Limit, p.Offset)
	if err != nil {
		return h.mapError(c, err)
	}
	if records == nil {
		records = []*Record{}
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	tenantID, id, err := h.recordScope(c)
	if err != nil {
		return err
	}

	rec, err := h.service.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) View(c echo.Context) error {
	tenantID, id, err := h.recordScope(c)
	if err != nil {
		return err
	}

	fields, err := h.service.RenderView(c.Request().Context(), tenantID, id)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, fields)
}

func (h *Handler) EditForm(c echo.Context) error {
	tenantID, id, err := h.recordScope(c)
	if err != nil {
		return err
	}

	form, err := h.service.RenderEditable(c.Request().Context(), tenantID, id)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, form)
}

func (h *Handler) Update(c echo.Context) error {
	tenantID, id, err := h.recordScope(c)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.service.CommitEdit(c.Request().Context(), tenantID, id, req.Data)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	tenantID, id, err := h.recordScope(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), tenantID, id); err != nil {
		return h.mapError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// recordScope extracts the resolved tenant and the :id path parameter.
func (h *Handler) recordScope(c echo.Context) (string, uuid.UUID, error) {
	tenantID, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "record not found")
	}

	return tenantID, id, nil
}

func (h *Handler) mapError(c echo.Context, err error) error {
	if verrs, ok := IsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Fields: verrs,
		})
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, schema.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTenantMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "tenant mismatch")
	case errors.Is(err, db.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	default:
		return err
	}
}
