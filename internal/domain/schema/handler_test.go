package schema

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/justintake/justintake/internal/platform/tenant"
)

func configRequest(t *testing.T, repo *mockRepo, tenantID string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clinic-config", nil)
	req = req.WithContext(tenant.NewContext(req.Context(), tenantID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHandler(NewService(repo))
	return rec, h.GetConfig(c)
}

func TestHandler_GetConfig(t *testing.T) {
	repo := newMockRepo()
	repo.schemas["acme"] = acmeSchema()

	rec, err := configRequest(t, repo, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got Schema
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TenantName != "Acme Clinic" {
		t.Errorf("expected tenant name Acme Clinic, got %q", got.TenantName)
	}
	if len(got.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(got.Fields))
	}
}

func TestHandler_GetConfig_UnknownTenant(t *testing.T) {
	_, err := configRequest(t, newMockRepo(), "ghost")

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_GetConfig_StoreUnavailable(t *testing.T) {
	repo := newMockRepo()
	repo.failing = true

	_, err := configRequest(t, repo, "acme")

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}
