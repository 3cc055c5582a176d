package tenant

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrInvalidTenant is returned when a tenant identifier cannot be derived
// from the request or fails the allowed character set.
var ErrInvalidTenant = errors.New("invalid tenant")

type contextKey string

const tenantKey contextKey = "tenant_id"

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Resolver derives a tenant identifier from an incoming request host.
type Resolver interface {
	Resolve(host string) (string, error)
}

// SubdomainResolver extracts the first host label as the tenant identifier.
// A request to acme.justintake.com resolves to tenant "acme". The port, if
// present, is stripped before splitting.
type SubdomainResolver struct{}

func NewSubdomainResolver() *SubdomainResolver {
	return &SubdomainResolver{}
}

func (r *SubdomainResolver) Resolve(host string) (string, error) {
	if host == "" {
		return "", ErrInvalidTenant
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	label, _, _ := strings.Cut(host, ".")
	if label == "" || !tenantPattern.MatchString(label) {
		return "", ErrInvalidTenant
	}

	return strings.ToLower(label), nil
}

// Middleware resolves the tenant from the request host and stores it in the
// request context. Requests without a resolvable tenant are rejected with
// 400 before reaching any handler.
func Middleware(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolver.Resolve(c.Request().Host)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant")
			}

			ctx := context.WithValue(c.Request().Context(), tenantKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// FromContext returns the tenant identifier stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey).(string)
	return id, ok && id != ""
}

// NewContext returns a context carrying the given tenant identifier.
// Used by tests and CLI commands that bypass the HTTP middleware.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey, id)
}
