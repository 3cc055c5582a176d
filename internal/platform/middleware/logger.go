// Package middleware holds the HTTP middleware shared by every route of
// the intake server: request identification, structured request logging,
// and panic recovery.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/justintake/justintake/internal/platform/tenant"
)

// Logger emits one structured log line per request. The resolved clinic
// tenant is included whenever tenant resolution has already run, so a
// single tenant's traffic can be filtered out of the combined log stream.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			if tenantID, ok := tenant.FromContext(c.Request().Context()); ok {
				evt = evt.Str("tenant", tenantID)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
