package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger checks one dependency, e.g. (*sql.DB).PingContext.
type Pinger func(ctx context.Context) error

// Health is a liveness endpoint used by load balancers and monitoring.  It
// returns a plain text "ok" with 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready returns a readiness handler that pings every named dependency and
// answers 503 naming a failing one.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		for name, ping := range deps {
			if ping == nil {
				return c.String(http.StatusServiceUnavailable, name+" not configured")
			}
			if err := ping(ctx); err != nil {
				return c.String(http.StatusServiceUnavailable, name+" unreachable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
