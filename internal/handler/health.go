package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything the readiness check can probe, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health is a simple liveness endpoint used by load balancers.  It returns
// a plain text "ok" with a 200 status.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready returns a handler that reports 503 while any dependency is down.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		out := echo.Map{}
		for name, p := range deps {
			if err := p.PingContext(ctx); err != nil {
				status = http.StatusServiceUnavailable
				out[name] = err.Error()
				continue
			}
			out[name] = "ok"
		}
		return c.JSON(status, out)
	}
}
