package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
)

// RequestObserver receives one call per finished request.
type RequestObserver interface {
    ObserveRequest(method, route string, code int, took time.Duration)
}

// RequestLogger writes one structured line per request and reports it to
// obs.  The matched route pattern is used as the metrics label.
func RequestLogger(log zerolog.Logger, obs RequestObserver) echo.MiddlewareFunc {
    log = log.With().Str("component", "http").Logger()
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo write the error response so the status is final
                c.Error(err)
            }
            took := time.Since(start)
            req := c.Request()
            status := c.Response().Status

            if obs != nil {
                obs.ObserveRequest(req.Method, c.Path(), status, took)
            }

            ev := log.Info()
            if status >= 500 {
                ev = log.Error().Err(err)
            }
            ev = ev.Str("method", req.Method).
                Str("path", req.URL.Path).
                Int("status", status).
                Dur("latency", took)
            if uid, ok := UserID(c); ok {
                ev = ev.Uint64("user_id", uid)
            }
            ev.Msg("request")
            return nil
        }
    }
}
