package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/election-tally/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/election-tally/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/election-tally/internal/model"
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer, ready map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAuth registers all authentication-related routes.  Token
// exchange lives under /v1/auth, the profile under /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout revokes the refresh token in the body, or every session of
	// the bearer when no token is given.
	g.POST("/logout", a.Logout, middleware.OptionalJWTAuth(jwtSecret))

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleVoter, model.RoleStaff),
	)
}

// RegisterPublic registers the browse and result endpoints.  Guests are
// allowed; a bearer token, when present, is verified so staff can preview
// results and voters can see whether they have voted.
func RegisterPublic(e *echo.Echo, h *handler.ElectionHandler, jwtSecret string) {
	opt := middleware.OptionalJWTAuth(jwtSecret)
	e.GET("/v1/elections", h.ListElections, opt)
	e.GET("/v1/elections/ongoing", h.OngoingElections, opt)
	e.GET("/v1/elections/:id", h.GetElection, opt)
	e.GET("/v1/elections/:id/areas/:area_id/result", h.AreaResult, opt)
	e.GET("/v1/elections/:id/partylist", h.PartylistResult, opt)
}
