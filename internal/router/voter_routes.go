package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/election-tally/internal/handler"
	"github.com/iliyamo/election-tally/internal/middleware"
	"github.com/iliyamo/election-tally/internal/model"
)

// RegisterVoter registers the vote casting endpoint.  It requires a valid
// JWT; staff are citizens too and may vote.  limiter runs after
// authentication so buckets are keyed by user.
func RegisterVoter(e *echo.Echo, h *handler.ElectionHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleVoter, model.RoleStaff),
	}
	if limiter != nil {
		mw = append(mw, limiter)
	}
	e.POST("/v1/elections/:id/vote", h.CastVote, mw...)
}
