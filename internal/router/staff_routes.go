package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/election-tally/internal/handler"
	"github.com/iliyamo/election-tally/internal/middleware"
	"github.com/iliyamo/election-tally/internal/model"
)

// RegisterStaff registers election administration endpoints.  All of
// them require a valid JWT with the STAFF role.
func RegisterStaff(e *echo.Echo, h *handler.ElectionHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	staff := middleware.RequireRole(model.RoleStaff)

	e.POST("/v1/elections", h.CreateElection, auth, staff)
	// Only name and description are editable; the schedule is fixed.
	e.PATCH("/v1/elections/:id", h.UpdateElection, auth, staff)
	e.GET("/v1/elections/:id/history", h.VoteHistory, auth, staff)
}
