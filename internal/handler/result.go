package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/election-tally/internal/middleware"
)

// AreaResult: GET /v1/elections/:id/areas/:area_id/result
//
// Guests and voters see results once the election has finished; staff may
// preview them while it is still running.
func (h *ElectionHandler) AreaResult(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	areaID, ok := pathID(c, "area_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid area_id"})
	}
	res, err := h.Svc.GetAreaResult(c.Request().Context(), id, areaID, h.Svc.Now(), middleware.IsStaff(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// PartylistResult: GET /v1/elections/:id/partylist
func (h *ElectionHandler) PartylistResult(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Svc.GetPartylistResult(c.Request().Context(), id, h.Svc.Now(), middleware.IsStaff(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}
