package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/middleware"
)

// maxBallotBytes bounds the vote request body.
const maxBallotBytes = 4 << 10

// CastVote: POST /v1/elections/:id/vote
//
// The body is {"candidate_id": <int>, "party_id": <int>}.  On success the
// ledger entry is returned with 201; it carries no trace of the choice.
func (h *ElectionHandler) CastVote(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBallotBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(body) > maxBallotBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "body too large"})
	}
	b, err := election.ParseBallot(body)
	if err != nil {
		return writeError(c, h.Log, err)
	}

	entry, err := h.Svc.CastVote(c.Request().Context(), uid, id, b, h.Svc.Now())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, entry)
}
