package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/election-tally/internal/election"
)

// statusOf maps a rejection kind to its HTTP status.
var statusOf = map[election.Kind]int{
	election.KindMalformedRequest:     http.StatusBadRequest,
	election.KindCandidateNotFound:    http.StatusBadRequest,
	election.KindPartyNotFound:        http.StatusBadRequest,
	election.KindInvalidElection:      http.StatusBadRequest,
	election.KindAreaNotFound:         http.StatusNotFound,
	election.KindElectionNotFound:     http.StatusNotFound,
	election.KindAlreadyVoted:         http.StatusConflict,
	election.KindElectionNotOpen:      http.StatusForbidden,
	election.KindCandidateOutsideArea: http.StatusForbidden,
	election.KindElectionNotFinished:  http.StatusForbidden,
	election.KindVoterHasNoArea:       http.StatusUnprocessableEntity,
}

// writeError renders err as {"error": kind, "detail": message}.  Anything
// that is not an *election.Error is logged and reported as a 500.
func writeError(c echo.Context, log zerolog.Logger, err error) error {
	var e *election.Error
	if !errors.As(err, &e) {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "detail": "internal server error"})
	}
	status, ok := statusOf[e.Kind]
	if !ok {
		status = http.StatusBadRequest
	}
	body := echo.Map{"error": string(e.Kind), "detail": e.Error()}
	if e.Field != "" {
		body["field"] = e.Field
	}
	return c.JSON(status, body)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := parseUint(c.Param(name))
	return id, err == nil && id != 0
}
