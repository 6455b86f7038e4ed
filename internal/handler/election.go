package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/middleware"
)

// ElectionHandler serves the election catalog, staff administration, vote
// casting and result endpoints.
type ElectionHandler struct {
	Svc *election.Service
	Log zerolog.Logger
}

func NewElectionHandler(svc *election.Service, log zerolog.Logger) *ElectionHandler {
	return &ElectionHandler{Svc: svc, Log: log.With().Str("component", "handler").Logger()}
}

type createElectionReq struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"` // optional, defaults to now
	EndDate     *time.Time `json:"end_date"`
}

type updateElectionReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListElections: GET /v1/elections
func (h *ElectionHandler) ListElections(c echo.Context) error {
	out, err := h.Svc.ListElections(c.Request().Context(), h.Svc.Now())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// OngoingElections: GET /v1/elections/ongoing
func (h *ElectionHandler) OngoingElections(c echo.Context) error {
	out, err := h.Svc.OngoingElections(c.Request().Context(), h.Svc.Now())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetElection: GET /v1/elections/:id.  Authenticated callers also learn
// whether they have voted.
func (h *ElectionHandler) GetElection(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := middleware.UserID(c)
	v, err := h.Svc.ElectionDetail(c.Request().Context(), id, uid, h.Svc.Now())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

// CreateElection: POST /v1/elections (staff)
func (h *ElectionHandler) CreateElection(c echo.Context) error {
	var req createElectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := election.NewElection{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		in.EndDate = *req.EndDate
	}
	e, err := h.Svc.CreateElection(c.Request().Context(), in, h.Svc.Now())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// UpdateElection: PATCH /v1/elections/:id (staff).  Only name and
// description can change.
func (h *ElectionHandler) UpdateElection(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateElectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, err := h.Svc.UpdateElectionDetails(c.Request().Context(), id, req.Name, strings.TrimSpace(req.Description))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, e)
}

// VoteHistory: GET /v1/elections/:id/history (staff)
func (h *ElectionHandler) VoteHistory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	entries, err := h.Svc.VoteHistory(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"election_id": id, "count": len(entries), "entries": entries})
}

func parseUint(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
