package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/election-tally/internal/config"
	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/handler"
	"github.com/iliyamo/election-tally/internal/memstore"
	"github.com/iliyamo/election-tally/internal/model"
	"github.com/iliyamo/election-tally/internal/router"
	"github.com/iliyamo/election-tally/internal/utils"
)

const secret = "handler-secret"

var start = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

const (
	ongoingID  uint64 = 1
	upcomingID uint64 = 2

	voterID  uint64 = 10
	noAreaID uint64 = 11
	southID  uint64 = 12
	staffID  uint64 = 99
	disabled uint64 = 50
)

const password = "s3cret-pass"

func ptr(v uint64) *uint64 { return &v }

type testEnv struct {
	e     *echo.Echo
	store *memstore.Store
	now   time.Time
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)

	s := memstore.New()
	s.PutElection(model.Election{ID: ongoingID, Name: "General", StartDate: start.Add(-time.Hour), EndDate: start.Add(time.Hour)})
	s.PutElection(model.Election{ID: upcomingID, Name: "By-election", StartDate: start.Add(24 * time.Hour), EndDate: start.Add(48 * time.Hour)})
	s.PutArea(model.Area{ID: 1, Name: "North"})
	s.PutArea(model.Area{ID: 2, Name: "South"})
	s.PutParty(model.Party{ID: 1, Name: "Blue"})
	s.PutParty(model.Party{ID: 2, Name: "Green"})
	s.PutCandidate(model.Candidate{ID: 1, Name: "A", AreaID: ptr(1), PartyID: ptr(1)})
	s.PutCandidate(model.Candidate{ID: 2, Name: "B", AreaID: ptr(1), PartyID: ptr(2)})
	s.PutCandidate(model.Candidate{ID: 3, Name: "C", AreaID: ptr(2), PartyID: ptr(2)})
	for _, u := range []model.User{
		{ID: voterID, Username: "alice", Role: model.RoleVoter, AreaID: ptr(1), IsActive: true},
		{ID: noAreaID, Username: "bob", Role: model.RoleVoter, IsActive: true},
		{ID: southID, Username: "carol", Role: model.RoleVoter, AreaID: ptr(2), IsActive: true},
		{ID: staffID, Username: "staff", Role: model.RoleStaff, AreaID: ptr(1), IsActive: true},
		{ID: disabled, Username: "gone", Role: model.RoleVoter, IsActive: false},
	} {
		u.PasswordHash = hash
		s.PutUser(u)
	}

	env := &testEnv{store: s, now: start}
	svc := election.NewService(election.Deps{
		Store:  s,
		Clock:  func() time.Time { return env.now },
		Logger: zerolog.Nop(),
	})

	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	e := echo.New()
	router.RegisterRoutes(e, nil, nil)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, s, s, s, zerolog.Nop()), secret)
	h := handler.NewElectionHandler(svc, zerolog.Nop())
	router.RegisterPublic(e, h, secret)
	router.RegisterVoter(e, h, secret, nil)
	router.RegisterStaff(e, h, secret)
	env.e = e
	return env
}

func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, uid uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uid, role, time.Hour, time.Now())
	require.NoError(t, err)
	return tok.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/login", "", `{"username":"Alice","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, model.RoleVoter, user["role"])
	access := body["access"].(map[string]any)["token"].(string)
	assert.NotEmpty(t, access)

	me := env.do(http.MethodGet, "/v1/me", access, "")
	require.Equal(t, http.StatusOK, me.Code)
	profile := decode(t, me)
	assert.Equal(t, "North", profile["area"].(map[string]any)["name"])

	cases := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"mallory","password":"x"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"alice"}`, http.StatusBadRequest},
		{"disabled", `{"username":"gone","password":"` + password + `"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, env.do(http.MethodPost, "/v1/auth/login", "", tc.body).Code)
		})
	}
}

func TestMeWithoutArea(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/v1/me", token(t, noAreaID, model.RoleVoter), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["area"])

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/v1/me", "", "").Code)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/login", "", `{"username":"alice","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	rec = env.do(http.MethodPost, "/v1/auth/refresh", "", `{"refresh_token":"`+first+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode(t, rec)["refresh"].(map[string]any)["token"].(string)
	assert.NotEqual(t, first, second)

	// the old token is single use
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/auth/refresh", "", `{"refresh_token":"`+first+`"}`).Code)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/v1/auth/logout", "", `{"refresh_token":"`+second+`"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/auth/refresh", "", `{"refresh_token":"`+second+`"}`).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/auth/refresh", "", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/auth/logout", "", `{}`).Code)
}

func TestLogoutWithBearerRevokesAllSessions(t *testing.T) {
	env := newEnv(t)
	var refresh []string
	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/v1/auth/login", "", `{"username":"alice","password":"`+password+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		refresh = append(refresh, decode(t, rec)["refresh"].(map[string]any)["token"].(string))
	}
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/v1/auth/logout", token(t, voterID, model.RoleVoter), "").Code)
	for _, r := range refresh {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/auth/refresh", "", `{"refresh_token":"`+r+`"}`).Code)
	}
}

func TestCastVote(t *testing.T) {
	env := newEnv(t)
	alice := token(t, voterID, model.RoleVoter)

	rec := env.do(http.MethodPost, "/v1/elections/1/vote", alice, `{"candidate_id":1,"party_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode(t, rec)
	assert.NotEmpty(t, entry["receipt"])
	assert.EqualValues(t, voterID, entry["voter_id"])
	assert.NotContains(t, rec.Body.String(), "candidate_id")

	rec = env.do(http.MethodPost, "/v1/elections/1/vote", alice, `{"candidate_id":2,"party_id":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_voted", decode(t, rec)["error"])

	detail := env.do(http.MethodGet, "/v1/elections/1", alice, "")
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Equal(t, true, decode(t, detail)["has_voted"])
}

func TestCastVoteRejections(t *testing.T) {
	cases := []struct {
		name  string
		uid   uint64
		path  string
		body  string
		code  int
		kind  string
		field string
	}{
		{"string id", voterID, "/v1/elections/1/vote", `{"candidate_id":"1","party_id":1}`, http.StatusBadRequest, "malformed_request", "candidate_id"},
		{"missing party", voterID, "/v1/elections/1/vote", `{"candidate_id":1}`, http.StatusBadRequest, "malformed_request", "party_id"},
		{"not json", voterID, "/v1/elections/1/vote", `[]`, http.StatusBadRequest, "malformed_request", ""},
		{"no election", voterID, "/v1/elections/77/vote", `{"candidate_id":1,"party_id":1}`, http.StatusNotFound, "election_not_found", ""},
		{"upcoming", voterID, "/v1/elections/2/vote", `{"candidate_id":1,"party_id":1}`, http.StatusForbidden, "election_not_open", ""},
		{"no candidate", voterID, "/v1/elections/1/vote", `{"candidate_id":9,"party_id":1}`, http.StatusBadRequest, "candidate_not_found", "candidate_id"},
		{"no area", noAreaID, "/v1/elections/1/vote", `{"candidate_id":1,"party_id":1}`, http.StatusUnprocessableEntity, "voter_has_no_area", ""},
		{"outside area", southID, "/v1/elections/1/vote", `{"candidate_id":1,"party_id":1}`, http.StatusForbidden, "candidate_outside_area", "candidate_id"},
		{"no party", voterID, "/v1/elections/1/vote", `{"candidate_id":1,"party_id":9}`, http.StatusBadRequest, "party_not_found", "party_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t)
			rec := env.do(http.MethodPost, tc.path, token(t, tc.uid, model.RoleVoter), tc.body)
			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tc.kind, body["error"])
			assert.NotEmpty(t, body["detail"])
			if tc.field != "" {
				assert.Equal(t, tc.field, body["field"])
			}
			n, err := env.store.CountVoters(t.Context(), ongoingID)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCastVoteRequiresAuth(t *testing.T) {
	env := newEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/elections/1/vote", "", `{"candidate_id":1,"party_id":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/elections/x/vote", token(t, voterID, model.RoleVoter), `{}`).Code)
}

func TestResults(t *testing.T) {
	env := newEnv(t)
	for _, v := range []struct {
		uid  uint64
		body string
	}{
		{voterID, `{"candidate_id":2,"party_id":1}`},
		{staffID, `{"candidate_id":2,"party_id":2}`},
		{southID, `{"candidate_id":3,"party_id":2}`},
	} {
		role := model.RoleVoter
		if v.uid == staffID {
			role = model.RoleStaff
		}
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/v1/elections/1/vote", token(t, v.uid, role), v.body).Code)
	}

	staff := token(t, staffID, model.RoleStaff)
	alice := token(t, voterID, model.RoleVoter)

	// while ongoing only staff may look
	rec := env.do(http.MethodGet, "/v1/elections/1/areas/1/result", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "election_not_finished", decode(t, rec)["error"])
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/v1/elections/1/partylist", alice, "").Code)

	rec = env.do(http.MethodGet, "/v1/elections/1/areas/1/result", staff, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var area election.AreaResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &area))
	require.Len(t, area.Candidates, 2)
	assert.Equal(t, uint64(2), area.Candidates[0].Candidate.ID)
	assert.Equal(t, int64(2), area.Candidates[0].Votes)
	assert.Equal(t, uint64(1), area.Candidates[1].Candidate.ID)
	assert.Equal(t, int64(0), area.Candidates[1].Votes)

	env.now = start.Add(2 * time.Hour)

	rec = env.do(http.MethodGet, "/v1/elections/1/partylist", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pl election.PartylistResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pl))
	assert.Equal(t, election.StatusFinished, pl.Status)
	assert.Equal(t, int64(3), pl.Detail.TotalVoters)
	require.Len(t, pl.Parties, 2)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/elections/1/areas/8/result", "", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/elections/9/partylist", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/v1/elections/1/areas/x/result", "", "").Code)
}

func TestElectionCatalog(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/v1/elections", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []election.ElectionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, election.StatusOngoing, list[0].Status)
	assert.Equal(t, election.StatusUpcoming, list[1].Status)

	rec = env.do(http.MethodGet, "/v1/elections/ongoing", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, ongoingID, list[0].ID)

	rec = env.do(http.MethodGet, "/v1/elections/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, hasVoted := decode(t, rec)["has_voted"]
	assert.False(t, hasVoted, "guests get no has_voted flag")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/elections/42", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/v1/elections", "broken", "").Code)
}

func TestStaffAdministration(t *testing.T) {
	env := newEnv(t)
	staff := token(t, staffID, model.RoleStaff)
	alice := token(t, voterID, model.RoleVoter)

	body := `{"name":"Referendum","description":"yes or no","end_date":"2026-06-01T00:00:00Z"}`
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/v1/elections", alice, body).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/v1/elections", "", body).Code)

	rec := env.do(http.MethodPost, "/v1/elections", staff, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Election
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Referendum", created.Name)
	assert.True(t, created.StartDate.Equal(start), "start defaults to now")

	rec = env.do(http.MethodPost, "/v1/elections", staff, `{"name":"Bad","start_date":"2026-07-01T00:00:00Z","end_date":"2026-06-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_election", decode(t, rec)["error"])

	rec = env.do(http.MethodPatch, "/v1/elections/1", staff, `{"name":"General 2026","description":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "General 2026", decode(t, rec)["name"])
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPatch, "/v1/elections/55", staff, `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPatch, "/v1/elections/1", staff, `{"name":" "}`).Code)

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/v1/elections/1/vote", alice, `{"candidate_id":1,"party_id":1}`).Code)
	rec = env.do(http.MethodGet, "/v1/elections/1/history", staff, "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode(t, rec)
	assert.EqualValues(t, 1, hist["count"])
	assert.NotContains(t, rec.Body.String(), "candidate_id")
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/v1/elections/1/history", alice, "").Code)
}
