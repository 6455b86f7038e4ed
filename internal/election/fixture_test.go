package election_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/memstore"
	"github.com/iliyamo/election-tally/internal/model"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	ongoingID  uint64 = 1
	upcomingID uint64 = 2
	finishedID uint64 = 3

	voterArea1  uint64 = 10
	voterNoArea uint64 = 11
	voterArea2  uint64 = 12
	staffID     uint64 = 99
)

func ptr(v uint64) *uint64 { return &v }

// seed builds two areas, two parties and three candidates:
// candidate 1 (area 1, party 1), candidate 2 (area 1, party 2) and
// candidate 3 (area 2, party 1).
func seed() *memstore.Store {
	s := memstore.New()
	s.PutElection(model.Election{ID: ongoingID, Name: "ongoing", StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)})
	s.PutElection(model.Election{ID: upcomingID, Name: "upcoming", StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour)})
	s.PutElection(model.Election{ID: finishedID, Name: "finished", StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour)})

	s.PutArea(model.Area{ID: 1, Name: "North"})
	s.PutArea(model.Area{ID: 2, Name: "South"})
	s.PutParty(model.Party{ID: 1, Name: "Blue"})
	s.PutParty(model.Party{ID: 2, Name: "Green"})
	s.PutCandidate(model.Candidate{ID: 1, Name: "A", AreaID: ptr(1), PartyID: ptr(1)})
	s.PutCandidate(model.Candidate{ID: 2, Name: "B", AreaID: ptr(1), PartyID: ptr(2)})
	s.PutCandidate(model.Candidate{ID: 3, Name: "C", AreaID: ptr(2), PartyID: ptr(1)})

	s.PutUser(model.User{ID: voterArea1, Username: "v1", Role: model.RoleVoter, AreaID: ptr(1), IsActive: true})
	s.PutUser(model.User{ID: voterNoArea, Username: "v2", Role: model.RoleVoter, IsActive: true})
	s.PutUser(model.User{ID: voterArea2, Username: "v3", Role: model.RoleVoter, AreaID: ptr(2), IsActive: true})
	s.PutUser(model.User{ID: staffID, Username: "staff", Role: model.RoleStaff, AreaID: ptr(1), IsActive: true})
	return s
}

func newService(t *testing.T, s election.Store, opts ...func(*election.Deps)) *election.Service {
	t.Helper()
	d := election.Deps{
		Store:  s,
		Clock:  func() time.Time { return now },
		Logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(&d)
	}
	return election.NewService(d)
}

func ballot(candidate, party uint64) election.Ballot {
	return election.Ballot{CandidateID: ptr(candidate), PartyID: ptr(party)}
}

type recordingMetrics struct {
	mu       sync.Mutex
	accepted int
	rejected map[string]int
	served   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rejected: map[string]int{}, served: map[string]int{}}
}

func (m *recordingMetrics) VoteAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted++
}

func (m *recordingMetrics) VoteRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) ResultServed(kind string, cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached {
		kind += ":cached"
	}
	m.served[kind]++
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []model.LedgerEntry
	err     error
}

func (p *recordingPublisher) VoteRecorded(_ context.Context, e model.LedgerEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}
