// Package memstore is an in-memory implementation of election.Store.  It
// is used by tests and by single process deployments that do not need
// durability.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/model"
)

type pairKey struct{ voter, election uint64 }

type tallyKey struct{ election, ref uint64 }

type refreshToken struct {
	userID  uint64
	expires time.Time
	revoked bool
}

// Store keeps every table in maps guarded by one RWMutex.  Votes of the
// same (voter, election) pair are additionally serialised by a per-pair
// mutex so the ledger check and the writes form one critical section.
type Store struct {
	mu sync.RWMutex

	elections  map[uint64]model.Election
	areas      map[uint64]model.Area
	parties    map[uint64]model.Party
	candidates map[uint64]model.Candidate
	users      map[uint64]model.User
	tokens     map[string]refreshToken

	ledger         map[pairKey]model.LedgerEntry
	candidateVotes map[tallyKey]int64
	partyVotes     map[tallyKey]int64

	nextElection uint64
	nextEntry    uint64
	nowFn        func() time.Time

	locksMu sync.Mutex
	locks   map[pairKey]*pairMutex
}

var _ election.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		elections:      map[uint64]model.Election{},
		areas:          map[uint64]model.Area{},
		parties:        map[uint64]model.Party{},
		candidates:     map[uint64]model.Candidate{},
		users:          map[uint64]model.User{},
		tokens:         map[string]refreshToken{},
		ledger:         map[pairKey]model.LedgerEntry{},
		candidateVotes: map[tallyKey]int64{},
		partyVotes:     map[tallyKey]int64{},
		nowFn:          func() time.Time { return time.Now().UTC() },
		locks:          map[pairKey]*pairMutex{},
	}
}

// SetClock replaces the clock used for generated timestamps and token
// expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

// ---- seeding ----

// PutElection inserts or replaces an election.
func (s *Store) PutElection(e model.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[e.ID] = e
	if e.ID > s.nextElection {
		s.nextElection = e.ID
	}
}

// PutArea inserts or replaces an area.
func (s *Store) PutArea(a model.Area) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas[a.ID] = a
}

// PutParty inserts or replaces a party.
func (s *Store) PutParty(p model.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[p.ID] = p
}

// PutCandidate inserts or replaces a candidate.
func (s *Store) PutCandidate(c model.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = c
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// ---- rosters ----

func (s *Store) Election(_ context.Context, id uint64) (model.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[id]
	if !ok {
		return model.Election{}, election.ErrNotFound
	}
	return e, nil
}

func (s *Store) Area(_ context.Context, id uint64) (model.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.areas[id]
	if !ok {
		return model.Area{}, election.ErrNotFound
	}
	return a, nil
}

func (s *Store) Candidate(_ context.Context, id uint64) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, election.ErrNotFound
	}
	return c, nil
}

func (s *Store) CandidatesInArea(_ context.Context, areaID uint64) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Candidate
	for _, c := range s.candidates {
		if c.InArea(areaID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Candidates(_ context.Context) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Party(_ context.Context, id uint64) (model.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return model.Party{}, election.ErrNotFound
	}
	return p, nil
}

func (s *Store) Parties(_ context.Context) ([]model.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Party, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Voter(_ context.Context, id uint64) (model.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.Voter{}, election.ErrNotFound
	}
	return u.AsVoter(), nil
}

// ---- elections ----

func (s *Store) ListElections(_ context.Context) ([]model.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateElection(_ context.Context, e *model.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextElection++
	now := s.nowFn()
	e.ID = s.nextElection
	e.CreatedAt, e.UpdatedAt = now, now
	s.elections[e.ID] = *e
	return nil
}

func (s *Store) UpdateElectionDetails(_ context.Context, id uint64, name, description string) (model.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return model.Election{}, election.ErrNotFound
	}
	e.Name, e.Description, e.UpdatedAt = name, description, s.nowFn()
	s.elections[id] = e
	return e, nil
}

// ---- ledger ----

// pairMutex serialises one (voter, election) pair.  refs counts the
// holder and the waiters; the entry is dropped when it reaches zero so the
// lock table only holds pairs with a vote in flight.
type pairMutex struct {
	sync.Mutex
	refs int
}

func (s *Store) lockPair(k pairKey) *pairMutex {
	s.locksMu.Lock()
	m, ok := s.locks[k]
	if !ok {
		m = &pairMutex{}
		s.locks[k] = m
	}
	m.refs++
	s.locksMu.Unlock()

	m.Lock()
	return m
}

func (s *Store) unlockPair(k pairKey, m *pairMutex) {
	m.Unlock()
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(s.locks, k)
	}
}

// pendingPairs reports how many pairs currently have a lock entry.
func (s *Store) pendingPairs() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

// WithinVote buffers the writes of fn and applies them under the store
// lock only when fn succeeds.
func (s *Store) WithinVote(ctx context.Context, voterID, electionID uint64, fn func(tx election.VoteTx) error) error {
	k := pairKey{voterID, electionID}
	m := s.lockPair(k)
	defer s.unlockPair(k, m)

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &voteTx{
		store:      s,
		candidates: map[tallyKey]int64{},
		parties:    map[tallyKey]int64{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *voteTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range tx.entries {
		if _, dup := s.ledger[pairKey{e.VoterID, e.ElectionID}]; dup {
			return election.ErrDuplicateVote
		}
	}
	for k, n := range tx.candidates {
		s.candidateVotes[k] += n
	}
	for k, n := range tx.parties {
		s.partyVotes[k] += n
	}
	for _, e := range tx.entries {
		s.nextEntry++
		e.ID = s.nextEntry
		s.ledger[pairKey{e.VoterID, e.ElectionID}] = *e
	}
	return nil
}

func (s *Store) HasVoted(_ context.Context, voterID, electionID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ledger[pairKey{voterID, electionID}]
	return ok, nil
}

func (s *Store) CountVoters(_ context.Context, electionID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for k := range s.ledger {
		if k.election == electionID {
			n++
		}
	}
	return n, nil
}

func (s *Store) Entries(_ context.Context, electionID uint64) ([]model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.LedgerEntry
	for k, e := range s.ledger {
		if k.election == electionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VotedAt.Equal(out[j].VotedAt) {
			return out[i].VotedAt.Before(out[j].VotedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- tallies ----

func (s *Store) CandidateCounts(_ context.Context, electionID uint64) (map[uint64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.candidateVotes, electionID), nil
}

func (s *Store) PartyCounts(_ context.Context, electionID uint64) (map[uint64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.partyVotes, electionID), nil
}

func collect(m map[tallyKey]int64, electionID uint64) map[uint64]int64 {
	out := map[uint64]int64{}
	for k, n := range m {
		if k.election == electionID && n > 0 {
			out[k.ref] = n
		}
	}
	return out
}

// ---- users and refresh tokens ----

// GetByUsername looks a user up by case-insensitive username.
func (s *Store) GetByUsername(_ context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.ToLower(u.Username) == username {
			return u, nil
		}
	}
	return model.User{}, election.ErrNotFound
}

// GetByID looks a user up by id.
func (s *Store) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, election.ErrNotFound
	}
	return u, nil
}

func (s *Store) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = refreshToken{userID: userID, expires: exp}
	return nil
}

func (s *Store) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.revoked || s.nowFn().After(t.expires) {
		return 0, election.ErrNotFound
	}
	return t.userID, nil
}

func (s *Store) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok {
		t.revoked = true
		s.tokens[tokenHash] = t
	}
	return nil
}

func (s *Store) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, t := range s.tokens {
		if t.userID == userID {
			t.revoked = true
			s.tokens[h] = t
		}
	}
	return nil
}
