package election

import (
	"context"

	"github.com/iliyamo/election-tally/internal/model"
)

// Rosters is the read-only view of the data the vote transaction
// validates against.  It is owned by the surrounding administration
// system; this package never writes to it.
type Rosters interface {
	Election(ctx context.Context, id uint64) (model.Election, error)
	Area(ctx context.Context, id uint64) (model.Area, error)
	Candidate(ctx context.Context, id uint64) (model.Candidate, error)
	// CandidatesInArea returns the area's candidates ordered by id.
	CandidatesInArea(ctx context.Context, areaID uint64) ([]model.Candidate, error)
	// Candidates returns every candidate ordered by id.
	Candidates(ctx context.Context) ([]model.Candidate, error)
	Party(ctx context.Context, id uint64) (model.Party, error)
	// Parties returns every party ordered by id.
	Parties(ctx context.Context) ([]model.Party, error)
	Voter(ctx context.Context, id uint64) (model.Voter, error)
}

// Elections holds the staff managed election records.
type Elections interface {
	// ListElections returns every election ordered by id.
	ListElections(ctx context.Context) ([]model.Election, error)
	// CreateElection inserts e and fills in its generated fields.
	CreateElection(ctx context.Context, e *model.Election) error
	// UpdateElectionDetails changes the name and description only.
	UpdateElectionDetails(ctx context.Context, id uint64, name, description string) (model.Election, error)
}

// VoteTx is the atomic scope of a single vote.  Nothing written through it
// is visible to others until the enclosing WithinVote returns nil.
type VoteTx interface {
	HasVoted(ctx context.Context, voterID, electionID uint64) (bool, error)
	IncrementCandidate(ctx context.Context, electionID, candidateID uint64) (int64, error)
	IncrementParty(ctx context.Context, electionID, partyID uint64) (int64, error)
	// Record inserts the ledger entry, filling ID.  It fails with
	// ErrDuplicateVote when the pair already voted.
	Record(ctx context.Context, entry *model.LedgerEntry) error
}

// Ledger is the append-only record of who has voted.
type Ledger interface {
	// WithinVote runs fn in one atomic scope that is exclusive for the
	// (voterID, electionID) pair.  Returning an error from fn discards every
	// write made through tx.
	WithinVote(ctx context.Context, voterID, electionID uint64, fn func(tx VoteTx) error) error
	HasVoted(ctx context.Context, voterID, electionID uint64) (bool, error)
	CountVoters(ctx context.Context, electionID uint64) (int64, error)
	// Entries lists the ledger of an election ordered by vote time.
	Entries(ctx context.Context, electionID uint64) ([]model.LedgerEntry, error)
}

// Tallies reads the per-election counters.  Only rows that exist are
// returned; callers pad missing candidates or parties themselves.
type Tallies interface {
	CandidateCounts(ctx context.Context, electionID uint64) (map[uint64]int64, error)
	PartyCounts(ctx context.Context, electionID uint64) (map[uint64]int64, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	Rosters
	Elections
	Ledger
	Tallies
}

// Publisher is notified after a vote has been committed.
type Publisher interface {
	VoteRecorded(ctx context.Context, entry model.LedgerEntry) error
}

// ResultCache stores results of finished elections, which never change.
type ResultCache interface {
	// Get decodes the cached value into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Metrics receives service level counters.
type Metrics interface {
	VoteAccepted()
	VoteRejected(reason string)
	ResultServed(kind string, cached bool)
}
