package repository

import (
	"database/sql"

	"github.com/iliyamo/election-tally/internal/election"
)

// Store bundles the MySQL repositories behind election.Store.
type Store struct {
	*ElectionRepo
	*RosterRepo
	*LedgerRepo
	*TallyRepo
}

var _ election.Store = (*Store)(nil)

// NewStore wires every repository to the same connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		ElectionRepo: NewElectionRepo(db),
		RosterRepo:   NewRosterRepo(db),
		LedgerRepo:   NewLedgerRepo(db),
		TallyRepo:    NewTallyRepo(db),
	}
}
