package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/model"
)

// LedgerRepo owns the vote_checks table and the vote transaction.
type LedgerRepo struct{ db *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// WithinVote opens a transaction, locks the voter's users row so that
// concurrent votes of the same person queue up, and runs fn.  The
// transaction commits only when fn returns nil.  A unique key violation
// on (user_id, election_id) is reported as election.ErrDuplicateVote.
func (r *LedgerRepo) WithinVote(ctx context.Context, voterID, electionID uint64, fn func(tx election.VoteTx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin vote: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, voterID).Scan(&locked); err != nil {
		return fmt.Errorf("lock voter %d: %w", voterID, notFound(err))
	}

	if err := fn(&voteTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicateKey(err) {
			return election.ErrDuplicateVote
		}
		return fmt.Errorf("commit vote: %w", err)
	}
	committed = true
	return nil
}

// HasVoted reports whether a ledger entry exists outside any transaction.
func (r *LedgerRepo) HasVoted(ctx context.Context, voterID, electionID uint64) (bool, error) {
	return hasVoted(ctx, r.db, voterID, electionID)
}

// CountVoters returns the number of ledger entries of an election.
func (r *LedgerRepo) CountVoters(ctx context.Context, electionID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote_checks WHERE election_id = ?`, electionID).Scan(&n)
	return n, err
}

// Entries lists who voted in an election ordered by vote time.
func (r *LedgerRepo) Entries(ctx context.Context, electionID uint64) ([]model.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, receipt, user_id, election_id, voted_at FROM vote_checks WHERE election_id = ? ORDER BY voted_at, id`,
		electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Receipt, &e.VoterID, &e.ElectionID, &e.VotedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasVoted(ctx context.Context, q queryer, voterID, electionID uint64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM vote_checks WHERE user_id = ? AND election_id = ?)`,
		voterID, electionID).Scan(&exists)
	return exists, err
}

// voteTx runs the writes of a single vote on the open transaction.
type voteTx struct{ tx *sql.Tx }

func (t *voteTx) HasVoted(ctx context.Context, voterID, electionID uint64) (bool, error) {
	return hasVoted(ctx, t.tx, voterID, electionID)
}

func (t *voteTx) IncrementCandidate(ctx context.Context, electionID, candidateID uint64) (int64, error) {
	return t.increment(ctx, "vote_result_candidates", "candidate_id", electionID, candidateID)
}

func (t *voteTx) IncrementParty(ctx context.Context, electionID, partyID uint64) (int64, error) {
	return t.increment(ctx, "vote_result_parties", "party_id", electionID, partyID)
}

// increment upserts a tally row and returns the new count.  table and
// column are constants from this file, never user input.
func (t *voteTx) increment(ctx context.Context, table, column string, electionID, refID uint64) (int64, error) {
	upsert := `INSERT INTO ` + table + ` (election_id, ` + column + `, votes) VALUES (?, ?, 1)
        ON DUPLICATE KEY UPDATE votes = votes + 1`
	if _, err := t.tx.ExecContext(ctx, upsert, electionID, refID); err != nil {
		return 0, err
	}
	var n int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT votes FROM `+table+` WHERE election_id = ? AND `+column+` = ?`, electionID, refID).Scan(&n)
	return n, err
}

func (t *voteTx) Record(ctx context.Context, e *model.LedgerEntry) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO vote_checks (receipt, user_id, election_id, voted_at) VALUES (?, ?, ?, ?)`,
		e.Receipt, e.VoterID, e.ElectionID, e.VotedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return election.ErrDuplicateVote
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

var _ election.VoteTx = (*voteTx)(nil)
