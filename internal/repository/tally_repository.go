package repository

import (
	"context"
	"database/sql"
)

// TallyRepo reads the per-election counters.
type TallyRepo struct{ db *sql.DB }

func NewTallyRepo(db *sql.DB) *TallyRepo { return &TallyRepo{db: db} }

// CandidateCounts returns votes per candidate for candidates with a row.
func (r *TallyRepo) CandidateCounts(ctx context.Context, electionID uint64) (map[uint64]int64, error) {
	return r.counts(ctx, `SELECT candidate_id, votes FROM vote_result_candidates WHERE election_id = ? AND votes > 0`, electionID)
}

// PartyCounts returns votes per party for parties with a row.
func (r *TallyRepo) PartyCounts(ctx context.Context, electionID uint64) (map[uint64]int64, error) {
	return r.counts(ctx, `SELECT party_id, votes FROM vote_result_parties WHERE election_id = ? AND votes > 0`, electionID)
}

func (r *TallyRepo) counts(ctx context.Context, q string, electionID uint64) (map[uint64]int64, error) {
	rows, err := r.db.QueryContext(ctx, q, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64]int64{}
	for rows.Next() {
		var id uint64
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
