package memstore

import (
	"context"

	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/model"
)

// voteTx collects the writes of one vote.  Reads see committed state plus
// the transaction's own pending writes.
type voteTx struct {
	store      *Store
	candidates map[tallyKey]int64
	parties    map[tallyKey]int64
	entries    []*model.LedgerEntry
}

var _ election.VoteTx = (*voteTx)(nil)

func (tx *voteTx) HasVoted(ctx context.Context, voterID, electionID uint64) (bool, error) {
	for _, e := range tx.entries {
		if e.VoterID == voterID && e.ElectionID == electionID {
			return true, nil
		}
	}
	return tx.store.HasVoted(ctx, voterID, electionID)
}

func (tx *voteTx) IncrementCandidate(_ context.Context, electionID, candidateID uint64) (int64, error) {
	k := tallyKey{electionID, candidateID}
	tx.candidates[k]++
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.candidateVotes[k] + tx.candidates[k], nil
}

func (tx *voteTx) IncrementParty(_ context.Context, electionID, partyID uint64) (int64, error) {
	k := tallyKey{electionID, partyID}
	tx.parties[k]++
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.partyVotes[k] + tx.parties[k], nil
}

func (tx *voteTx) Record(ctx context.Context, entry *model.LedgerEntry) error {
	voted, err := tx.HasVoted(ctx, entry.VoterID, entry.ElectionID)
	if err != nil {
		return err
	}
	if voted {
		return election.ErrDuplicateVote
	}
	tx.entries = append(tx.entries, entry)
	return nil
}
