package election

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/election-tally/internal/model"
)

// CastVote validates a ballot and, when every check passes, records the
// vote.  Checks run in a fixed order and the first failure is returned:
// schema, election, duplicate, timing, candidate, voter area, area
// locality, party.  The tally increments and the ledger entry are
// committed together or not at all.
func (s *Service) CastVote(ctx context.Context, voterID, electionID uint64, b Ballot, now time.Time) (model.LedgerEntry, error) {
	candidateID, partyID, err := b.ids()
	if err != nil {
		return model.LedgerEntry{}, s.reject(voterID, electionID, err)
	}

	var entry model.LedgerEntry
	err = s.store.WithinVote(ctx, voterID, electionID, func(tx VoteTx) error {
		e, err := s.store.Election(ctx, electionID)
		if errors.Is(err, ErrNotFound) {
			return newError(KindElectionNotFound, "", "election %d does not exist", electionID)
		}
		if err != nil {
			return fmt.Errorf("load election: %w", err)
		}

		voted, err := tx.HasVoted(ctx, voterID, electionID)
		if err != nil {
			return fmt.Errorf("check ledger: %w", err)
		}
		if voted {
			return newError(KindAlreadyVoted, "", "you have already voted in this election")
		}

		switch StatusAt(e, now) {
		case StatusUpcoming:
			return newError(KindElectionNotOpen, "", "this election has not started yet")
		case StatusFinished:
			return newError(KindElectionNotOpen, "", "this election has ended")
		}

		candidate, err := s.store.Candidate(ctx, candidateID)
		if errors.Is(err, ErrNotFound) {
			return newError(KindCandidateNotFound, "candidate_id", "candidate %d does not exist", candidateID)
		}
		if err != nil {
			return fmt.Errorf("load candidate: %w", err)
		}

		voter, err := s.store.Voter(ctx, voterID)
		if err != nil {
			return fmt.Errorf("load voter: %w", err)
		}
		if voter.AreaID == nil {
			return newError(KindVoterHasNoArea, "", "your account has no area; please contact an administrator to set your area")
		}
		if !candidate.InArea(*voter.AreaID) {
			return newError(KindCandidateOutsideArea, "candidate_id", "candidate %d is not standing in your area", candidateID)
		}

		if _, err := s.store.Party(ctx, partyID); errors.Is(err, ErrNotFound) {
			return newError(KindPartyNotFound, "party_id", "party %d does not exist", partyID)
		} else if err != nil {
			return fmt.Errorf("load party: %w", err)
		}

		if _, err := tx.IncrementCandidate(ctx, electionID, candidateID); err != nil {
			return fmt.Errorf("tally candidate: %w", err)
		}
		if _, err := tx.IncrementParty(ctx, electionID, partyID); err != nil {
			return fmt.Errorf("tally party: %w", err)
		}
		entry = model.LedgerEntry{
			Receipt:    uuid.NewString(),
			VoterID:    voterID,
			ElectionID: electionID,
			VotedAt:    now.UTC(),
		}
		return tx.Record(ctx, &entry)
	})
	if errors.Is(err, ErrDuplicateVote) {
		// lost a race with another request of the same voter
		err = newError(KindAlreadyVoted, "", "you have already voted in this election")
	}
	if err != nil {
		return model.LedgerEntry{}, s.reject(voterID, electionID, err)
	}

	s.metrics.VoteAccepted()
	s.log.Info().Uint64("voter_id", voterID).Uint64("election_id", electionID).
		Str("receipt", entry.Receipt).Msg("vote recorded")
	if s.events != nil {
		if err := s.events.VoteRecorded(ctx, entry); err != nil {
			s.log.Warn().Err(err).Uint64("election_id", electionID).Msg("publish vote event failed")
		}
	}
	return entry, nil
}

func (s *Service) reject(voterID, electionID uint64, err error) error {
	var e *Error
	if errors.As(err, &e) {
		s.metrics.VoteRejected(string(e.Kind))
		s.log.Debug().Uint64("voter_id", voterID).Uint64("election_id", electionID).
			Str("reason", string(e.Kind)).Msg("vote rejected")
		return err
	}
	s.metrics.VoteRejected("internal")
	s.log.Error().Err(err).Uint64("voter_id", voterID).Uint64("election_id", electionID).Msg("vote failed")
	return err
}
