package election

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/election-tally/internal/model"
)

// ElectionView is an election together with its clock status.
type ElectionView struct {
	model.Election
	Status Status `json:"status"`
	// HasVoted is only set when the caller is an authenticated voter.
	HasVoted *bool `json:"has_voted,omitempty"`
}

// NewElection is the input of CreateElection.  A zero StartDate means the
// election opens immediately.
type NewElection struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// CreateElection validates and stores a new election.
func (s *Service) CreateElection(ctx context.Context, in NewElection, now time.Time) (model.Election, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Election{}, newError(KindInvalidElection, "name", "name is required")
	}
	if in.EndDate.IsZero() {
		return model.Election{}, newError(KindInvalidElection, "end_date", "end_date is required")
	}
	start := in.StartDate
	if start.IsZero() {
		start = now
	}
	if !start.Before(in.EndDate) {
		return model.Election{}, newError(KindInvalidElection, "end_date", "end_date must be after start_date")
	}

	e := model.Election{
		Name:        name,
		Description: in.Description,
		StartDate:   start.UTC(),
		EndDate:     in.EndDate.UTC(),
	}
	if err := s.store.CreateElection(ctx, &e); err != nil {
		return model.Election{}, fmt.Errorf("create election: %w", err)
	}
	s.log.Info().Uint64("election_id", e.ID).Time("start", e.StartDate).Time("end", e.EndDate).Msg("election created")
	return e, nil
}

// UpdateElectionDetails renames an election or changes its description.
// The schedule cannot be changed once the election exists.
func (s *Service) UpdateElectionDetails(ctx context.Context, id uint64, name, description string) (model.Election, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Election{}, newError(KindInvalidElection, "name", "name is required")
	}
	e, err := s.store.UpdateElectionDetails(ctx, id, name, description)
	if errors.Is(err, ErrNotFound) {
		return model.Election{}, newError(KindElectionNotFound, "", "election %d does not exist", id)
	}
	if err != nil {
		return model.Election{}, fmt.Errorf("update election: %w", err)
	}
	return e, nil
}

// ListElections returns every election with its status, ordered by id.
func (s *Service) ListElections(ctx context.Context, now time.Time) ([]ElectionView, error) {
	all, err := s.store.ListElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	out := make([]ElectionView, 0, len(all))
	for _, e := range all {
		out = append(out, ElectionView{Election: e, Status: StatusAt(e, now)})
	}
	return out, nil
}

// OngoingElections returns the elections open at now, closing soonest
// first.
func (s *Service) OngoingElections(ctx context.Context, now time.Time) ([]ElectionView, error) {
	all, err := s.ListElections(ctx, now)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, v := range all {
		if v.Status == StatusOngoing {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

// ElectionDetail returns one election.  When voterID is non-zero the view
// also reports whether that voter has already voted.
func (s *Service) ElectionDetail(ctx context.Context, id, voterID uint64, now time.Time) (ElectionView, error) {
	e, err := s.store.Election(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ElectionView{}, newError(KindElectionNotFound, "", "election %d does not exist", id)
	}
	if err != nil {
		return ElectionView{}, fmt.Errorf("load election: %w", err)
	}
	v := ElectionView{Election: e, Status: StatusAt(e, now)}
	if voterID != 0 {
		voted, err := s.store.HasVoted(ctx, voterID, id)
		if err != nil {
			return ElectionView{}, fmt.Errorf("check ledger: %w", err)
		}
		v.HasVoted = &voted
	}
	return v, nil
}

// VoteHistory lists who voted in an election and when.  Ledger entries
// never carry the choice that was made.
func (s *Service) VoteHistory(ctx context.Context, electionID uint64) ([]model.LedgerEntry, error) {
	if _, err := s.store.Election(ctx, electionID); errors.Is(err, ErrNotFound) {
		return nil, newError(KindElectionNotFound, "", "election %d does not exist", electionID)
	} else if err != nil {
		return nil, fmt.Errorf("load election: %w", err)
	}
	entries, err := s.store.Entries(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return entries, nil
}
