package election

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/election-tally/internal/model"
)

// CandidateResult is one row of an area result.
type CandidateResult struct {
	Candidate model.Candidate `json:"candidate"`
	Votes     int64           `json:"votes"`
}

// AreaResult is the ranked list of every candidate standing in an area.
type AreaResult struct {
	Election   model.Election    `json:"election"`
	Area       model.Area        `json:"area"`
	Status     Status            `json:"status"`
	Candidates []CandidateResult `json:"candidates"`
}

// RankArea orders the candidates of one area.  Candidates with a tally
// come first, by votes descending and id ascending on ties.  Candidates
// without a tally follow with zero votes in id order, so the result
// always has one row per candidate.
func RankArea(candidates []model.Candidate, counts map[uint64]int64) []CandidateResult {
	tallied := make([]CandidateResult, 0, len(candidates))
	var padded []CandidateResult
	for _, c := range candidates {
		if v, ok := counts[c.ID]; ok {
			tallied = append(tallied, CandidateResult{Candidate: c, Votes: v})
		} else {
			padded = append(padded, CandidateResult{Candidate: c})
		}
	}
	sort.SliceStable(tallied, func(i, j int) bool {
		if tallied[i].Votes != tallied[j].Votes {
			return tallied[i].Votes > tallied[j].Votes
		}
		return tallied[i].Candidate.ID < tallied[j].Candidate.ID
	})
	sort.SliceStable(padded, func(i, j int) bool { return padded[i].Candidate.ID < padded[j].Candidate.ID })
	return append(tallied, padded...)
}

// resultVisible reports whether results may be shown.  Finished results
// are public; staff may look at any other state.
func resultVisible(st Status, isStaff bool) bool {
	return st == StatusFinished || isStaff
}

// loadVisibleElection performs the checks shared by both result queries.
func (s *Service) loadVisibleElection(ctx context.Context, electionID uint64, now time.Time, isStaff bool) (model.Election, Status, error) {
	e, err := s.store.Election(ctx, electionID)
	if errors.Is(err, ErrNotFound) {
		return model.Election{}, "", newError(KindElectionNotFound, "", "election %d does not exist", electionID)
	}
	if err != nil {
		return model.Election{}, "", fmt.Errorf("load election: %w", err)
	}
	st := StatusAt(e, now)
	if !resultVisible(st, isStaff) {
		return model.Election{}, "", newError(KindElectionNotFinished, "", "this election has not ended yet")
	}
	return e, st, nil
}

// GetAreaResult returns the per-candidate result of an area.
func (s *Service) GetAreaResult(ctx context.Context, electionID, areaID uint64, now time.Time, isStaff bool) (AreaResult, error) {
	e, st, err := s.loadVisibleElection(ctx, electionID, now, isStaff)
	if err != nil {
		return AreaResult{}, err
	}

	key := fmt.Sprintf("area:%d:%d", electionID, areaID)
	if st == StatusFinished && s.cache != nil {
		var cached AreaResult
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		} else if ok {
			s.metrics.ResultServed("area", true)
			return cached, nil
		}
	}

	area, err := s.store.Area(ctx, areaID)
	if errors.Is(err, ErrNotFound) {
		return AreaResult{}, newError(KindAreaNotFound, "area_id", "area %d does not exist", areaID)
	}
	if err != nil {
		return AreaResult{}, fmt.Errorf("load area: %w", err)
	}
	candidates, err := s.store.CandidatesInArea(ctx, areaID)
	if err != nil {
		return AreaResult{}, fmt.Errorf("load candidates: %w", err)
	}
	counts, err := s.store.CandidateCounts(ctx, electionID)
	if err != nil {
		return AreaResult{}, fmt.Errorf("load candidate tallies: %w", err)
	}

	res := AreaResult{Election: e, Area: area, Status: st, Candidates: RankArea(candidates, counts)}
	if st == StatusFinished && s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("result cache write failed")
		}
	}
	s.metrics.ResultServed("area", false)
	return res, nil
}
