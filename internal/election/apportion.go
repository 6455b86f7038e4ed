package election

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/election-tally/internal/model"
)

// PartySeats is the apportionment outcome for one party.
type PartySeats struct {
	Party    model.Party `json:"party"`
	Votes    int64       `json:"votes"`
	AreaWins int         `json:"area_wins"`
	Supposed int64       `json:"supposed_seats"`
	Real     int64       `json:"real_seats"`
}

// CalculationDetail exposes the quota inputs.
type CalculationDetail struct {
	SeatDivisor float64 `json:"seat_divisor"`
	TotalVoters int64   `json:"total_voters"`
}

// PartylistResult is the outcome of a partylist calculation.
type PartylistResult struct {
	Election model.Election    `json:"election"`
	Status   Status            `json:"status"`
	Parties  []PartySeats      `json:"parties"`
	Detail   CalculationDetail `json:"calculation_detail"`
}

// ApportionInput is everything Apportion reads.
type ApportionInput struct {
	Parties        []model.Party
	PartyVotes     map[uint64]int64
	Candidates     []model.Candidate
	CandidateVotes map[uint64]int64
	TotalVoters    int64
}

// AreaWinners returns, per area, the candidate with the most votes.
// Areas where no candidate has a tally are absent.  Ties go to the lowest
// candidate id.
func AreaWinners(candidates []model.Candidate, counts map[uint64]int64) map[uint64]model.Candidate {
	winners := make(map[uint64]model.Candidate)
	best := make(map[uint64]int64)
	for _, c := range candidates {
		if c.AreaID == nil {
			continue
		}
		v, ok := counts[c.ID]
		if !ok {
			continue
		}
		area := *c.AreaID
		cur, seen := winners[area]
		if !seen || v > best[area] || (v == best[area] && c.ID < cur.ID) {
			winners[area] = c
			best[area] = v
		}
	}
	return winners
}

// Apportion computes quota ("supposed") seats per party and the "real"
// seats left after subtracting the areas its candidates won outright.
// The divisor is total voters over the seat count; with no voters every
// figure is zero.
func Apportion(in ApportionInput, opts PartylistOptions) ([]PartySeats, CalculationDetail) {
	seats := opts.Seats
	if seats <= 0 {
		seats = DefaultSeats
	}
	detail := CalculationDetail{TotalVoters: in.TotalVoters}
	if in.TotalVoters > 0 {
		detail.SeatDivisor = float64(in.TotalVoters) / float64(seats)
	}

	var winners map[uint64]model.Candidate
	if detail.SeatDivisor > 0 {
		winners = AreaWinners(in.Candidates, in.CandidateVotes)
	}

	out := make([]PartySeats, 0, len(in.Parties))
	for _, p := range in.Parties {
		ps := PartySeats{Party: p, Votes: in.PartyVotes[p.ID]}
		if detail.SeatDivisor > 0 {
			for _, w := range winners {
				if w.InParty(p.ID) {
					ps.AreaWins++
				}
			}
			// votes/(total/seats) computed exactly as votes*seats/total
			scaled := ps.Votes * int64(seats)
			ps.Supposed = floorDiv(scaled, in.TotalVoters)
			ps.Real = floorDiv(scaled-int64(ps.AreaWins)*in.TotalVoters, in.TotalVoters)
			if opts.ClampNegative && ps.Real < 0 {
				ps.Real = 0
			}
		}
		out = append(out, ps)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Real != out[j].Real {
			return out[i].Real > out[j].Real
		}
		if out[i].Supposed != out[j].Supposed {
			return out[i].Supposed > out[j].Supposed
		}
		return out[i].Party.ID < out[j].Party.ID
	})
	return out, detail
}

// floorDiv divides rounding toward negative infinity.  d must be positive.
func floorDiv(n, d int64) int64 {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

// GetPartylistResult computes the partylist seats of an election.
func (s *Service) GetPartylistResult(ctx context.Context, electionID uint64, now time.Time, isStaff bool) (PartylistResult, error) {
	e, st, err := s.loadVisibleElection(ctx, electionID, now, isStaff)
	if err != nil {
		return PartylistResult{}, err
	}

	key := fmt.Sprintf("partylist:%d", electionID)
	if st == StatusFinished && s.cache != nil {
		var cached PartylistResult
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		} else if ok {
			s.metrics.ResultServed("partylist", true)
			return cached, nil
		}
	}

	in, err := s.apportionInput(ctx, electionID)
	if err != nil {
		return PartylistResult{}, err
	}
	parties, detail := Apportion(in, s.partylist)
	res := PartylistResult{Election: e, Status: st, Parties: parties, Detail: detail}

	if st == StatusFinished && s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("result cache write failed")
		}
	}
	s.metrics.ResultServed("partylist", false)
	return res, nil
}

func (s *Service) apportionInput(ctx context.Context, electionID uint64) (ApportionInput, error) {
	var in ApportionInput
	var err error
	if in.TotalVoters, err = s.store.CountVoters(ctx, electionID); err != nil {
		return in, fmt.Errorf("count voters: %w", err)
	}
	if in.Parties, err = s.store.Parties(ctx); err != nil {
		return in, fmt.Errorf("load parties: %w", err)
	}
	if in.PartyVotes, err = s.store.PartyCounts(ctx, electionID); err != nil {
		return in, fmt.Errorf("load party tallies: %w", err)
	}
	if in.Candidates, err = s.store.Candidates(ctx); err != nil {
		return in, fmt.Errorf("load candidates: %w", err)
	}
	if in.CandidateVotes, err = s.store.CandidateCounts(ctx, electionID); err != nil {
		return in, fmt.Errorf("load candidate tallies: %w", err)
	}
	return in, nil
}
