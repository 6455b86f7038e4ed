package election_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/election-tally/internal/election"
)

func TestCastVoteRecordsTalliesAndLedger(t *testing.T) {
	ctx := context.Background()
	store := seed()
	pub := &recordingPublisher{}
	metrics := newRecordingMetrics()
	svc := newService(t, store, func(d *election.Deps) {
		d.Events = pub
		d.Metrics = metrics
	})

	// split ticket: candidate of party 1, party vote for party 2
	entry, err := svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 2), now)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.NotEmpty(t, entry.Receipt)
	assert.Equal(t, voterArea1, entry.VoterID)
	assert.Equal(t, ongoingID, entry.ElectionID)
	assert.Equal(t, now, entry.VotedAt)

	cc, err := store.CandidateCounts(ctx, ongoingID)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{1: 1}, cc)
	pc, err := store.PartyCounts(ctx, ongoingID)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{2: 1}, pc)

	voted, err := store.HasVoted(ctx, voterArea1, ongoingID)
	require.NoError(t, err)
	assert.True(t, voted)

	require.Len(t, pub.entries, 1)
	assert.Equal(t, entry, pub.entries[0])
	assert.Equal(t, 1, metrics.accepted)
}

func TestCastVoteStaffMayVote(t *testing.T) {
	svc := newService(t, seed())
	_, err := svc.CastVote(context.Background(), staffID, ongoingID, ballot(2, 2), now)
	require.NoError(t, err)
}

func TestCastVoteBoundariesAreOpen(t *testing.T) {
	ctx := context.Background()
	store := seed()
	svc := newService(t, store)
	e, err := store.Election(ctx, ongoingID)
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 1), e.StartDate)
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, staffID, ongoingID, ballot(1, 1), e.EndDate)
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, voterArea2, ongoingID, ballot(3, 1), e.EndDate.Add(time.Nanosecond))
	require.ErrorIs(t, err, election.ErrElectionNotOpen)
}

func TestCastVoteRejections(t *testing.T) {
	cases := []struct {
		name     string
		voter    uint64
		election uint64
		ballot   election.Ballot
		want     error
		message  string
	}{
		{
			name:     "missing candidate beats unknown election",
			voter:    voterArea1,
			election: 999,
			ballot:   election.Ballot{PartyID: ptr(1)},
			want:     election.ErrMalformedRequest,
			message:  "candidate_id is required",
		},
		{
			name:     "missing party",
			voter:    voterArea1,
			election: ongoingID,
			ballot:   election.Ballot{CandidateID: ptr(1)},
			want:     election.ErrMalformedRequest,
			message:  "party_id is required",
		},
		{
			name:     "unknown election",
			voter:    voterArea1,
			election: 999,
			ballot:   ballot(1, 1),
			want:     election.ErrElectionNotFound,
		},
		{
			name:     "upcoming election",
			voter:    voterArea1,
			election: upcomingID,
			ballot:   ballot(1, 1),
			want:     election.ErrElectionNotOpen,
			message:  "this election has not started yet",
		},
		{
			name:     "finished election",
			voter:    voterArea1,
			election: finishedID,
			ballot:   ballot(1, 1),
			want:     election.ErrElectionNotOpen,
			message:  "this election has ended",
		},
		{
			name:     "unknown candidate beats missing area",
			voter:    voterNoArea,
			election: ongoingID,
			ballot:   ballot(999, 999),
			want:     election.ErrCandidateNotFound,
		},
		{
			name:     "missing area beats unknown party",
			voter:    voterNoArea,
			election: ongoingID,
			ballot:   ballot(1, 999),
			want:     election.ErrVoterHasNoArea,
		},
		{
			name:     "outside area beats unknown party",
			voter:    voterArea2,
			election: ongoingID,
			ballot:   ballot(1, 999),
			want:     election.ErrCandidateOutsideArea,
		},
		{
			name:     "unknown party",
			voter:    voterArea1,
			election: ongoingID,
			ballot:   ballot(1, 999),
			want:     election.ErrPartyNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := seed()
			metrics := newRecordingMetrics()
			svc := newService(t, store, func(d *election.Deps) { d.Metrics = metrics })

			_, err := svc.CastVote(ctx, tc.voter, tc.election, tc.ballot, now)
			require.ErrorIs(t, err, tc.want)
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}

			var e *election.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, 1, metrics.rejected[string(e.Kind)])

			// nothing may have been written
			for _, id := range []uint64{ongoingID, upcomingID, finishedID} {
				cc, _ := store.CandidateCounts(ctx, id)
				assert.Empty(t, cc)
				pc, _ := store.PartyCounts(ctx, id)
				assert.Empty(t, pc)
				n, _ := store.CountVoters(ctx, id)
				assert.Zero(t, n)
			}
		})
	}
}

func TestCastVoteAlreadyVotedBeatsClosedElection(t *testing.T) {
	ctx := context.Background()
	store := seed()
	svc := newService(t, store)

	_, err := svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 1), now)
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, voterArea1, ongoingID, ballot(2, 2), now)
	require.ErrorIs(t, err, election.ErrAlreadyVoted)

	_, err = svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 1), now.Add(24*time.Hour))
	require.ErrorIs(t, err, election.ErrAlreadyVoted)

	cc, _ := store.CandidateCounts(ctx, ongoingID)
	assert.Equal(t, map[uint64]int64{1: 1}, cc)
}

func TestCastVoteConcurrentSameVoter(t *testing.T) {
	ctx := context.Background()
	store := seed()
	svc := newService(t, store)

	const attempts = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		dupes    int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 1), now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, election.ErrAlreadyVoted):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, attempts-1, dupes)
	cc, _ := store.CandidateCounts(ctx, ongoingID)
	assert.Equal(t, int64(1), cc[1])
	pc, _ := store.PartyCounts(ctx, ongoingID)
	assert.Equal(t, int64(1), pc[1])
	n, _ := store.CountVoters(ctx, ongoingID)
	assert.Equal(t, int64(1), n)
}

func TestCastVoteConcurrentDistinctVoters(t *testing.T) {
	ctx := context.Background()
	store := seed()
	svc := newService(t, store)

	var wg sync.WaitGroup
	for _, v := range []uint64{voterArea1, staffID} {
		wg.Add(1)
		go func(voter uint64) {
			defer wg.Done()
			_, err := svc.CastVote(ctx, voter, ongoingID, ballot(1, 1), now)
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	cc, _ := store.CandidateCounts(ctx, ongoingID)
	assert.Equal(t, int64(2), cc[1])
}

func TestCastVotePublishFailureDoesNotFailVote(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newService(t, seed(), func(d *election.Deps) { d.Events = pub })

	_, err := svc.CastVote(ctx, voterArea1, ongoingID, ballot(1, 1), now)
	require.NoError(t, err)
	assert.Len(t, pub.entries, 1)
}

type failingStore struct {
	election.Store
	err error
}

func (f failingStore) WithinVote(context.Context, uint64, uint64, func(election.VoteTx) error) error {
	return f.err
}

func TestCastVoteMapsStoreDuplicateToAlreadyVoted(t *testing.T) {
	svc := newService(t, failingStore{Store: seed(), err: election.ErrDuplicateVote})
	_, err := svc.CastVote(context.Background(), voterArea1, ongoingID, ballot(1, 1), now)
	require.ErrorIs(t, err, election.ErrAlreadyVoted)
}

func TestCastVoteInternalErrorIsNotARejection(t *testing.T) {
	boom := errors.New("connection reset")
	metrics := newRecordingMetrics()
	svc := newService(t, failingStore{Store: seed(), err: boom}, func(d *election.Deps) { d.Metrics = metrics })

	_, err := svc.CastVote(context.Background(), voterArea1, ongoingID, ballot(1, 1), now)
	require.ErrorIs(t, err, boom)
	var e *election.Error
	assert.False(t, errors.As(err, &e))
	assert.Equal(t, 1, metrics.rejected["internal"])
}
