package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/election-tally/internal/election"
)

func TestPairLocksAreReleased(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	var wg sync.WaitGroup
	for voter := uint64(1); voter <= 20; voter++ {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(voter uint64) {
				defer wg.Done()
				_ = s.WithinVote(ctx, voter, 1, func(election.VoteTx) error { return boom })
			}(voter)
		}
	}
	wg.Wait()
	assert.Zero(t, s.pendingPairs())

	// a held pair keeps its entry until the holder returns
	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- s.WithinVote(ctx, 7, 2, func(election.VoteTx) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside
	assert.Equal(t, 1, s.pendingPairs())
	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, s.pendingPairs())
}
