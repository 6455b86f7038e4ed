// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/election-tally/internal/model"
)

// VoteRecordedQueue is the durable queue ledger events are routed to.
const VoteRecordedQueue = "vote.recorded"

// VoteRecordedEvent is published after a vote commits.  It says who voted
// in which election and when.  It deliberately carries nothing about the
// candidate or party chosen.
type VoteRecordedEvent struct {
    EntryID    uint64 `json:"entry_id"`
    VoterID    uint64 `json:"voter_id"`
    ElectionID uint64 `json:"election_id"`
    VotedAt    string `json:"voted_at"` // RFC 3339, UTC
}

// NewVoteRecordedEvent builds the event for a ledger entry.
func NewVoteRecordedEvent(e model.LedgerEntry) VoteRecordedEvent {
    return VoteRecordedEvent{
        EntryID:    e.ID,
        VoterID:    e.VoterID,
        ElectionID: e.ElectionID,
        VotedAt:    e.VotedAt.UTC().Format(time.RFC3339Nano),
    }
}
