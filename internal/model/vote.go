package model

import "time"

// LedgerEntry records that a voter took part in an election.  It holds
// no information about the choice made.  There is at most one entry per
// (VoterID, ElectionID).
//
// Fields:
//  ID         – primary key identifier.
//  Receipt    – opaque receipt handed back to the voter.
//  VoterID    – user who voted.
//  ElectionID – election voted in.
//  VotedAt    – commit timestamp.
type LedgerEntry struct {
    ID         uint64    `json:"id"`          // vote_checks.id
    Receipt    string    `json:"receipt"`     // vote_checks.receipt
    VoterID    uint64    `json:"voter_id"`    // vote_checks.user_id
    ElectionID uint64    `json:"election_id"` // vote_checks.election_id
    VotedAt    time.Time `json:"voted_at"`    // vote_checks.voted_at
}

// CandidateTally is the running vote count of a candidate in an election.
type CandidateTally struct {
    ElectionID  uint64 // vote_result_candidates.election_id
    CandidateID uint64 // vote_result_candidates.candidate_id
    Votes       int64  // vote_result_candidates.votes
}

// PartyTally is the running vote count of a party in an election.
type PartyTally struct {
    ElectionID uint64 // vote_result_parties.election_id
    PartyID    uint64 // vote_result_parties.party_id
    Votes      int64  // vote_result_parties.votes
}
