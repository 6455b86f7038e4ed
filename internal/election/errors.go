package election

import (
	"errors"
	"fmt"
)

// Kind identifies a rejection reason.  The string value doubles as the
// metrics label and the machine readable "error" field of API responses.
type Kind string

const (
	KindMalformedRequest     Kind = "malformed_request"
	KindElectionNotFound     Kind = "election_not_found"
	KindAlreadyVoted         Kind = "already_voted"
	KindElectionNotOpen      Kind = "election_not_open"
	KindCandidateNotFound    Kind = "candidate_not_found"
	KindVoterHasNoArea       Kind = "voter_has_no_area"
	KindCandidateOutsideArea Kind = "candidate_outside_area"
	KindPartyNotFound        Kind = "party_not_found"
	KindAreaNotFound         Kind = "area_not_found"
	KindElectionNotFinished  Kind = "election_not_finished"
	KindInvalidElection      Kind = "invalid_election"
)

// Class groups kinds by who has to act on them.
type Class int

const (
	ClassClientInput Class = iota
	ClassBusinessRule
	ClassDataQuality
	ClassNotFound
)

var classes = map[Kind]Class{
	KindMalformedRequest:     ClassClientInput,
	KindCandidateNotFound:    ClassClientInput,
	KindPartyNotFound:        ClassClientInput,
	KindAreaNotFound:         ClassClientInput,
	KindInvalidElection:      ClassClientInput,
	KindAlreadyVoted:         ClassBusinessRule,
	KindElectionNotOpen:      ClassBusinessRule,
	KindCandidateOutsideArea: ClassBusinessRule,
	KindElectionNotFinished:  ClassBusinessRule,
	KindVoterHasNoArea:       ClassDataQuality,
	KindElectionNotFound:     ClassNotFound,
}

// Error is a terminal rejection of a vote or result request.  Errors of
// the same Kind match each other under errors.Is, so callers compare
// against the Err* sentinels below.
type Error struct {
	Kind    Kind
	Field   string // offending request field, if any
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Class returns the taxonomy group of the error.
func (e *Error) Class() Class { return classes[e.Kind] }

func newError(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrMalformedRequest     = &Error{Kind: KindMalformedRequest}
	ErrElectionNotFound     = &Error{Kind: KindElectionNotFound}
	ErrAlreadyVoted         = &Error{Kind: KindAlreadyVoted}
	ErrElectionNotOpen      = &Error{Kind: KindElectionNotOpen}
	ErrCandidateNotFound    = &Error{Kind: KindCandidateNotFound}
	ErrVoterHasNoArea       = &Error{Kind: KindVoterHasNoArea}
	ErrCandidateOutsideArea = &Error{Kind: KindCandidateOutsideArea}
	ErrPartyNotFound        = &Error{Kind: KindPartyNotFound}
	ErrAreaNotFound         = &Error{Kind: KindAreaNotFound}
	ErrElectionNotFinished  = &Error{Kind: KindElectionNotFinished}
	ErrInvalidElection      = &Error{Kind: KindInvalidElection}
)

// Store level sentinels.  Implementations of Store return these (possibly
// wrapped) so the service can translate them into rejections.
var (
	// ErrNotFound is returned when a looked up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateVote is returned by VoteTx.Record when a ledger entry for
	// the same voter and election already exists.
	ErrDuplicateVote = errors.New("duplicate ledger entry")
)
