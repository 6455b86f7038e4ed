package election

import (
	"bytes"
	"encoding/json"
)

// Ballot is the voter's choice as received from the client.  A nil field
// means the value was absent.
type Ballot struct {
	CandidateID *uint64 `json:"candidate_id"`
	PartyID     *uint64 `json:"party_id"`
}

// ParseBallot decodes a JSON request body.  Both ids must be present
// positive JSON integers; strings, floats and nulls are rejected with
// ErrMalformedRequest naming the field.
func ParseBallot(body []byte) (Ballot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Ballot{}, newError(KindMalformedRequest, "", "request body must be a JSON object")
	}
	var b Ballot
	var err error
	if b.CandidateID, err = parseID(raw, "candidate_id"); err != nil {
		return Ballot{}, err
	}
	if b.PartyID, err = parseID(raw, "party_id"); err != nil {
		return Ballot{}, err
	}
	return b, nil
}

func parseID(raw map[string]json.RawMessage, field string) (*uint64, error) {
	v, ok := raw[field]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, newError(KindMalformedRequest, field, "%s is required", field)
	}
	var id uint64
	if err := json.Unmarshal(v, &id); err != nil || id == 0 {
		return nil, newError(KindMalformedRequest, field, "%s must be a positive integer", field)
	}
	return &id, nil
}

// ids performs the schema check of the vote transaction.
func (b Ballot) ids() (candidateID, partyID uint64, err error) {
	if b.CandidateID == nil || *b.CandidateID == 0 {
		return 0, 0, newError(KindMalformedRequest, "candidate_id", "candidate_id is required")
	}
	if b.PartyID == nil || *b.PartyID == 0 {
		return 0, 0, newError(KindMalformedRequest, "party_id", "party_id is required")
	}
	return *b.CandidateID, *b.PartyID, nil
}
