package model

// Candidate is a person standing in one area.  AreaID and PartyID are
// weak references: nil when the candidate has no area or is an
// independent.  A user can be a candidate at most once.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – the person standing (unique).
//  Name        – display name.
//  Description – campaign text.
//  AreaID      – home area (nil if unassigned).
//  PartyID     – party (nil for independents).
type Candidate struct {
    ID          uint64  `json:"id"`                 // candidates.id
    UserID      *uint64 `json:"user_id,omitempty"`  // candidates.user_id (nullable, unique)
    Name        string  `json:"name"`               // candidates.name
    Description string  `json:"description"`        // candidates.description
    AreaID      *uint64 `json:"area_id,omitempty"`  // candidates.area_id (nullable)
    PartyID     *uint64 `json:"party_id,omitempty"` // candidates.party_id (nullable)
}

// InArea reports whether the candidate is registered in the given area.
func (c Candidate) InArea(areaID uint64) bool {
    return c.AreaID != nil && *c.AreaID == areaID
}

// InParty reports whether the candidate belongs to the given party.
func (c Candidate) InParty(partyID uint64) bool {
    return c.PartyID != nil && *c.PartyID == partyID
}
