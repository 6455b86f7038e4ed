package model

// Party is a political party.  Candidates reference at most one party.
type Party struct {
    ID    uint64 `json:"id"`    // parties.id
    Name  string `json:"name"`  // parties.name
    Quote string `json:"quote"` // parties.quote
}
