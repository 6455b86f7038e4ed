package model

// Area is an electoral district.  Voters and candidates reference an
// area; deleting an area leaves them in place with no area.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – district name.
//  Description – optional description.
//  Population  – number of residents (non-negative).
//  Voters      – number of registered voters (non-negative).
type Area struct {
    ID          uint64 `json:"id"`          // areas.id
    Name        string `json:"name"`        // areas.name
    Description string `json:"description"` // areas.description
    Population  uint64 `json:"population"`  // areas.population
    Voters      uint64 `json:"voters"`      // areas.voters
}
