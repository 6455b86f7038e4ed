package model

import "time"

// Election is a voting window created by staff.  Votes are only
// accepted between StartDate and EndDate (both inclusive).  Once
// created, the dates are never edited so that the window stays fair;
// only Name and Description may change.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the election.
//  Description – free text shown to voters.
//  StartDate   – first instant at which votes are accepted.
//  EndDate     – last instant at which votes are accepted.
//  CreatedAt   – timestamp when the election was created.
//  UpdatedAt   – timestamp of last update.
type Election struct {
    ID          uint64    `json:"id"`          // elections.id
    Name        string    `json:"name"`        // elections.name
    Description string    `json:"description"` // elections.description
    StartDate   time.Time `json:"start_date"`  // elections.start_date
    EndDate     time.Time `json:"end_date"`    // elections.end_date
    CreatedAt   time.Time `json:"created_at"`  // elections.created_at
    UpdatedAt   time.Time `json:"updated_at"`  // elections.updated_at
}
