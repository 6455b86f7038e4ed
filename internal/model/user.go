package model

import "time"

// Roles carried in the access token "role" claim.
const (
    RoleVoter = "VOTER"
    RoleStaff = "STAFF"
)

// User represents an application user record as stored in the
// `users` table.  Every user is a citizen who may vote; staff users can
// additionally administer elections and preview results.  The json tags
// are omitted here because these structs are primarily used internally
// by the repository layer; handlers define separate response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – VOTER or STAFF.
//  AreaID       – home area (nil when no area has been assigned yet).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    AreaID       *uint64   // users.area_id (nullable)
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Voter is the subset of a user the vote transaction needs: who is
// voting and which area they live in.
type Voter struct {
    ID      uint64
    AreaID  *uint64
    IsStaff bool
}

// AsVoter projects a user onto the Voter view.
func (u User) AsVoter() Voter {
    return Voter{ID: u.ID, AreaID: u.AreaID, IsStaff: u.Role == RoleStaff}
}
