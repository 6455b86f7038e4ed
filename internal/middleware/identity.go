package middleware

// identity.go holds the accessors for the caller identity that JWTAuth
// stores in the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/election-tally/internal/model"
)

const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user id, or false for guests.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the role claim, or "" for guests.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// IsStaff reports whether the caller is an authenticated staff user.
func IsStaff(c echo.Context) bool {
    _, ok := UserID(c)
    return ok && Role(c) == model.RoleStaff
}

// parseUserID accepts the shapes a numeric "sub" claim takes after JSON
// decoding.
func parseUserID(v interface{}) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t <= 0 || t != float64(uint64(t)) {
            return 0, false
        }
        return uint64(t), true
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        return n, err == nil && n != 0
    case uint64:
        return t, t != 0
    }
    return 0, false
}

// userKey is the identity used in rate limit keys.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
