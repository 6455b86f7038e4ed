package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // sentinel errors for token parsing
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

var (
    errNoBearer      = errors.New("missing bearer token")
    errInvalidToken  = errors.New("invalid token")
    errInvalidClaims = errors.New("invalid claims")
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.  The
// provided secret must match the one used when issuing tokens.  Handlers read
// the caller through UserID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := authenticate(c, secret); err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
            }
            return next(c)
        }
    }
}

// OptionalJWTAuth behaves like JWTAuth when an Authorization header is
// present and lets the request through as a guest when it is absent.  A
// header carrying a bad token is still rejected.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Header.Get("Authorization") == "" {
                return next(c)
            }
            if err := authenticate(c, secret); err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
            }
            return next(c)
        }
    }
}

// authenticate parses the bearer token and stores user_id and role.
func authenticate(c echo.Context, secret string) error {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return errNoBearer
    }
    raw := strings.TrimPrefix(auth, "Bearer ")

    // Only HMAC signed tokens are accepted.
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return errInvalidToken
    }

    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return errInvalidClaims
    }
    uid, ok := parseUserID(claims["sub"])
    if !ok {
        return errInvalidClaims
    }
    role, _ := claims["role"].(string)

    c.Set(ctxUserID, uid)
    c.Set(ctxRole, role)
    return nil
}
