package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessToken(t *testing.T) {
	now := time.Now()
	tok, err := NewAccessToken("s3cret", 42, "STAFF", 15*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, now.UTC().Add(15*time.Minute), tok.Exp)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "STAFF", claims["role"])
	assert.NotEmpty(t, claims["jti"])
}

func TestExpiredAccessTokenIsRejected(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 1, "VOTER", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(24*time.Hour, time.Now())
	require.NoError(t, err)
	b, err := NewRefreshToken(24*time.Hour, time.Now())
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "hunter2"))
	assert.False(t, VerifyPassword(h, "hunter3"))

	h, err = HashPassword("x", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
