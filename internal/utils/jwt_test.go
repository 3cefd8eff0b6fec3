package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("user-1", "a@example.com", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidateJWTErrors(t *testing.T) {
	SetJWTSecret("test-secret")

	expired, err := GenerateJWT("user-1", "a@example.com", "", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ValidateJWT("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	SetJWTSecret("other-secret")
	signed, err := GenerateJWT("user-1", "a@example.com", "", time.Hour)
	require.NoError(t, err)
	SetJWTSecret("test-secret")
	_, err = ValidateJWT(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenWithForeignSignatureIsInvalid(t *testing.T) {
	SetJWTSecret("other-secret")
	forged, err := GenerateJWT("user-1", "a@example.com", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	SetJWTSecret("test-secret")
	_, err = ValidateJWT(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}
