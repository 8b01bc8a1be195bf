package auth_test

import (
	"testing"
	"time"

	"pharmacy/internal/auth"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := auth.NewTokenService("test_jwt_secret")

	token, err := tokens.Issue("9b2f1c64-3d1e-4e1b-bf4b-6f0d2f6b8a11")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	userID, ok := auth.UserID(claims)
	assert.True(t, ok)
	assert.Equal(t, "9b2f1c64-3d1e-4e1b-bf4b-6f0d2f6b8a11", userID)
}

func TestTokenService_RejectsForeignAndExpiredTokens(t *testing.T) {
	tokens := auth.NewTokenService("test_jwt_secret")

	foreign, err := auth.NewTokenService("another_secret").Issue("someone")
	require.NoError(t, err)
	_, err = tokens.Validate(foreign)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "someone",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test_jwt_secret"))
	require.NoError(t, err)
	_, err = tokens.Validate(expired)
	assert.Error(t, err)

	_, err = tokens.Validate("not.a.token")
	assert.Error(t, err)
}

func TestUserID_MissingClaim(t *testing.T) {
	_, ok := auth.UserID(jwt.MapClaims{"sub": "x"})
	assert.False(t, ok)
	_, ok = auth.UserID(jwt.MapClaims{"user_id": ""})
	assert.False(t, ok)
}
