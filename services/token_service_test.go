package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)

	token, err := ts.GenerateToken("user-1")
	require.NoError(t, err)

	userID, err := ts.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenService_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokenService("secret", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expired(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return issued }

	token, err := ts.GenerateToken("user-1")
	require.NoError(t, err)

	ts.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = ts.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Garbage(t *testing.T) {
	_, err := NewTokenService("secret", time.Hour).ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
