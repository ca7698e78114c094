package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-signing-key")

func TestTokenRoundTrip(t *testing.T) {
	memberID := uint(7)
	token, err := GenerateToken(signingKey, 42, "adherent", &memberID, "test-agent")
	require.NoError(t, err)

	claims, err := ParseToken(signingKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "adherent", claims.Role)
	require.NotNil(t, claims.MemberID)
	assert.Equal(t, memberID, *claims.MemberID)
	assert.Equal(t, "test-agent", claims.UserAgent)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken(signingKey, 42, "admin", nil, "test-agent")
	require.NoError(t, err)

	_, err = ParseToken([]byte("another-key"), token)
	require.Error(t, err)
}

func TestInviteTokenRoundTrip(t *testing.T) {
	token, err := GenerateInviteToken(signingKey, "jane@example.com")
	require.NoError(t, err)

	email, err := ParseInviteToken(signingKey, token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)
}

func TestInviteToken_NotInterchangeableWithAccessToken(t *testing.T) {
	token, err := GenerateToken(signingKey, 42, "admin", nil, "test-agent")
	require.NoError(t, err)

	_, err = ParseInviteToken(signingKey, token)
	require.ErrorIs(t, err, ErrNotInvite)
}
