package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripCarriesDisplayName(t *testing.T) {
	token, err := GenerateToken("507f1f77bcf86cd799439011", "alice", "alice@uni.edu", "student", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@uni.edu", claims.Email)
	assert.Equal(t, "student", claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("507f1f77bcf86cd799439011", "alice", "alice@uni.edu", "student", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "another-secret")
	assert.Error(t, err)
}
