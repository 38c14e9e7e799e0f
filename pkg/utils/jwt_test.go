package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "neuroedge")

	pair, err := m.GenerateTokenPair("user-1", "admin", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "neuroedge", claims.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWTManagerRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "neuroedge")
	token, err := m.GenerateToken("user-1", "admin", "access", time.Minute)
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "neuroedge")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", "neuroedge")
	token, err := m.GenerateToken("user-1", "admin", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManagerRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", "neuroedge")
	_, err := m.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
