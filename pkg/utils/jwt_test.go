package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken(42, "asha@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).GenerateToken(1, "a@b.c", "user")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Nanosecond)
	token, err := m.GenerateToken(1, "a@b.c", "user")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
