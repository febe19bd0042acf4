package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "postgres", c.Store)
	assert.Equal(t, 168, c.JWTExpireHours)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.False(t, c.S3Enabled())
	assert.Contains(t, c.DSN(), "dbname=busbooking")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}
