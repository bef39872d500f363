package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, "nochesbot")
	assert.Equal(t, time.Hour, tm.TTL())

	token, expiresAt, err := tm.Generate("user-1", "admin", "Ana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Ana", claims.Name)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("a", time.Hour, "nochesbot").Generate("u", "user", "")
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Hour, "nochesbot").Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute, "nochesbot")
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.Generate("u", "user", "")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Validate(token)
	assert.Error(t, err)
}
