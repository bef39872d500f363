package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hashed, err := HashPasswordWithCost("padre123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "padre123", hashed)

	assert.NoError(t, ComparePassword(hashed, "padre123"))
	assert.ErrorIs(t, ComparePassword(hashed, "otra"), ErrMismatch)
}

func TestCompareRejectsGarbageHash(t *testing.T) {
	err := ComparePassword("not-a-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
