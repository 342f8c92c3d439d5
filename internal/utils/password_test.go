package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("fleurs-et-secrets")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("fleurs-et-secrets", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("même-mot-de-passe")
	require.NoError(t, err)
	h2, err := HashPassword("même-mot-de-passe")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("peu-importe", "$bcrypt$oops")
	assert.Error(t, err)

	_, err = VerifyPassword("peu-importe", "pas-un-hash")
	assert.Error(t, err)
}
