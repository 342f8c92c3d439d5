package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floralys_back_end/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	user := models.User{ID: "user-1", Email: "claire@example.com", Role: models.RoleCustomer}

	token, err := GenerateJWT(user, "secret-test", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret-test")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "claire@example.com", claims["email"])
	assert.Equal(t, models.RoleCustomer, claims["role"])
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(models.User{ID: "user-1"}, "bon-secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "mauvais-secret")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT(models.User{ID: "user-1"}, "secret-test", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret-test")
	assert.Error(t, err)
}
