package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(2000), ToCents(20.00))
	assert.Equal(t, int64(0), ToCents(0))

	// 0.1+0.2 != 0.3 en float64 — l'arrondi en centimes doit absorber ça.
	assert.Equal(t, int64(30), ToCents(0.1+0.2))
}

func TestFromCents(t *testing.T) {
	assert.Equal(t, 19.99, FromCents(1999))
	assert.Equal(t, 66.50, FromCents(6650))
}

func TestSameAmount(t *testing.T) {
	assert.True(t, SameAmount(20.00, 20.00))
	assert.True(t, SameAmount(0.30, 0.1+0.2))

	// Un centime d'écart suffit à refuser.
	assert.False(t, SameAmount(19.99, 20.00))
	assert.False(t, SameAmount(20.01, 20.00))
}
