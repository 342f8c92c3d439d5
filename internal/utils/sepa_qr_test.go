package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSepaQR(t *testing.T) {
	qr, err := GenerateSepaQR("BE12345678901234", "KREDBEBB", "Floralys SRL", "FLO-20260825-001", 66.50)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
	assert.Greater(t, len(qr), len("data:image/png;base64,"))
}
