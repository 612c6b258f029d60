package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", h)

	assert.True(t, CheckPassword(h, "pw123"))
	assert.False(t, CheckPassword(h, "pw124"))
	assert.False(t, CheckPassword("not-a-hash", "pw123"))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
