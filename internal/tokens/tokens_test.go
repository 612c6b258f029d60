package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestCreateAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).UTC()
	token, err := CreateAccessToken(secret, 42, "admin", exp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := CreateAccessToken(secret, 1, "user", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(expired, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	valid, err := CreateAccessToken(secret, 1, "user", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("other-secret"))
	require.Error(t, err)

	_, err = AccessClaimsFromToken("not-a-jwt", secret)
	require.Error(t, err)
}

func TestAccessClaims_UserID_Invalid(t *testing.T) {
	t.Parallel()

	c := &AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	require.Error(t, err)
}
