package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestGenerateAndValidate(t *testing.T) {
	tokens := auth.NewTokens("secret", 0)

	raw, err := tokens.Generate("65f0c0ffee")
	require.NoError(t, err)

	id, err := tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", id.ID)
}

func TestTokensWithoutTTLHaveNoExpiry(t *testing.T) {
	raw, err := auth.NewTokens("secret", 0).Generate("u1")
	require.NoError(t, err)

	claims := &auth.Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, "u1", claims.User.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	raw, err := auth.NewTokens("secret", 0).Generate("u1")
	require.NoError(t, err)

	_, err = auth.NewTokens("other", 0).Validate(raw)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestValidateRejectsExpired(t *testing.T) {
	raw, err := auth.NewTokens("secret", time.Nanosecond).Generate("u1")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = auth.NewTokens("secret", 0).Validate(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateRejectsUnsignedAlgorithm(t *testing.T) {
	claims := auth.Claims{User: auth.Identity{ID: "u1"}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.NewTokens("secret", 0).Validate(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := auth.NewTokens("secret", 0).Validate("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, auth.CheckPassword(hash, "hunter2"))
	assert.False(t, auth.CheckPassword(hash, "hunter3"))
}
