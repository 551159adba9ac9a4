package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestSignupStoresHashedPasswordAndEmptyCart(t *testing.T) {
	users := newMemUsers()
	s := NewAuthService(users, stubTokens{})

	token, err := s.Signup(context.Background(), "Ann", "Ann@Example.com ", "pw1")
	require.NoError(t, err)
	assert.Contains(t, token, "token-for-")

	u, err := users.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", u.Password)
	assert.True(t, auth.CheckPassword(u.Password, "pw1"))
	assert.Empty(t, u.CartData)
	assert.Equal(t, "token-for-"+u.ID.Hex(), token)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	s := NewAuthService(newMemUsers(), stubTokens{})

	_, err := s.Signup(context.Background(), "Ann", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = s.Signup(context.Background(), "Other", "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, "Existing user found with same email address", err.Error())
}

func TestLogin(t *testing.T) {
	users := newMemUsers()
	s := NewAuthService(users, stubTokens{})
	_, err := s.Signup(context.Background(), "Ann", "a@x.com", "pw1")
	require.NoError(t, err)

	token, err := s.Login(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = s.Login(context.Background(), "a@x.com", "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Equal(t, "wrong Password", err.Error())

	_, err = s.Login(context.Background(), "b@x.com", "pw1")
	assert.ErrorIs(t, err, ErrWrongEmail)
	assert.Equal(t, "wrong Email", err.Error())
}

func TestLoginUpgradesLegacyPlainTextPassword(t *testing.T) {
	users := newMemUsers()
	legacy := users.addUser(models.User{Name: "Old", Email: "old@x.com", Password: "secret"})
	s := NewAuthService(users, stubTokens{})

	_, err := s.Login(context.Background(), "old@x.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = s.Login(context.Background(), "old@x.com", "secret")
	require.NoError(t, err)

	u, err := users.FindByEmail(context.Background(), "old@x.com")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, u.ID)
	assert.True(t, auth.CheckPassword(u.Password, "secret"))

	_, err = s.Login(context.Background(), "old@x.com", "secret")
	assert.NoError(t, err)
}

func TestSignupRejectsPasswordOverBcryptLimit(t *testing.T) {
	users := newMemUsers()
	s := NewAuthService(users, stubTokens{})

	_, err := s.Signup(context.Background(), "a", "a@b.co", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = users.FindByEmail(context.Background(), "a@b.co")
	assert.Error(t, err, "no user may be stored")

	_, err = s.Signup(context.Background(), "a", "a@b.co", strings.Repeat("x", 72))
	assert.NoError(t, err)
}
