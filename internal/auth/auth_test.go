package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword(PasswordInput{Password: "correct horse battery"})
	require.NoError(t, err)
	assert.True(t, IsArgonEncoded(hash))

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword(PasswordInput{Password: "short"})
	assert.Error(t, err)

	_, err = HashPassword(PasswordInput{})
	assert.Error(t, err)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")

	signed, err := tokens.Issue("user-1", "app-1")
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "app-1", claims.AppID)
}

func TestTokensRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a").Issue("user-1", "app-1")
	require.NoError(t, err)

	_, err = NewTokens("secret-b").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectsGarbage(t *testing.T) {
	_, err := NewTokens("secret").Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
