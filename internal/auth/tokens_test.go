package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens, err := NewTokens([]byte("super-secret"), time.Hour)
	require.NoError(t, err)

	tok, err := tokens.Issue("AB12CD")
	require.NoError(t, err)

	subject, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", subject)
}

func TestTokens_Expired(t *testing.T) {
	tokens, err := NewTokens([]byte("secret"), -time.Second)
	require.NoError(t, err)

	tok, err := tokens.Issue("AB12CD")
	require.NoError(t, err)

	_, err = tokens.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokens_WrongSecret(t *testing.T) {
	signer, err := NewTokens([]byte("right-secret"), time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokens([]byte("wrong-secret"), time.Hour)
	require.NoError(t, err)

	tok, err := signer.Issue("AB12CD")
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsOtherAlgorithms(t *testing.T) {
	tokens, err := NewTokens([]byte("secret"), time.Hour)
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "AB12CD",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Garbage(t *testing.T) {
	tokens, err := NewTokens([]byte("secret"), time.Hour)
	require.NoError(t, err)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokens_EmptySecret(t *testing.T) {
	_, err := NewTokens(nil, time.Hour)
	assert.Error(t, err)
}
