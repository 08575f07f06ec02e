package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToken(t *testing.T) {
	hash := HashToken("my-token")

	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken("my-token"))
	assert.NotEqual(t, hash, HashToken("other-token"))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "6b944c66-9243-4b66-bb50-d9a4bd2d4da7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.WithinDuration(t, exp, tokenExpiry(signed), time.Second)
}

func TestTokenExpiryMalformed(t *testing.T) {
	// An unparseable token still gets a retention window so its hash can
	// be stored.
	expiry := tokenExpiry("not-a-jwt")

	assert.True(t, expiry.After(time.Now()))
}
