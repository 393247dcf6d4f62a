package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestVerifyHS256(t *testing.T) {
	v, err := NewIdentityVerifier(string(testSecret), "", "test-issuer")
	require.NoError(t, err)

	token, err := IssueToken(testSecret, "test-issuer", Principal{UID: "u1", Email: "Ada@Example.com", Name: "Ada", Admin: true}, time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada", p.Name)
	assert.True(t, p.Admin)
}

func TestVerifyRejections(t *testing.T) {
	v, err := NewIdentityVerifier(string(testSecret), "", "test-issuer")
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := v.Verify("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := IssueToken(testSecret, "test-issuer", Principal{UID: "u1"}, -time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken([]byte("other"), "test-issuer", Principal{UID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := IssueToken(testSecret, "someone-else", Principal{UID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := IssueToken(testSecret, "test-issuer", Principal{Email: "a@b.c"}, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no key configured", func(t *testing.T) {
		empty, err := NewIdentityVerifier("", "", "")
		require.NoError(t, err)
		token, err := IssueToken(testSecret, "", Principal{UID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = empty.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewIdentityVerifier("", string(pub), "")
	require.NoError(t, err)

	claims := &IdentityClaims{
		Email: "rsa@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "rsa-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	p, err := v.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "rsa-user", p.UID)

	// an HS256 token must not pass once a public key is configured
	hs, err := IssueToken(testSecret, "", Principal{UID: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(hs)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIdentityVerifier("", "not a pem", "")
	assert.Error(t, err)
}
