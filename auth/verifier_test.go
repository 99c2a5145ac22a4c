package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key-0123456789abcdef")

func signTestToken(t *testing.T, key []byte, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestHMACVerifier_ValidToken(t *testing.T) {
	v := NewHMACVerifier(testSigningKey)
	raw := signTestToken(t, testSigningKey, time.Now().Add(time.Hour))

	assert.NoError(t, v.Verify(raw))
}

func TestHMACVerifier_ExpiredToken(t *testing.T) {
	v := NewHMACVerifier(testSigningKey)
	raw := signTestToken(t, testSigningKey, time.Now().Add(-time.Hour))

	err := v.Verify(raw)
	require.Error(t, err)
	assert.True(t, IsTokenExpiredError(err))
}

func TestHMACVerifier_GarbageToken(t *testing.T) {
	v := NewHMACVerifier(testSigningKey)

	err := v.Verify("not-a-jwt")
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestHMACVerifier_WrongKey(t *testing.T) {
	v := NewHMACVerifier([]byte("another-key-another-key-another!"))
	raw := signTestToken(t, testSigningKey, time.Now().Add(time.Hour))

	err := v.Verify(raw)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestMultiVerifier_WrongKeyFallsThroughToNextKey(t *testing.T) {
	raw := signTestToken(t, testSigningKey, time.Now().Add(time.Hour))

	m := NewMultiVerifier(
		NewHMACVerifier([]byte("another-key-another-key-another!")),
		NewHMACVerifier(testSigningKey),
	)
	assert.NoError(t, m.Verify(raw))
}

func TestMultiVerifier_TriesNextOnMalformed(t *testing.T) {
	rejecting := VerifierFunc(func(string) error { return ErrTokenMalformed })
	accepting := VerifierFunc(func(string) error { return nil })

	m := NewMultiVerifier(nil, rejecting, accepting)
	assert.NoError(t, m.Verify("anything"))
}

func TestMultiVerifier_StopsOnTerminalError(t *testing.T) {
	expired := VerifierFunc(func(string) error { return ErrTokenExpired })
	accepting := VerifierFunc(func(string) error { return nil })

	m := NewMultiVerifier(expired, accepting)
	err := m.Verify("anything")
	require.Error(t, err)
	assert.True(t, IsTokenExpiredError(err))
}

func TestMultiVerifier_AllMalformed(t *testing.T) {
	rejecting := VerifierFunc(func(string) error { return ErrTokenMalformed })

	m := NewMultiVerifier(rejecting, rejecting)
	err := m.Verify("anything")
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}
