package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceSignAndValidate(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"),
		WithTokenIssuer("launchbay"),
		WithTokenDuration(time.Hour),
	)

	signed, err := ts.SignClaims(&TokenClaims{
		UID:   "user-1",
		Name:  "Pepe Rone",
		Email: "pepe@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := ts.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "launchbay", claims.Issuer)
	assert.Equal(t, "pepe@example.com", claims.Email)
}

func TestTokenServiceRejectsNilClaims(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"))
	_, err := ts.SignClaims(nil)
	assert.Error(t, err)
}

func TestTokenServiceRejectsForeignKey(t *testing.T) {
	ts := NewTokenService([]byte("key-one"))
	other := NewTokenService([]byte("key-two"))

	signed, err := ts.SignClaims(&TokenClaims{UID: "user-1"})
	require.NoError(t, err)

	_, err = other.Validate(signed)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"), WithTokenDuration(time.Nanosecond))

	signed, err := ts.SignClaims(&TokenClaims{UID: "user-1"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = ts.Validate(signed)
	require.Error(t, err)
	assert.True(t, IsTokenExpiredError(err))
}

func TestTokenServiceVerifySatisfiesVerifier(t *testing.T) {
	ts := NewTokenService([]byte("test-signing-key"))

	var _ TokenVerifier = ts

	signed, err := ts.SignClaims(&TokenClaims{UID: "user-1"})
	require.NoError(t, err)
	assert.NoError(t, ts.Verify(signed))
	assert.Error(t, ts.Verify("garbage"))
}
