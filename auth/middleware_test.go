package auth

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ctxCapture pairs Context/SetContext so the middleware's context writes are
// visible to the next handler.
type ctxCapture struct {
	*router.MockContext
	ctx context.Context
}

func (c *ctxCapture) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *ctxCapture) SetContext(ctx context.Context) {
	c.ctx = ctx
}

func TestRequireStashesRawTokenAndResolvedUser(t *testing.T) {
	svc := NewTokenService(testSigningKey)
	uid := uuid.New()
	signed, err := svc.SignClaims(&TokenClaims{
		UID:   uid.String(),
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	m := NewSessionMiddleware(svc)
	ctx := &ctxCapture{MockContext: router.NewMockContext()}
	ctx.CookiesM[m.CookieName] = signed

	var gotRaw string
	var gotUser *User
	handler := m.Require()(func(c router.Context) error {
		raw, ok := RawTokenFromContext(c.Context())
		require.True(t, ok)
		gotRaw = raw

		user, ok := UserFromContext(c.Context())
		require.True(t, ok)
		gotUser = user
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.Equal(t, signed, gotRaw)
	require.NotNil(t, gotUser)
	assert.Equal(t, uid, gotUser.ID)
	assert.Equal(t, "Ada Lovelace", gotUser.Name)
	assert.Equal(t, "ada@example.com", gotUser.Email)
}

func TestRequireRejectsMissingCookie(t *testing.T) {
	m := NewSessionMiddleware(NewHMACVerifier(testSigningKey))

	var gotErr error
	m.ErrorHandler = func(_ router.Context, err error) error {
		gotErr = err
		return nil
	}

	ctx := &ctxCapture{MockContext: router.NewMockContext()}
	handler := m.Require()(func(router.Context) error {
		t.Fatal("handler must not run without a session cookie")
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.ErrorIs(t, gotErr, ErrUnableToFindSession)
}

func TestRequireSkipsUserWhenVerifierCannotDecodeClaims(t *testing.T) {
	svc := NewTokenService(testSigningKey)
	signed, err := svc.SignClaims(&TokenClaims{UID: uuid.NewString()})
	require.NoError(t, err)

	// A bare verifier validates the token but cannot surface its claims.
	m := NewSessionMiddleware(NewHMACVerifier(testSigningKey))
	ctx := &ctxCapture{MockContext: router.NewMockContext()}
	ctx.CookiesM[m.CookieName] = signed

	handler := m.Require()(func(c router.Context) error {
		_, ok := RawTokenFromContext(c.Context())
		require.True(t, ok)

		_, ok = UserFromContext(c.Context())
		assert.False(t, ok)
		return nil
	})

	require.NoError(t, handler(ctx))
}

func TestTokenClaimsUserPrefersSubject(t *testing.T) {
	subject := uuid.New()
	claims := &TokenClaims{
		UID:   uuid.NewString(),
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	}
	claims.Subject = subject.String()

	user := claims.User()
	require.NotNil(t, user)
	assert.Equal(t, subject, user.ID)

	var nilClaims *TokenClaims
	assert.Nil(t, nilClaims.User())
}
