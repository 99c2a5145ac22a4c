package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichToken_SignInCopiesIdentityClaims(t *testing.T) {
	user := &User{ID: uuid.New(), Name: "Ada Lovelace", Email: "ada@example.com"}
	account := &Account{Type: AccountTypeOAuth, Provider: "google", AccessToken: "acc-token"}
	cbs := newTestCallbacks(nil, nil, nil)

	token := cbs.EnrichToken(context.Background(), EnrichInput{
		Token:   &TokenClaims{},
		User:    user,
		Account: account,
		Trigger: TriggerSignIn,
	})

	require.NotNil(t, token)
	assert.Equal(t, user.ID.String(), token.UID)
	assert.Equal(t, "Ada Lovelace", token.Name)
	assert.Equal(t, "ada@example.com", token.Email)
	assert.Equal(t, "acc-token", token.AccessToken)
}

func TestEnrichToken_SignUpWithoutAccessTokenLeavesItEmpty(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "ada@example.com"}
	cbs := newTestCallbacks(nil, nil, nil)

	token := cbs.EnrichToken(context.Background(), EnrichInput{
		Token:   &TokenClaims{},
		User:    user,
		Account: &Account{Type: AccountTypeCredentials},
		Trigger: TriggerSignUp,
	})

	assert.Equal(t, user.ID.String(), token.UID)
	assert.Empty(t, token.AccessToken)
}

func TestEnrichToken_UpdateNeverIntroducesClaims(t *testing.T) {
	// A client-initiated update may not smuggle identity claims onto the
	// token, even when a user object is (incorrectly) supplied.
	user := &User{ID: uuid.New(), Name: "Mallory", Email: "mallory@example.com"}
	cbs := newTestCallbacks(nil, nil, nil)

	token := cbs.EnrichToken(context.Background(), EnrichInput{
		Token:   &TokenClaims{},
		User:    user,
		Trigger: TriggerUpdate,
	})

	assert.Empty(t, token.UID)
	assert.Empty(t, token.Name)
	assert.Empty(t, token.Email)
}

func TestEnrichToken_AttachesRawCookieToken(t *testing.T) {
	cbs := newTestCallbacks(nil, nil, nil)
	ctx := WithRawToken(context.Background(), "raw-jwt")

	// The raw token is attached regardless of trigger, update included.
	for _, trigger := range []Trigger{TriggerSignIn, TriggerUpdate, TriggerNone} {
		token := cbs.EnrichToken(ctx, EnrichInput{Token: &TokenClaims{}, Trigger: trigger})
		assert.Equal(t, "raw-jwt", token.JWTToken, "trigger %q", trigger)
	}

	token := cbs.EnrichToken(context.Background(), EnrichInput{Token: &TokenClaims{}})
	assert.Empty(t, token.JWTToken)
}

func TestEnrichToken_DoesNotMutateInput(t *testing.T) {
	in := &TokenClaims{Name: "before"}
	user := &User{ID: uuid.New(), Name: "after", Email: "after@example.com"}
	cbs := newTestCallbacks(nil, nil, nil)

	out := cbs.EnrichToken(context.Background(), EnrichInput{
		Token:   in,
		User:    user,
		Trigger: TriggerSignIn,
	})

	assert.Equal(t, "before", in.Name)
	assert.Equal(t, "after", out.Name)
}

func TestEnrichToken_NilTokenStartsFresh(t *testing.T) {
	cbs := newTestCallbacks(nil, nil, nil)

	token := cbs.EnrichToken(context.Background(), EnrichInput{Trigger: TriggerNone})
	require.NotNil(t, token)
	assert.Empty(t, token.UID)
}
