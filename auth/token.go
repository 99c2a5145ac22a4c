package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Trigger identifies the lifecycle event that caused a token refresh.
type Trigger string

const (
	TriggerSignIn Trigger = "signIn"
	TriggerSignUp Trigger = "signUp"
	TriggerUpdate Trigger = "update"
	TriggerNone   Trigger = ""
)

// TokenClaims is the per-request token the authentication layer persists
// between requests. The registered subject claim carries the user id the
// session stage reads back.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID         string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	JWTToken    string `json:"jwtToken,omitempty"`
}

// User materializes the identity the claims carry. The subject wins over
// the enrichment id, same rule the session shaping stage applies.
func (c *TokenClaims) User() *User {
	if c == nil {
		return nil
	}

	id := c.UID
	if c.Subject != "" {
		id = c.Subject
	}
	uid, _ := uuid.Parse(id)

	return &User{
		ID:    uid,
		Name:  c.Name,
		Email: c.Email,
	}
}

// EnrichInput carries the token enrichment stage inputs.
type EnrichInput struct {
	Token   *TokenClaims
	User    *User
	Account *Account
	Trigger Trigger
}

// EnrichToken returns the token to persist for subsequent requests. On
// signIn/signUp it copies the user's id, name, and email (and the
// account's access token when present) onto the token, and it always
// attaches the raw cookie token when one is in flight. Update triggers
// return the token with no claim changes beyond that: client-initiated
// session updates must not mutate server-held claims.
func (c *Callbacks) EnrichToken(ctx context.Context, in EnrichInput) *TokenClaims {
	token := TokenClaims{}
	if in.Token != nil {
		token = *in.Token
	}

	if (in.Trigger == TriggerSignIn || in.Trigger == TriggerSignUp) && in.User != nil {
		token.UID = in.User.ID.String()
		token.Name = in.User.Name
		token.Email = in.User.Email

		if in.Account != nil && in.Account.AccessToken != "" {
			token.AccessToken = in.Account.AccessToken
		}
	}

	if raw, ok := RawTokenFromContext(ctx); ok {
		token.JWTToken = raw
	}

	return &token
}
