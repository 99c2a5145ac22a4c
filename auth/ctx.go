package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var rawTokenCtxKey = &contextKey{"raw-token"}
var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithRawToken stashes the raw authentication token read from the request
// cookie into the context. The pipeline treats its presence as the
// signed-in signal.
func WithRawToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, rawTokenCtxKey, token)
}

// RawTokenFromContext returns the raw authentication token for the current
// request, if one was attached.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(rawTokenCtxKey).(string)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// WithUser sets the User in the given context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// ReadRawToken pulls the raw authentication token from the request cookie
// store. Empty when the cookie is absent.
func ReadRawToken(c router.Context, cookieName string) string {
	return c.Cookies(cookieName)
}
