package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AccountStore looks up linked provider accounts.
type AccountStore interface {
	FindByProvider(ctx context.Context, provider, providerAccountID string) (*Account, error)
}

// UserStore looks up users for the pipeline's read-only checks.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// AuthenticatorAppStore counts MFA enrollments. A user with one or more
// enrollment records has MFA enabled.
type AuthenticatorAppStore interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// RouteRegistry provides the canonical URLs the pipeline redirects to.
type RouteRegistry interface {
	AuthErrorURL(code ErrorCode) string
	OrganizationsIndexURL(code ErrorCode) string
	TOTPChallengeURL(userID string) string
}

// TokenVerifier checks the validity of a raw authentication token. The
// pipeline treats cookie presence as the signed-in signal; wiring a
// verifier additionally requires the token to validate.
type TokenVerifier interface {
	Verify(token string) error
}

// ClaimsValidator is a TokenVerifier that can also decode the token's
// claims. The session middleware uses it to resolve the request user.
type ClaimsValidator interface {
	Validate(token string) (*TokenClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
