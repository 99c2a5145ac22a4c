package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// SignInInput carries the identity claims the authentication layer
// presents for the attempt in progress.
type SignInInput struct {
	User    *User
	Account *Account
	Profile *Profile
}

// Callbacks is the authentication decision pipeline. Each stage is a pure
// function of the event inputs plus the current store snapshot; nothing is
// written back.
type Callbacks struct {
	accounts AccountStore
	users    UserStore
	mfa      AuthenticatorAppStore
	routes   RouteRegistry
	verifier TokenVerifier
	activity ActivitySink
	logger   Logger
}

// CallbacksOption configures the pipeline.
type CallbacksOption func(*Callbacks)

// WithLogger sets the pipeline logger.
func WithLogger(logger Logger) CallbacksOption {
	return func(c *Callbacks) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenVerifier makes the signed-in check require a valid token, not
// just a present one.
func WithTokenVerifier(verifier TokenVerifier) CallbacksOption {
	return func(c *Callbacks) {
		c.verifier = verifier
	}
}

// WithActivitySink attaches an audit sink; every sign-in decision is
// recorded through it.
func WithActivitySink(sink ActivitySink) CallbacksOption {
	return func(c *Callbacks) {
		c.activity = normalizeActivitySink(sink)
	}
}

// NewCallbacks wires the pipeline against its stores and route registry.
func NewCallbacks(
	accounts AccountStore,
	users UserStore,
	mfa AuthenticatorAppStore,
	routes RouteRegistry,
	opts ...CallbacksOption,
) *Callbacks {
	c := &Callbacks{
		accounts: accounts,
		users:    users,
		mfa:      mfa,
		routes:   routes,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// SignIn evaluates a sign-in attempt and returns the authorization
// decision. Store failures propagate as errors alongside a deny; policy
// rejections and step-up challenges come back as redirect decisions.
func (c *Callbacks) SignIn(ctx context.Context, in SignInInput) (Decision, error) {
	if c.accounts == nil || c.users == nil || c.mfa == nil || c.routes == nil {
		return Deny(), ErrStoreUnavailable
	}

	if in.Account == nil {
		decision := Deny()
		c.recordDecision(ctx, in, decision)
		return decision, nil
	}

	var (
		decision Decision
		err      error
	)
	if in.Account.Type == AccountTypeCredentials {
		decision, err = c.signInCredentials(ctx, in)
	} else {
		decision, err = c.signInOAuth(ctx, in)
	}

	if err == nil {
		c.recordDecision(ctx, in, decision)
	}
	return decision, err
}

// recordDecision logs the decision to the audit sink. Sink failures never
// change the outcome of an attempt.
func (c *Callbacks) recordDecision(ctx context.Context, in SignInInput, decision Decision) {
	event := ActivityEvent{
		UserID:     userIDFromInput(in),
		OccurredAt: time.Now().UTC(),
	}
	if in.Account != nil {
		event.Provider = in.Account.Provider
		event.AccountType = in.Account.Type
	}

	switch {
	case decision.Allowed():
		event.EventType = ActivityEventSignInAllowed
	case decision.IsRedirect():
		event.EventType = ActivityEventSignInRedirected
		event.RedirectURL = decision.RedirectURL()
	default:
		event.EventType = ActivityEventSignInDenied
	}

	if err := c.activity.Record(ctx, event); err != nil {
		c.logger.Warn("failed to record sign-in activity: %v", err)
	}
}

func userIDFromInput(in SignInInput) string {
	if in.User != nil && in.User.ID != uuid.Nil {
		return in.User.ID.String()
	}
	return ""
}

func (c *Callbacks) signInCredentials(ctx context.Context, in SignInInput) (Decision, error) {
	if in.User == nil || in.User.ID == uuid.Nil {
		return Deny(), nil
	}

	if in.Account.Provider == ProviderCredentials {
		enabled, err := c.mfaEnabled(ctx, in.User.ID.String())
		if err != nil {
			return Deny(), err
		}
		if enabled {
			return RedirectTo(c.routes.TOTPChallengeURL(in.User.ID.String())), nil
		}
	}

	return Allow(), nil
}

func (c *Callbacks) signInOAuth(ctx context.Context, in SignInInput) (Decision, error) {
	if in.Account.Provider == "" || in.Profile == nil {
		return Deny(), nil
	}

	provider, supported := ParseOAuthProvider(in.Account.Provider)
	if !supported {
		c.logger.Warn("sign-in rejected, provider %q not supported", in.Account.Provider)
		return RedirectTo(c.routes.AuthErrorURL(ErrorCodeIllegalOAuthProvider)), nil
	}

	if provider == OAuthGoogle && !in.Profile.EmailVerified {
		return RedirectTo(c.routes.AuthErrorURL(ErrorCodeUnverifiedEmail)), nil
	}

	// Lookup keeps the provider tag exactly as presented; linked accounts
	// are stored with the tag the provider registered under.
	linked, err := c.findLinkedAccount(ctx, in.Account.Provider, in.Account.ProviderAccountID)
	if err != nil {
		return Deny(), err
	}

	if c.signedIn(ctx) {
		// Explicit linking from the security settings flow. A provider
		// identity that is already attached cannot be linked again.
		if linked != nil {
			return RedirectTo(c.routes.OrganizationsIndexURL(ErrorCodeAlreadyLinked)), nil
		}
	} else {
		if linked != nil {
			if linked.UserID != uuid.Nil {
				enabled, err := c.mfaEnabled(ctx, linked.UserID.String())
				if err != nil {
					return Deny(), err
				}
				if enabled {
					return RedirectTo(c.routes.TOTPChallengeURL(linked.UserID.String())), nil
				}
			}
		} else {
			if in.Profile.Email == "" {
				return RedirectTo(c.routes.AuthErrorURL(ErrorCodeMissingOAuthEmail)), nil
			}

			existing, err := c.findUserByEmail(ctx, in.Profile.Email)
			if err != nil {
				return Deny(), err
			}

			// A new OAuth identity may not silently attach to an
			// MFA-protected account; the user must link it explicitly
			// while authenticated.
			if existing != nil {
				enabled, err := c.mfaEnabled(ctx, existing.ID.String())
				if err != nil {
					return Deny(), err
				}
				if enabled {
					return RedirectTo(c.routes.AuthErrorURL(ErrorCodeRequiresExplicitLinking)), nil
				}
			}
		}
	}

	if in.User != nil {
		in.User.Name = TruncateName(in.User.Name)
	}
	in.Profile.Name = TruncateName(in.Profile.Name)

	return Allow(), nil
}

// signedIn reports whether the requester already holds an authentication
// token. Presence of the cookie-sourced token is the signal; a configured
// verifier additionally requires it to validate.
func (c *Callbacks) signedIn(ctx context.Context) bool {
	raw, ok := RawTokenFromContext(ctx)
	if !ok {
		return false
	}

	if c.verifier != nil {
		if err := c.verifier.Verify(raw); err != nil {
			c.logger.Debug("raw token failed verification, treating as signed out: %v", err)
			return false
		}
	}

	return true
}

func (c *Callbacks) mfaEnabled(ctx context.Context, userID string) (bool, error) {
	count, err := c.mfa.CountByUser(ctx, userID)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to count MFA enrollments")
	}
	return count > 0, nil
}

func (c *Callbacks) findLinkedAccount(ctx context.Context, provider, providerAccountID string) (*Account, error) {
	account, err := c.accounts.FindByProvider(ctx, provider, providerAccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to find linked account")
	}
	return account, nil
}

func (c *Callbacks) findUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := c.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to find user by email")
	}
	return user, nil
}

// IsNotFoundError reports whether the error is a record-not-found from the
// persistence layer. The pipeline treats those as "no match", not failures.
func IsNotFoundError(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

func isNotFound(err error) bool {
	return IsNotFoundError(err)
}
