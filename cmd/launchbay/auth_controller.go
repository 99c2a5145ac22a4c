package main

import (
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
	"github.com/launchbay/launchbay/auth"
	"github.com/launchbay/launchbay/organization"
)

// AuthController terminates the identity flow: it receives completed
// provider sign-ins, runs them through the decision pipeline, and manages
// the session cookie.
type AuthController struct {
	app     *App
	session *auth.SessionMiddleware
}

// NewAuthController wires the controller against the app.
func NewAuthController(app *App, session *auth.SessionMiddleware) *AuthController {
	return &AuthController{
		app:     app,
		session: session,
	}
}

// RegisterRoutes mounts the auth endpoints.
func (c *AuthController) RegisterRoutes(group organization.RouteRegistrar) {
	group.Post("/auth/callback/:provider", c.Callback)
	group.Get("/auth/session", c.Session)
	group.Post("/auth/logout", c.Logout)
	group.Get("/auth/error", c.ErrorPage)
	group.Get("/auth/totp", c.TOTPChallenge)
	group.Get("/organizations", c.OrganizationsIndex)
}

// CallbackRequest is the payload an upstream identity gateway posts after
// completing the provider exchange.
type CallbackRequest struct {
	ProviderAccountID string       `json:"providerAccountId" form:"providerAccountId"`
	AccessToken       string       `json:"accessToken" form:"accessToken"`
	Type              string       `json:"type" form:"type"`
	Profile           auth.Profile `json:"profile" form:"profile"`
}

// Validate will run validation rules
func (r CallbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.ProviderAccountID,
			validation.Required,
		),
	)
}

// Callback runs a completed provider sign-in through the pipeline and, on
// allow, persists the identity and issues the session cookie.
func (c *AuthController) Callback(ctx router.Context) error {
	provider := ctx.Param("provider")

	payload := new(CallbackRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation error",
			"fields": err,
		})
	}

	account := &auth.Account{
		Type:              accountType(payload.Type),
		Provider:          provider,
		ProviderAccountID: payload.ProviderAccountID,
		AccessToken:       payload.AccessToken,
	}

	user, trigger, err := c.resolveUser(ctx, payload)
	if err != nil {
		return c.fail(ctx, err)
	}

	decision, err := c.app.cb.SignIn(ctx.Context(), auth.SignInInput{
		User:    user,
		Account: account,
		Profile: &payload.Profile,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	if decision.IsRedirect() {
		return ctx.Redirect(decision.RedirectURL(), http.StatusSeeOther)
	}

	if !decision.Allowed() {
		return ctx.JSON(http.StatusForbidden, map[string]string{
			"error": "sign-in denied",
		})
	}

	if trigger == auth.TriggerSignUp {
		user, err = c.app.repos.Users().Register(ctx.Context(), user)
		if err != nil {
			return c.fail(ctx, err)
		}
	}

	// A profile without an email can still be allowed when the provider
	// identity is already linked; the owner comes from the linked account.
	if user == nil {
		user, err = c.userFromLinkedAccount(ctx, account)
		if err != nil {
			return c.fail(ctx, err)
		}
		if user == nil {
			return ctx.JSON(http.StatusForbidden, map[string]string{
				"error": "sign-in denied",
			})
		}
		trigger = auth.TriggerSignIn
	}

	account.UserID = user.ID
	if err := c.app.repos.Accounts().Upsert(ctx.Context(), account); err != nil {
		return c.fail(ctx, err)
	}

	if err := c.app.repos.Users().TrackSuccessfulLogin(ctx.Context(), user); err != nil {
		c.app.GetLogger("auth:ctrl").Warn("failed to track login", "error", err, "user_id", user.ID)
	}

	claims := c.app.cb.EnrichToken(ctx.Context(), auth.EnrichInput{
		User:    user,
		Account: account,
		Trigger: trigger,
	})

	signed, err := c.app.tokens.SignClaims(claims)
	if err != nil {
		return c.fail(ctx, err)
	}

	auth.SetAuthCookie(ctx, c.session.CookieName, signed, c.app.config.Auth.TokenDuration)

	return ctx.Redirect(c.app.config.Auth.OrganizationsPath, http.StatusSeeOther)
}

// resolveUser matches the profile email to an existing user or builds a
// transient one for registration after the pipeline allows the attempt.
func (c *AuthController) resolveUser(ctx router.Context, payload *CallbackRequest) (*auth.User, auth.Trigger, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Profile.Email))
	if email == "" {
		// The pipeline will turn a missing OAuth email into a redirect.
		return nil, auth.TriggerSignIn, nil
	}

	existing, err := c.app.repos.Users().FindByEmail(ctx.Context(), email)
	if err == nil {
		return existing, auth.TriggerSignIn, nil
	}
	if !auth.IsNotFoundError(err) {
		return nil, auth.TriggerNone, err
	}

	user := &auth.User{
		Name:  auth.TruncateName(payload.Profile.Name),
		Email: email,
		Image: payload.Profile.Picture,
	}
	if payload.Profile.EmailVerified {
		now := time.Now()
		user.EmailVerified = &now
	}

	return user, auth.TriggerSignUp, nil
}

// userFromLinkedAccount resolves the owner of an already linked provider
// identity. Returns nil when the provider pair is not linked to anyone.
func (c *AuthController) userFromLinkedAccount(ctx router.Context, account *auth.Account) (*auth.User, error) {
	linked, err := c.app.repos.Accounts().FindByProvider(ctx.Context(), account.Provider, account.ProviderAccountID)
	if err != nil {
		if auth.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	user, err := c.app.repos.Users().GetByID(ctx.Context(), linked.UserID.String())
	if err != nil {
		if auth.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Session returns the shaped session derived from the cookie token.
func (c *AuthController) Session(ctx router.Context) error {
	raw, ok := auth.RawTokenFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, map[string]string{
			"error": "no session",
		})
	}

	claims, err := c.app.tokens.Validate(raw)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid session",
		})
	}

	session := auth.Session{
		User: auth.SessionUser{
			ID:    claims.UID,
			Name:  claims.Name,
			Email: claims.Email,
		},
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = &claims.ExpiresAt.Time
	}

	return ctx.JSON(http.StatusOK, c.app.cb.ShapeSession(session, claims))
}

// Logout clears the session cookie.
func (c *AuthController) Logout(ctx router.Context) error {
	auth.ClearAuthCookie(ctx, c.session.CookieName)
	return ctx.Redirect(c.app.config.Auth.LoginPath, http.StatusSeeOther)
}

// ErrorPage renders the auth error page with the pipeline's error code.
func (c *AuthController) ErrorPage(ctx router.Context) error {
	return ctx.Render("auth_error", router.ViewContext{
		"title": "Sign-in problem",
		"code":  ctx.Query("error"),
	})
}

// TOTPChallenge renders the TOTP step-up page for the challenged user.
func (c *AuthController) TOTPChallenge(ctx router.Context) error {
	return ctx.Render("totp_challenge", router.ViewContext{
		"title":  "Two-factor check",
		"userId": ctx.Query("userId"),
	})
}

// OrganizationsIndex is the post-sign-in landing page.
func (c *AuthController) OrganizationsIndex(ctx router.Context) error {
	page, err := c.app.orgs.List(ctx.Context(), organization.ListQuery{})
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.Render("organizations", router.ViewContext{
		"title":         "Organizations",
		"organizations": page.Data,
		"error":         ctx.Query("error"),
	})
}

func (c *AuthController) fail(ctx router.Context, err error) error {
	c.app.GetLogger("auth:ctrl").Error("auth request failed", "error", err)
	return ctx.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func accountType(t string) auth.AccountType {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case string(auth.AccountTypeOIDC):
		return auth.AccountTypeOIDC
	case string(auth.AccountTypeCredentials):
		return auth.AccountTypeCredentials
	default:
		return auth.AccountTypeOAuth
	}
}
