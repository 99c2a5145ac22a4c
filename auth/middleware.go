package auth

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultCookieName is the cookie the raw authentication token travels in.
const DefaultCookieName = "launchbay.session-token"

// DefaultRejectedRouteKey stores the route a signed-out user was heading to
// so we can send them back after login.
const DefaultRejectedRouteKey = "launchbay.rejected-route"

// SessionMiddleware reads the raw authentication token cookie on every
// request and, when enforcing, rejects requests without a usable token.
type SessionMiddleware struct {
	CookieName       string
	RejectedRouteKey string
	LoginPath        string
	Verifier         TokenVerifier
	Logger           Logger
	ErrorHandler     func(c router.Context, err error) error
}

// NewSessionMiddleware creates a middleware with the default cookie names.
func NewSessionMiddleware(verifier TokenVerifier) *SessionMiddleware {
	m := &SessionMiddleware{
		CookieName:       DefaultCookieName,
		RejectedRouteKey: DefaultRejectedRouteKey,
		LoginPath:        "/auth/login",
		Verifier:         verifier,
		Logger:           defLogger{},
	}
	m.ErrorHandler = m.defaultErrHandler
	return m
}

// Load attaches the raw token to the request context when the cookie is
// present. It never rejects; the decision pipeline's signed-in helper and
// downstream handlers read the token from the context.
func (m *SessionMiddleware) Load() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if raw := ReadRawToken(c, m.CookieName); raw != "" {
				c.SetContext(WithRawToken(c.Context(), raw))
			}
			return next(c)
		}
	}
}

// Require enforces a present (and, with a verifier, valid) token. Rejected
// requests remember their target route and land on the login page.
func (m *SessionMiddleware) Require() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			raw := ReadRawToken(c, m.CookieName)
			if raw == "" {
				return m.ErrorHandler(c, ErrUnableToFindSession)
			}

			if m.Verifier != nil {
				if err := m.Verifier.Verify(raw); err != nil {
					return m.ErrorHandler(c, err)
				}
			}

			ctx := WithRawToken(c.Context(), raw)
			if validator, ok := m.Verifier.(ClaimsValidator); ok {
				if claims, err := validator.Validate(raw); err == nil {
					ctx = WithUser(ctx, claims.User())
				}
			}

			c.SetContext(ctx)
			return next(c)
		}
	}
}

// SetRedirect remembers the route that was rejected so login can bounce
// the user back.
func (m *SessionMiddleware) SetRedirect(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     m.RejectedRouteKey,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirectOrDefault consumes the rejected-route cookie, falling back to
// the referer header and then the given default.
func (m *SessionMiddleware) GetRedirectOrDefault(c router.Context, def string) string {
	r := c.Cookies(m.RejectedRouteKey, string(c.Referer()))
	if r == "" {
		r = def
	}
	ClearAuthCookie(c, m.RejectedRouteKey)
	return r
}

func (m *SessionMiddleware) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "invalid authentication token").
			WithCode(errors.CodeUnauthorized)
	}

	m.Logger.Info(
		"session rejected, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"details", print.MaybePrettyJSON(richErr.Metadata),
		"path", c.OriginalURL(),
	)

	m.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(m.LoginPath, statusCode)
}

// SetAuthCookie writes the raw authentication token cookie.
func SetAuthCookie(c router.Context, name, value string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ClearAuthCookie expires a cookie.
func ClearAuthCookie(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
