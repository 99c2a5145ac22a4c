package auth

import (
	"net/url"
	"strings"
)

// Default dashboard paths. Overridable through NewRoutes options for
// deployments that mount the dashboard under a prefix.
const (
	DefaultAuthErrorPath     = "/auth/error"
	DefaultOrganizationsPath = "/organizations"
	DefaultTOTPChallengePath = "/auth/totp"
)

// Routes is the named-route registry for the pipeline's redirect targets.
type Routes struct {
	baseURL           string
	authErrorPath     string
	organizationsPath string
	totpChallengePath string
}

var _ RouteRegistry = (*Routes)(nil)

// RoutesOption configures a Routes registry.
type RoutesOption func(*Routes)

// WithBaseURL prefixes every generated URL, e.g. "https://app.launchbay.dev".
func WithBaseURL(base string) RoutesOption {
	return func(r *Routes) {
		r.baseURL = strings.TrimRight(base, "/")
	}
}

// WithAuthErrorPath overrides the auth error page path.
func WithAuthErrorPath(path string) RoutesOption {
	return func(r *Routes) {
		r.authErrorPath = path
	}
}

// WithOrganizationsPath overrides the organizations index path.
func WithOrganizationsPath(path string) RoutesOption {
	return func(r *Routes) {
		r.organizationsPath = path
	}
}

// WithTOTPChallengePath overrides the TOTP step-up challenge path.
func WithTOTPChallengePath(path string) RoutesOption {
	return func(r *Routes) {
		r.totpChallengePath = path
	}
}

// NewRoutes creates a registry with the default dashboard paths.
func NewRoutes(opts ...RoutesOption) *Routes {
	r := &Routes{
		authErrorPath:     DefaultAuthErrorPath,
		organizationsPath: DefaultOrganizationsPath,
		totpChallengePath: DefaultTOTPChallengePath,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// AuthErrorURL returns the error page URL with the code appended as
// ?error=<code>.
func (r *Routes) AuthErrorURL(code ErrorCode) string {
	return withErrorCode(r.baseURL+r.authErrorPath, code)
}

// OrganizationsIndexURL returns the organizations index URL, with an
// ?error=<code> parameter when a code is given.
func (r *Routes) OrganizationsIndexURL(code ErrorCode) string {
	return withErrorCode(r.baseURL+r.organizationsPath, code)
}

// TOTPChallengeURL returns the step-up challenge URL for a user.
func (r *Routes) TOTPChallengeURL(userID string) string {
	return r.baseURL + r.totpChallengePath + "?userId=" + url.QueryEscape(userID)
}

func withErrorCode(target string, code ErrorCode) string {
	if code == "" {
		return target
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "error=" + url.QueryEscape(string(code))
}
