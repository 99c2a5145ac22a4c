package auth

import "strings"

// AccountType discriminates how an account authenticates.
type AccountType string

const (
	// AccountTypeCredentials is the username/password method.
	AccountTypeCredentials AccountType = "credentials"
	// AccountTypeOAuth is an OAuth2 identity provider account.
	AccountTypeOAuth AccountType = "oauth"
	// AccountTypeOIDC is an OpenID Connect identity provider account.
	AccountTypeOIDC AccountType = "oidc"
)

// ProviderCredentials is the canonical credentials provider name.
const ProviderCredentials = "credentials"

// OAuthProvider is the closed set of OAuth identity providers we accept.
// Modeling it as an enumeration keeps the unsupported-provider branch
// exhaustive instead of comparing free-form strings.
type OAuthProvider string

const (
	OAuthGoogle           OAuthProvider = "google"
	OAuthMicrosoftEntraID OAuthProvider = "microsoft-entra-id"
)

// OAuthProviders returns the supported provider set.
func OAuthProviders() []OAuthProvider {
	return []OAuthProvider{OAuthGoogle, OAuthMicrosoftEntraID}
}

// ParseOAuthProvider matches a provider tag case-insensitively against the
// supported set.
func ParseOAuthProvider(name string) (OAuthProvider, bool) {
	normalized := OAuthProvider(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range OAuthProviders() {
		if p == normalized {
			return p, true
		}
	}
	return "", false
}

func (p OAuthProvider) String() string {
	return string(p)
}
