package auth

import "fmt"

// Decision is the outcome of the sign-in authorization stage. It is a
// closed value: allow, deny, or redirect with a target URL. Denials carry
// no user-facing explanation; policy rejections and step-up challenges are
// expressed as redirects.
type Decision struct {
	allow    bool
	redirect string
}

// Allow lets the sign-in proceed.
func Allow() Decision {
	return Decision{allow: true}
}

// Deny rejects the attempt silently.
func Deny() Decision {
	return Decision{}
}

// RedirectTo rejects or defers the attempt by sending the user to a
// specific target, typically an error page or a TOTP challenge.
func RedirectTo(url string) Decision {
	return Decision{redirect: url}
}

// Allowed reports whether sign-in may proceed.
func (d Decision) Allowed() bool {
	return d.allow
}

// IsRedirect reports whether the decision carries a redirect target.
func (d Decision) IsRedirect() bool {
	return d.redirect != ""
}

// RedirectURL returns the redirect target, empty unless IsRedirect.
func (d Decision) RedirectURL() string {
	return d.redirect
}

func (d Decision) String() string {
	switch {
	case d.allow:
		return "allow"
	case d.redirect != "":
		return fmt.Sprintf("redirect=%s", d.redirect)
	default:
		return "deny"
	}
}
