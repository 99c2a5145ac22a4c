package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrorCode is the vocabulary of policy rejections the sign-in stage emits
// as an ?error= query parameter on redirect targets.
type ErrorCode string

const (
	// ErrorCodeIllegalOAuthProvider flags a provider outside the supported set.
	ErrorCodeIllegalOAuthProvider ErrorCode = "IllegalOAuthProvider"
	// ErrorCodeUnverifiedEmail flags a Google profile without a verified email.
	ErrorCodeUnverifiedEmail ErrorCode = "UnverifiedEmail"
	// ErrorCodeMissingOAuthEmail flags a profile that presented no email at all.
	ErrorCodeMissingOAuthEmail ErrorCode = "MissingOAuthEmail"
	// ErrorCodeRequiresExplicitLinking blocks silent auto-linking of a new
	// OAuth identity onto an MFA-protected account.
	ErrorCodeRequiresExplicitLinking ErrorCode = "RequiresExplicitLinking"
	// ErrorCodeAlreadyLinked flags a linking attempt for a provider identity
	// that is already attached to a user.
	ErrorCodeAlreadyLinked ErrorCode = "AlreadyLinked"
)

// ErrUnableToFindSession is the error when the request has no auth cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode("auth_session_not_found").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for raw tokens past their expiry
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode("auth_token_expired").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be decoded
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithTextCode("auth_token_malformed").
	WithCode(errors.CodeUnauthorized)

// ErrStoreUnavailable is returned when the pipeline is wired without one of
// its required stores
var ErrStoreUnavailable = errors.New("auth store not configured", errors.CategoryInternal).
	WithTextCode("auth_store_unavailable").
	WithCode(errors.CodeInternal)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		hasTextCode(err, ErrTokenExpired.TextCode) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		hasTextCode(err, ErrTokenMalformed.TextCode) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

func hasTextCode(err error, textCode string) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == textCode
}
