package auth

import (
	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// VerifierFunc adapts a function into a TokenVerifier.
type VerifierFunc func(token string) error

// Verify satisfies the TokenVerifier interface.
func (f VerifierFunc) Verify(token string) error {
	if f == nil {
		return ErrTokenMalformed
	}
	return f(token)
}

// HMACVerifier validates raw tokens signed with a shared HMAC key.
type HMACVerifier struct {
	key []byte
}

// NewHMACVerifier creates a verifier for HMAC-signed tokens.
func NewHMACVerifier(key []byte) *HMACVerifier {
	return &HMACVerifier{key: key}
}

// Verify satisfies the TokenVerifier interface.
func (v *HMACVerifier) Verify(raw string) error {
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return v.key, nil
	})

	return classifyParseError(err)
}

// JWKSVerifier validates raw tokens against a remote JWK Set, for
// deployments where the session tokens are issued by an external identity
// service.
type JWKSVerifier struct {
	jwks *keyfunc.JWKS
}

// NewJWKSVerifier fetches the JWK Set from the given URL and returns a
// verifier backed by it.
func NewJWKSVerifier(jwksURL string, opts keyfunc.Options) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load JWK Set").
			WithMetadata(map[string]any{"url": jwksURL})
	}
	return &JWKSVerifier{jwks: jwks}, nil
}

// Verify satisfies the TokenVerifier interface.
func (v *JWKSVerifier) Verify(raw string) error {
	_, err := jwt.Parse(raw, v.jwks.Keyfunc)
	return classifyParseError(err)
}

// MultiVerifier tries verifiers in order until one succeeds. Malformed
// results are treated as "try next"; any other failure is terminal.
type MultiVerifier struct {
	verifiers []TokenVerifier
}

// NewMultiVerifier filters nil verifiers and returns a composite verifier.
func NewMultiVerifier(verifiers ...TokenVerifier) *MultiVerifier {
	filtered := make([]TokenVerifier, 0, len(verifiers))
	for _, v := range verifiers {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return &MultiVerifier{verifiers: filtered}
}

// Verify satisfies the TokenVerifier interface.
func (m *MultiVerifier) Verify(raw string) error {
	var lastErr error
	for _, v := range m.verifiers {
		err := v.Verify(raw)
		if err == nil {
			return nil
		}
		if IsMalformedError(err) {
			lastErr = err
			continue
		}
		return err
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrTokenMalformed
}

func classifyParseError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
		WithTextCode(ErrTokenMalformed.TextCode).
		WithCode(ErrTokenMalformed.Code)
}
