package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and validates the session tokens the cookie carries.
type TokenService struct {
	signingKey    []byte
	tokenDuration time.Duration
	issuer        string
	audience      jwt.ClaimStrings
	logger        Logger
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithTokenIssuer sets the iss claim on minted tokens.
func WithTokenIssuer(issuer string) TokenServiceOption {
	return func(ts *TokenService) {
		ts.issuer = issuer
	}
}

// WithTokenAudience sets the aud claim on minted tokens.
func WithTokenAudience(audience ...string) TokenServiceOption {
	return func(ts *TokenService) {
		ts.audience = audience
	}
}

// WithTokenDuration sets the token lifetime.
func WithTokenDuration(d time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		if d > 0 {
			ts.tokenDuration = d
		}
	}
}

// WithTokenLogger sets the service logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a TokenService signing with the given HMAC key.
func NewTokenService(signingKey []byte, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		signingKey:    signingKey,
		tokenDuration: 24 * time.Hour,
		logger:        defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// SignClaims signs the token claims, stamping the registered subject,
// issued-at, and expiry.
func (ts *TokenService) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims.Issuer = ts.issuer
	claims.Audience = ts.audience
	claims.Subject = claims.UID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.tokenDuration))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses a token string and returns its claims.
func (ts *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenMalformed
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Verify satisfies the TokenVerifier interface, letting the token service
// double as the middleware verifier.
func (ts *TokenService) Verify(raw string) error {
	_, err := ts.Validate(raw)
	return err
}
