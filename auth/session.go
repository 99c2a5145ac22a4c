package auth

import "time"

// SessionUser is the outward-facing view of the signed-in user.
type SessionUser struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the externally visible session object the dashboard consumes.
type Session struct {
	User      SessionUser `json:"user"`
	Token     string      `json:"token,omitempty"`
	JWTToken  string      `json:"jwtToken,omitempty"`
	ExpiresAt *time.Time  `json:"expires,omitempty"`
}

// SessionBuilder constructs a new session value from an existing one. The
// shaping stage never mutates its input; every change lands on a copy.
type SessionBuilder struct {
	session Session
}

// NewSessionBuilder seeds a builder with a copy of the given session.
func NewSessionBuilder(from Session) *SessionBuilder {
	return &SessionBuilder{session: from}
}

// WithUserID overrides the session user's id.
func (b *SessionBuilder) WithUserID(id string) *SessionBuilder {
	b.session.User.ID = id
	return b
}

// WithToken exposes the provider access token on the session.
func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.session.Token = token
	return b
}

// WithJWTToken exposes the raw authentication token on the session.
func (b *SessionBuilder) WithJWTToken(token string) *SessionBuilder {
	b.session.JWTToken = token
	return b
}

// Build returns the constructed session.
func (b *SessionBuilder) Build() Session {
	return b.session
}

// ShapeSession derives the externally visible session from the current
// token: the subject claim wins over the stored user id, and the access
// and raw tokens are surfaced when present.
func ShapeSession(session Session, token *TokenClaims) Session {
	b := NewSessionBuilder(session)
	if token == nil {
		return b.Build()
	}

	if sub := token.RegisteredClaims.Subject; sub != "" {
		b.WithUserID(sub)
	}

	if token.AccessToken != "" {
		b.WithToken(token.AccessToken)
	}

	if token.JWTToken != "" {
		b.WithJWTToken(token.JWTToken)
	}

	return b.Build()
}

// ShapeSession mirrors the package-level helper so the three pipeline
// stages hang off one value.
func (c *Callbacks) ShapeSession(session Session, token *TokenClaims) Session {
	return ShapeSession(session, token)
}
