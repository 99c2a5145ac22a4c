package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxNameLength is the longest user or profile name we let through the
// sign-in stage. Longer names are head-truncated, not ellipsized.
const MaxNameLength = 64

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name           string         `bun:"name,notnull" json:"name,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	EmailVerified  *time.Time     `bun:"email_verified,nullzero" json:"email_verified,omitempty"`
	Image          string         `bun:"image" json:"image,omitempty"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	LastLoginAt    *time.Time     `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
	Accounts       []*Account     `bun:"rel:has-many,join:id=user_id" json:"accounts,omitempty"`
	Authenticators []*AuthenticatorApp `bun:"rel:has-many,join:id=user_id" json:"authenticators,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Account is a linked external identity: the credentials method or an
// OAuth provider identity, owned by a user.
type Account struct {
	bun.BaseModel     `bun:"table:accounts,alias:acc"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID            uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Type              AccountType `bun:"type,notnull" json:"type,omitempty"`
	Provider          string     `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderAccountID string     `bun:"provider_account_id,notnull" json:"provider_account_id,omitempty"`
	AccessToken       string     `bun:"access_token" json:"-"`
	RefreshToken      string     `bun:"refresh_token" json:"-"`
	ExpiresAt         *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	Scope             string     `bun:"scope" json:"scope,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AuthenticatorApp is a per-user MFA enrollment. Existence of at least one
// record means the user must pass a TOTP challenge before sign-in completes.
// The TOTP secret handling itself lives with the challenge flow, not here.
type AuthenticatorApp struct {
	bun.BaseModel `bun:"table:authenticator_apps,alias:mfa"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	AccountName   string     `bun:"account_name,notnull" json:"account_name,omitempty"`
	Issuer        string     `bun:"issuer,notnull" json:"issuer,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Profile carries the identity claims an OAuth provider presented for the
// attempt in progress. It is transient, per-request data.
type Profile struct {
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Raw           map[string]any `json:"-"`
}

// TruncateName head-truncates a name to MaxNameLength characters. Strings
// at or under the limit come back unchanged.
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxNameLength {
		return name
	}
	return string(runes[:MaxNameLength])
}
