package organization

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BillingPlan is the subscription tier an organization is on.
type BillingPlan string

const (
	BillingPlanFree BillingPlan = "free"
	BillingPlanPro  BillingPlan = "pro"
)

// Organization is an accelerator or incubator tenant. Users join through
// memberships and startups belong to exactly one organization.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`

	ID                  uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	StripeCustomerID    string      `bun:"stripe_customer_id,notnull" json:"stripeCustomerId,omitempty"`
	Name                string      `bun:"name,notnull" json:"name,omitempty"`
	Address             string      `bun:"address" json:"address,omitempty"`
	Phone               string      `bun:"phone" json:"phone,omitempty"`
	Email               string      `bun:"email" json:"email,omitempty"`
	Website             string      `bun:"website" json:"website,omitempty"`
	LinkedInProfile     string      `bun:"linked_in_profile" json:"linkedInProfile,omitempty"`
	InstagramProfile    string      `bun:"instagram_profile" json:"instagramProfile,omitempty"`
	YouTubeChannel      string      `bun:"you_tube_channel" json:"youTubeChannel,omitempty"`
	XProfile            string      `bun:"x_profile" json:"xProfile,omitempty"`
	TikTokProfile       string      `bun:"tik_tok_profile" json:"tikTokProfile,omitempty"`
	FacebookPage        string      `bun:"facebook_page" json:"facebookPage,omitempty"`
	CompletedOnboarding bool        `bun:"completed_onboarding" json:"completedOnboarding"`
	BillingPlan         BillingPlan `bun:"billing_plan,notnull,default:'free'" json:"billingPlan,omitempty"`
	CreatedAt           *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt           *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`

	Memberships []*Membership `bun:"rel:has-many,join:id=organization_id" json:"users,omitempty"`
	Startups    []*Startup    `bun:"rel:has-many,join:id=organization_id" json:"startups,omitempty"`
}

// MemberRole is a user's role inside an organization.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Membership links a user to an organization with a role.
type Membership struct {
	bun.BaseModel `bun:"table:memberships,alias:mbr"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OrganizationID uuid.UUID  `bun:"organization_id,notnull,type:uuid" json:"organizationId,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"userId,omitempty"`
	Role           MemberRole `bun:"role,notnull,default:'member'" json:"role,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
}

// Startup is a company coached by an organization.
type Startup struct {
	bun.BaseModel `bun:"table:startups,alias:stp"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OrganizationID uuid.UUID  `bun:"organization_id,notnull,type:uuid" json:"organizationId,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Stage          string     `bun:"stage" json:"stage,omitempty"`
	Description    string     `bun:"description" json:"description,omitempty"`
	FoundedDate    *time.Time `bun:"founded_date,nullzero" json:"foundedDate,omitempty"`
	Location       string     `bun:"location" json:"location,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}
