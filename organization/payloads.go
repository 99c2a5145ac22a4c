package organization

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// errPhoneInvalid is returned by the phone rule for unparseable or
// out-of-plan numbers.
var errPhoneInvalid = errors.New("must be a valid phone number")

// DefaultPhoneRegion is assumed when a phone number has no country prefix.
const DefaultPhoneRegion = "US"

// CreateOrganizationRequest is the payload for creating an organization.
type CreateOrganizationRequest struct {
	Name                string `json:"name" form:"name"`
	StripeCustomerID    string `json:"stripeCustomerId" form:"stripeCustomerId"`
	Address             string `json:"address" form:"address"`
	Phone               string `json:"phone" form:"phone"`
	Email               string `json:"email" form:"email"`
	Website             string `json:"website" form:"website"`
	LinkedInProfile     string `json:"linkedInProfile" form:"linkedInProfile"`
	InstagramProfile    string `json:"instagramProfile" form:"instagramProfile"`
	YouTubeChannel      string `json:"youTubeChannel" form:"youTubeChannel"`
	XProfile            string `json:"xProfile" form:"xProfile"`
	TikTokProfile       string `json:"tikTokProfile" form:"tikTokProfile"`
	FacebookPage        string `json:"facebookPage" form:"facebookPage"`
	CompletedOnboarding bool   `json:"completedOnboarding" form:"completedOnboarding"`
	BillingPlan         string `json:"billingPlan" form:"billingPlan"`
}

// Validate will run validation rules
func (r CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.StripeCustomerID,
			validation.Required,
		),
		validation.Field(
			&r.Email,
			is.Email,
		),
		validation.Field(
			&r.Website,
			is.URL,
		),
		validation.Field(
			&r.Phone,
			validation.By(validPhone),
		),
		validation.Field(
			&r.BillingPlan,
			validation.In(string(BillingPlanFree), string(BillingPlanPro)),
		),
	)
}

// Model builds an Organization from the payload, normalizing the phone
// number to E.164 when one is present.
func (r CreateOrganizationRequest) Model() *Organization {
	plan := BillingPlan(r.BillingPlan)
	if plan == "" {
		plan = BillingPlanFree
	}

	return &Organization{
		Name:                strings.TrimSpace(r.Name),
		StripeCustomerID:    strings.TrimSpace(r.StripeCustomerID),
		Address:             r.Address,
		Phone:               NormalizePhone(r.Phone),
		Email:               strings.ToLower(strings.TrimSpace(r.Email)),
		Website:             r.Website,
		LinkedInProfile:     r.LinkedInProfile,
		InstagramProfile:    r.InstagramProfile,
		YouTubeChannel:      r.YouTubeChannel,
		XProfile:            r.XProfile,
		TikTokProfile:       r.TikTokProfile,
		FacebookPage:        r.FacebookPage,
		CompletedOnboarding: r.CompletedOnboarding,
		BillingPlan:         plan,
	}
}

// UpdateOrganizationRequest is the payload for updating an organization.
// Pointer fields distinguish "not provided" from an explicit empty value.
type UpdateOrganizationRequest struct {
	Name                *string `json:"name" form:"name"`
	StripeCustomerID    *string `json:"stripeCustomerId" form:"stripeCustomerId"`
	Address             *string `json:"address" form:"address"`
	Phone               *string `json:"phone" form:"phone"`
	Email               *string `json:"email" form:"email"`
	Website             *string `json:"website" form:"website"`
	LinkedInProfile     *string `json:"linkedInProfile" form:"linkedInProfile"`
	InstagramProfile    *string `json:"instagramProfile" form:"instagramProfile"`
	YouTubeChannel      *string `json:"youTubeChannel" form:"youTubeChannel"`
	XProfile            *string `json:"xProfile" form:"xProfile"`
	TikTokProfile       *string `json:"tikTokProfile" form:"tikTokProfile"`
	FacebookPage        *string `json:"facebookPage" form:"facebookPage"`
	CompletedOnboarding *bool   `json:"completedOnboarding" form:"completedOnboarding"`
	BillingPlan         *string `json:"billingPlan" form:"billingPlan"`
}

// Validate will run validation rules
func (r UpdateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.StripeCustomerID,
			validation.NilOrNotEmpty,
		),
		validation.Field(
			&r.Email,
			is.Email,
		),
		validation.Field(
			&r.Website,
			is.URL,
		),
		validation.Field(
			&r.Phone,
			validation.By(validPhonePtr),
		),
		validation.Field(
			&r.BillingPlan,
			validation.In(string(BillingPlanFree), string(BillingPlanPro)),
		),
	)
}

// Apply copies the provided fields onto the organization.
func (r UpdateOrganizationRequest) Apply(org *Organization) {
	if r.Name != nil {
		org.Name = strings.TrimSpace(*r.Name)
	}
	if r.StripeCustomerID != nil {
		org.StripeCustomerID = strings.TrimSpace(*r.StripeCustomerID)
	}
	if r.Address != nil {
		org.Address = *r.Address
	}
	if r.Phone != nil {
		org.Phone = NormalizePhone(*r.Phone)
	}
	if r.Email != nil {
		org.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Website != nil {
		org.Website = *r.Website
	}
	if r.LinkedInProfile != nil {
		org.LinkedInProfile = *r.LinkedInProfile
	}
	if r.InstagramProfile != nil {
		org.InstagramProfile = *r.InstagramProfile
	}
	if r.YouTubeChannel != nil {
		org.YouTubeChannel = *r.YouTubeChannel
	}
	if r.XProfile != nil {
		org.XProfile = *r.XProfile
	}
	if r.TikTokProfile != nil {
		org.TikTokProfile = *r.TikTokProfile
	}
	if r.FacebookPage != nil {
		org.FacebookPage = *r.FacebookPage
	}
	if r.CompletedOnboarding != nil {
		org.CompletedOnboarding = *r.CompletedOnboarding
	}
	if r.BillingPlan != nil && *r.BillingPlan != "" {
		org.BillingPlan = BillingPlan(*r.BillingPlan)
	}
}

// NormalizePhone formats a phone number as E.164. Numbers that do not parse
// are returned trimmed but otherwise untouched so validation can reject them.
func NormalizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return ""
	}

	num, err := phonenumbers.Parse(trimmed, DefaultPhoneRegion)
	if err != nil {
		return trimmed
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func validPhone(value any) error {
	phone, _ := value.(string)
	return checkPhone(phone)
}

func validPhonePtr(value any) error {
	phone, _ := value.(*string)
	if phone == nil {
		return nil
	}
	return checkPhone(*phone)
}

func checkPhone(phone string) error {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return nil
	}

	num, err := phonenumbers.Parse(trimmed, DefaultPhoneRegion)
	if err != nil {
		return errPhoneInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return errPhoneInvalid
	}
	return nil
}
