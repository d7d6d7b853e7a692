// Package organizations manages tenant records. Every user belongs to one
// organization and every CRM record hangs off one, so this plugin is the
// root of the data model. The organization also carries the business fields
// that feed the Google Business Profile integration.
package organizations

import (
	"time"
)

// Business verification statuses, mirroring the GBP lifecycle.
const (
	StatusPending   = "pending"
	StatusVerified  = "verified"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

// Organization is a tenant. Address and category fields follow the GBP
// location shape so profile sync maps one to one.
type Organization struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`

	// GBP linkage
	GBPAccountID   *string `json:"gbp_account_id"`
	GBPLocationID  *string `json:"gbp_location_id"`
	BusinessStatus string  `json:"business_status"`

	// Address
	AddressLine1       *string `json:"address_line_1"`
	AddressLine2       *string `json:"address_line_2"`
	Locality           *string `json:"locality"`
	AdministrativeArea *string `json:"administrative_area"`
	PostalCode         *string `json:"postal_code"`
	CountryCode        string  `json:"country_code"`

	// Coordinates
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Categories
	PrimaryCategory      *string  `json:"primary_category"`
	AdditionalCategories []string `json:"additional_categories"`

	// JSON blobs
	BusinessHours  map[string]any `json:"business_hours"`
	SocialProfiles map[string]any `json:"social_profiles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateOrganizationRequest holds the editable organization fields. Pointer
// fields distinguish "not sent" from "clear this value".
type UpdateOrganizationRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	WebsiteURL  *string `json:"website_url" validate:"omitempty,url,max=500"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`

	AddressLine1       *string `json:"address_line_1" validate:"omitempty,max=255"`
	AddressLine2       *string `json:"address_line_2" validate:"omitempty,max=255"`
	Locality           *string `json:"locality" validate:"omitempty,max=100"`
	AdministrativeArea *string `json:"administrative_area" validate:"omitempty,max=100"`
	PostalCode         *string `json:"postal_code" validate:"omitempty,max=20"`
	CountryCode        *string `json:"country_code" validate:"omitempty,len=2"`

	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	PrimaryCategory      *string  `json:"primary_category" validate:"omitempty,max=255"`
	AdditionalCategories []string `json:"additional_categories" validate:"omitempty,max=20,dive,max=255"`

	BusinessHours  map[string]any `json:"business_hours"`
	SocialProfiles map[string]any `json:"social_profiles"`
}
