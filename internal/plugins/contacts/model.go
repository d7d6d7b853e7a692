// Package contacts manages the CRM contact book: people and companies,
// scoped to the caller's organization. People can be linked to a company
// contact in the same organization.
package contacts

import (
	"time"
)

// Contact types.
const (
	TypePerson  = "person"
	TypeCompany = "company"
)

// Contact is a person or company record. A person has at least one of
// first/last name; a company has a company name.
type Contact struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	ContactType    string `json:"contact_type"`

	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	CompanyName *string `json:"company_name"`
	Title       *string `json:"title"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`

	AddressLine1       *string `json:"address_line_1"`
	AddressLine2       *string `json:"address_line_2"`
	Locality           *string `json:"locality"`
	AdministrativeArea *string `json:"administrative_area"`
	PostalCode         *string `json:"postal_code"`
	CountryCode        string  `json:"country_code"`

	WebsiteURL     *string        `json:"website_url"`
	SocialProfiles map[string]any `json:"social_profiles"`
	Notes          *string        `json:"notes"`
	Tags           []string       `json:"tags"`

	// CompanyID links a person to a company contact.
	CompanyID *string `json:"company_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the human-readable name for either contact type.
func (c *Contact) DisplayName() string {
	if c.ContactType == TypeCompany {
		if c.CompanyName != nil {
			return *c.CompanyName
		}
		return ""
	}
	var first, last string
	if c.FirstName != nil {
		first = *c.FirstName
	}
	if c.LastName != nil {
		last = *c.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// CreateContactRequest holds a new-contact submission.
type CreateContactRequest struct {
	ContactType string `json:"contact_type" validate:"required,oneof=person company"`

	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`

	AddressLine1       *string `json:"address_line_1" validate:"omitempty,max=255"`
	AddressLine2       *string `json:"address_line_2" validate:"omitempty,max=255"`
	Locality           *string `json:"locality" validate:"omitempty,max=100"`
	AdministrativeArea *string `json:"administrative_area" validate:"omitempty,max=100"`
	PostalCode         *string `json:"postal_code" validate:"omitempty,max=20"`
	CountryCode        *string `json:"country_code" validate:"omitempty,len=2"`

	WebsiteURL     *string        `json:"website_url" validate:"omitempty,url,max=500"`
	SocialProfiles map[string]any `json:"social_profiles"`
	Notes          *string        `json:"notes" validate:"omitempty,max=10000"`
	Tags           []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`

	CompanyID *string `json:"company_id" validate:"omitempty,uuid"`
}

// UpdateContactRequest holds a partial contact update. Pointer fields
// distinguish "not sent" from "clear this value".
type UpdateContactRequest struct {
	ContactType *string `json:"contact_type" validate:"omitempty,oneof=person company"`

	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`

	AddressLine1       *string `json:"address_line_1" validate:"omitempty,max=255"`
	AddressLine2       *string `json:"address_line_2" validate:"omitempty,max=255"`
	Locality           *string `json:"locality" validate:"omitempty,max=100"`
	AdministrativeArea *string `json:"administrative_area" validate:"omitempty,max=100"`
	PostalCode         *string `json:"postal_code" validate:"omitempty,max=20"`
	CountryCode        *string `json:"country_code" validate:"omitempty,len=2"`

	WebsiteURL     *string        `json:"website_url" validate:"omitempty,url,max=500"`
	SocialProfiles map[string]any `json:"social_profiles"`
	Notes          *string        `json:"notes" validate:"omitempty,max=10000"`
	Tags           []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`

	CompanyID *string `json:"company_id" validate:"omitempty,uuid"`
}

// ListFilter narrows contact listings.
type ListFilter struct {
	ContactType string // "" means both types
	Tag         string // "" means no tag filter
}
