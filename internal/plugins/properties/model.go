// Package properties manages real-estate records scoped to an organization.
// Properties can reference contacts in the same organization as owner and
// manager.
package properties

import (
	"time"
)

// Property types.
const (
	TypeRetail      = "retail"
	TypeOffice      = "office"
	TypeIndustrial  = "industrial"
	TypeResidential = "residential"
	TypeMixedUse    = "mixed_use"
	TypeLand        = "land"
)

// Property is a real-estate record. The address is required; everything
// else is optional detail.
type Property struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	PropertyType   string  `json:"property_type"`

	AddressLine1       string  `json:"address_line_1"`
	AddressLine2       *string `json:"address_line_2"`
	Locality           string  `json:"locality"`
	AdministrativeArea string  `json:"administrative_area"`
	PostalCode         string  `json:"postal_code"`
	CountryCode        string  `json:"country_code"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	SquareFeet *int     `json:"square_feet"`
	LotSize    *float64 `json:"lot_size"`
	YearBuilt  *int     `json:"year_built"`

	PurchasePrice *float64 `json:"purchase_price"`
	CurrentValue  *float64 `json:"current_value"`

	OwnerContactID   *string `json:"owner_contact_id"`
	ManagerContactID *string `json:"manager_contact_id"`

	Tags         []string       `json:"tags"`
	CustomFields map[string]any `json:"custom_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePropertyRequest holds a new-property submission.
type CreatePropertyRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	PropertyType string  `json:"property_type" validate:"required,oneof=retail office industrial residential mixed_use land"`

	AddressLine1       string  `json:"address_line_1" validate:"required,max=255"`
	AddressLine2       *string `json:"address_line_2" validate:"omitempty,max=255"`
	Locality           string  `json:"locality" validate:"required,max=100"`
	AdministrativeArea string  `json:"administrative_area" validate:"required,max=100"`
	PostalCode         string  `json:"postal_code" validate:"required,max=20"`
	CountryCode        *string `json:"country_code" validate:"omitempty,len=2"`

	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	SquareFeet *int     `json:"square_feet" validate:"omitempty,gt=0"`
	LotSize    *float64 `json:"lot_size" validate:"omitempty,gt=0"`
	YearBuilt  *int     `json:"year_built" validate:"omitempty,gte=1800"`

	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gt=0"`
	CurrentValue  *float64 `json:"current_value" validate:"omitempty,gt=0"`

	OwnerContactID   *string `json:"owner_contact_id" validate:"omitempty,uuid"`
	ManagerContactID *string `json:"manager_contact_id" validate:"omitempty,uuid"`

	Tags         []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	CustomFields map[string]any `json:"custom_fields"`
}

// UpdatePropertyRequest holds a partial property update.
type UpdatePropertyRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	PropertyType *string `json:"property_type" validate:"omitempty,oneof=retail office industrial residential mixed_use land"`

	AddressLine1       *string `json:"address_line_1" validate:"omitempty,max=255"`
	AddressLine2       *string `json:"address_line_2" validate:"omitempty,max=255"`
	Locality           *string `json:"locality" validate:"omitempty,max=100"`
	AdministrativeArea *string `json:"administrative_area" validate:"omitempty,max=100"`
	PostalCode         *string `json:"postal_code" validate:"omitempty,max=20"`
	CountryCode        *string `json:"country_code" validate:"omitempty,len=2"`

	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	SquareFeet *int     `json:"square_feet" validate:"omitempty,gt=0"`
	LotSize    *float64 `json:"lot_size" validate:"omitempty,gt=0"`
	YearBuilt  *int     `json:"year_built" validate:"omitempty,gte=1800"`

	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gt=0"`
	CurrentValue  *float64 `json:"current_value" validate:"omitempty,gt=0"`

	OwnerContactID   *string `json:"owner_contact_id" validate:"omitempty,uuid"`
	ManagerContactID *string `json:"manager_contact_id" validate:"omitempty,uuid"`

	Tags         []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	CustomFields map[string]any `json:"custom_fields"`
}

// ListFilter narrows property listings.
type ListFilter struct {
	PropertyType string // "" means all types
	Tag          string
}
