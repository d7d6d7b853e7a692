// Package gbp manages the Google Business Profile link for an
// organization: one profile row per tenant holding GBP identifiers,
// verification state, OAuth credentials, and a cached copy of the
// remote profile data.
package gbp

import (
	"time"
)

// Verification statuses mirrored onto the organization record.
const (
	StatusPending   = "pending"
	StatusVerified  = "verified"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

// Profile is an organization's Google Business Profile binding.
// OAuth tokens never leave the server.
type Profile struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`

	AccountID    string  `json:"account_id"`
	LocationID   *string `json:"location_id"`
	AccountName  *string `json:"account_name"`
	LocationName *string `json:"location_name"`

	VerificationStatus string     `json:"verification_status"`
	LastSyncAt         *time.Time `json:"last_sync_at"`
	SyncEnabled        bool       `json:"sync_enabled"`

	AccessToken    *string    `json:"-"`
	RefreshToken   *string    `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`

	ProfileData map[string]any `json:"profile_data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertProfileRequest creates or updates the organization's GBP binding.
type UpsertProfileRequest struct {
	AccountID    string  `json:"account_id" validate:"required,min=1,max=255"`
	LocationID   *string `json:"location_id" validate:"omitempty,max=255"`
	AccountName  *string `json:"account_name" validate:"omitempty,max=255"`
	LocationName *string `json:"location_name" validate:"omitempty,max=255"`

	VerificationStatus *string `json:"verification_status" validate:"omitempty,oneof=pending verified suspended disabled"`
	SyncEnabled        *bool   `json:"sync_enabled"`
}

// StoreTokensRequest replaces the profile's OAuth credentials after an
// authorization flow.
type StoreTokensRequest struct {
	AccessToken    string    `json:"access_token" validate:"required"`
	RefreshToken   *string   `json:"refresh_token"`
	TokenExpiresAt time.Time `json:"token_expires_at" validate:"required"`
}

// SyncResult reports one finished profile sync.
type SyncResult struct {
	SyncedAt time.Time `json:"synced_at"`
	Profile  *Profile  `json:"profile"`
}
