// Package auth handles user identity for the CRM API: registration, login,
// bearer token issuance and validation, and the middleware that scopes every
// authenticated request to its organization.
//
// Access tokens are HS256 JWTs whose jti is backed by a Redis session, so a
// logout revokes the token before its expiry.
package auth

import (
	"time"
)

// User is a registered CRM user. Every user belongs to exactly one
// organization; all record access is scoped by that membership.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	PasswordHash   string     `json:"-"` // never exposed
	Role           string     `json:"role"`
	OrganizationID string     `json:"organization_id"`
	IsSuperAdmin   bool       `json:"is_super_admin"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// User roles within an organization.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// AuthContext is the per-request identity built by RequireAuth. Handlers take
// the organization scope from here and never from client input.
type AuthContext struct {
	User           *User
	OrganizationID string
}

// --- Request DTOs ---

// RegisterRequest holds a new-account submission. Registration creates the
// user's organization in the same transaction, with the user as its owner.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email,max=255"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
	FullName         string `json:"fullName" validate:"required,min=2,max=100"`
	OrganizationName string `json:"organizationName" validate:"required,min=2,max=255"`
}

// LoginRequest holds a login submission.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Service inputs ---

// RegisterInput is the validated input for creating an account.
type RegisterInput struct {
	Email            string
	Password         string
	FullName         string
	OrganizationName string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the revocable server-side half of an access token, stored in
// Redis under the token's jti. A token whose session is gone is rejected even
// if its signature and expiry still check out.
type Session struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}
