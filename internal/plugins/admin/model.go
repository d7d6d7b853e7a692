// Package admin exposes the super-admin surface: system stats, tenant and
// user listings, and rate limiter maintenance. Every route here sits behind
// the system-admin gate.
package admin

import (
	"time"
)

// SystemStats is the cross-tenant record census plus limiter occupancy.
type SystemStats struct {
	Organizations int `json:"organizations"`
	Users         int `json:"users"`
	Contacts      int `json:"contacts"`
	Properties    int `json:"properties"`
	Activities    int `json:"activities"`

	RateLimiter LimiterStats `json:"rate_limiter"`
}

// LimiterStats reports rate limiter cache occupancy.
type LimiterStats struct {
	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
}

// TenantCounts is the per-organization record census.
type TenantCounts struct {
	Users      int `json:"users"`
	Contacts   int `json:"contacts"`
	Properties int `json:"properties"`
	Activities int `json:"activities"`
}

// UserSummary is the admin view of a user account. No credential material.
type UserSummary struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Role           string     `json:"role"`
	OrganizationID string     `json:"organization_id"`
	IsSuperAdmin   bool       `json:"is_super_admin"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at"`
}
