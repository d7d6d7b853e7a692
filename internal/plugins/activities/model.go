// Package activities manages the CRM timeline: calls, emails, meetings,
// notes, tasks, and GBP sync events, scoped to an organization and
// optionally linked to a contact or property.
package activities

import (
	"time"
)

// Activity types.
const (
	TypeCall    = "call"
	TypeEmail   = "email"
	TypeMeeting = "meeting"
	TypeNote    = "note"
	TypeTask    = "task"
	TypeGBPSync = "gbp_sync"
)

// validTypes is the closed set accepted from clients. gbp_sync entries are
// only written by the GBP plugin, never submitted directly.
var validTypes = map[string]bool{
	TypeCall:    true,
	TypeEmail:   true,
	TypeMeeting: true,
	TypeNote:    true,
	TypeTask:    true,
	TypeGBPSync: true,
}

// Activity is one timeline entry.
type Activity struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	UserID         *string `json:"user_id"`

	ActivityType string  `json:"activity_type"`
	Subject      string  `json:"subject"`
	Description  *string `json:"description"`

	ContactID  *string `json:"contact_id"`
	PropertyID *string `json:"property_id"`

	ScheduledAt     *time.Time `json:"scheduled_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DurationMinutes *int       `json:"duration_minutes"`

	GBPPostID    *string `json:"gbp_post_id"`
	GBPReviewID  *string `json:"gbp_review_id"`
	GBPMessageID *string `json:"gbp_message_id"`

	Tags        []string       `json:"tags"`
	Attachments map[string]any `json:"attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completed reports whether the activity has been marked done.
func (a *Activity) Completed() bool {
	return a.CompletedAt != nil
}

// CreateActivityRequest holds a new-activity submission.
type CreateActivityRequest struct {
	ActivityType string  `json:"activity_type" validate:"required,oneof=call email meeting note task"`
	Subject      string  `json:"subject" validate:"required,min=1,max=500"`
	Description  *string `json:"description" validate:"omitempty,max=10000"`

	ContactID  *string `json:"contact_id" validate:"omitempty,uuid"`
	PropertyID *string `json:"property_id" validate:"omitempty,uuid"`

	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gt=0"`

	Tags        []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	Attachments map[string]any `json:"attachments"`
}

// UpdateActivityRequest holds a partial activity update.
type UpdateActivityRequest struct {
	ActivityType *string `json:"activity_type" validate:"omitempty,oneof=call email meeting note task"`
	Subject      *string `json:"subject" validate:"omitempty,min=1,max=500"`
	Description  *string `json:"description" validate:"omitempty,max=10000"`

	ContactID  *string `json:"contact_id" validate:"omitempty,uuid"`
	PropertyID *string `json:"property_id" validate:"omitempty,uuid"`

	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gt=0"`

	Tags        []string       `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	Attachments map[string]any `json:"attachments"`
}

// CompleteActivityRequest optionally overrides the completion timestamp.
type CompleteActivityRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

// ListFilter narrows activity listings.
type ListFilter struct {
	ActivityType string // "" means all types
	ContactID    string
	PropertyID   string
}
