package activities

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// ActivityService handles business logic for activity operations.
type ActivityService interface {
	Create(ctx context.Context, orgID, userID string, req CreateActivityRequest) (*Activity, error)
	GetByID(ctx context.Context, orgID, id string) (*Activity, error)
	Update(ctx context.Context, orgID, id string, req UpdateActivityRequest) (*Activity, error)
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Activity, int, error)

	// Complete stamps completed_at. Completing an already-completed
	// activity is a conflict, not an overwrite.
	Complete(ctx context.Context, orgID, id string, req CompleteActivityRequest) (*Activity, error)

	// RecordSync writes a gbp_sync timeline entry. Called by the GBP
	// plugin after a profile sync; not reachable from client input.
	RecordSync(ctx context.Context, orgID, userID, subject string, attachments map[string]any) (*Activity, error)
}

type activityService struct {
	repo ActivityRepository
}

// NewActivityService creates an activity service.
func NewActivityService(repo ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

// Create creates a new activity in the organization, attributed to the
// calling user.
func (s *activityService) Create(ctx context.Context, orgID, userID string, req CreateActivityRequest) (*Activity, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, apperror.NewBadRequest("activity subject is required")
	}

	now := time.Now().UTC()
	activity := &Activity{
		ID:              uuid.NewString(),
		OrganizationID:  orgID,
		UserID:          &userID,
		ActivityType:    req.ActivityType,
		Subject:         subject,
		Description:     req.Description,
		ContactID:       req.ContactID,
		PropertyID:      req.PropertyID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Tags:            req.Tags,
		Attachments:     req.Attachments,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if !validTypes[activity.ActivityType] || activity.ActivityType == TypeGBPSync {
		return nil, apperror.NewBadRequest("invalid activity type")
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating activity: %w", err))
	}

	slog.Info("activity created",
		slog.String("activity_id", activity.ID),
		slog.String("organization_id", orgID),
		slog.String("type", activity.ActivityType),
	)

	return activity, nil
}

// GetByID retrieves an activity within the organization.
func (s *activityService) GetByID(ctx context.Context, orgID, id string) (*Activity, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

// Update applies a partial update to an activity within the organization.
func (s *activityService) Update(ctx context.Context, orgID, id string, req UpdateActivityRequest) (*Activity, error) {
	activity, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.ActivityType != nil {
		activity.ActivityType = *req.ActivityType
	}
	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject == "" {
			return nil, apperror.NewBadRequest("activity subject cannot be empty")
		}
		activity.Subject = subject
	}
	if req.Description != nil {
		activity.Description = req.Description
	}
	if req.ContactID != nil {
		if *req.ContactID == "" {
			activity.ContactID = nil
		} else {
			activity.ContactID = req.ContactID
		}
	}
	if req.PropertyID != nil {
		if *req.PropertyID == "" {
			activity.PropertyID = nil
		} else {
			activity.PropertyID = req.PropertyID
		}
	}
	if req.ScheduledAt != nil {
		activity.ScheduledAt = req.ScheduledAt
	}
	if req.DurationMinutes != nil {
		activity.DurationMinutes = req.DurationMinutes
	}
	if req.Tags != nil {
		activity.Tags = req.Tags
	}
	if req.Attachments != nil {
		activity.Attachments = req.Attachments
	}

	activity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Delete removes an activity within the organization.
func (s *activityService) Delete(ctx context.Context, orgID, id string) error {
	return s.repo.Delete(ctx, orgID, id)
}

// List returns a page of the organization's activities.
func (s *activityService) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Activity, int, error) {
	return s.repo.List(ctx, orgID, filter, params)
}

// Complete marks an activity done.
func (s *activityService) Complete(ctx context.Context, orgID, id string, req CompleteActivityRequest) (*Activity, error) {
	activity, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if activity.Completed() {
		return nil, apperror.NewConflict("activity is already completed")
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != nil {
		completedAt = req.CompletedAt.UTC()
	}
	activity.CompletedAt = &completedAt
	activity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, err
	}

	slog.Info("activity completed",
		slog.String("activity_id", activity.ID),
		slog.String("organization_id", orgID),
	)

	return activity, nil
}

// RecordSync writes the gbp_sync timeline entry for a finished profile sync.
func (s *activityService) RecordSync(ctx context.Context, orgID, userID, subject string, attachments map[string]any) (*Activity, error) {
	now := time.Now().UTC()
	activity := &Activity{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		ActivityType:   TypeGBPSync,
		Subject:        subject,
		CompletedAt:    &now,
		Attachments:    attachments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if userID != "" {
		activity.UserID = &userID
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("recording sync activity: %w", err))
	}
	return activity, nil
}
