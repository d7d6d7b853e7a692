package activities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// ActivityRepository defines the data access contract for activities.
// Every query is scoped by organization ID.
type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	FindByID(ctx context.Context, orgID, id string) (*Activity, error)
	Update(ctx context.Context, activity *Activity) error
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Activity, int, error)
	Count(ctx context.Context, orgID string) (int, error)
}

type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a repository backed by the given DB pool.
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

const activityColumns = `id, organization_id, user_id, activity_type, subject, description,
	contact_id, property_id, scheduled_at, completed_at, duration_minutes,
	gbp_post_id, gbp_review_id, gbp_message_id, tags, attachments, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*Activity, error) {
	activity := &Activity{}
	var tagsRaw, attachmentsRaw []byte
	err := row.Scan(
		&activity.ID, &activity.OrganizationID, &activity.UserID,
		&activity.ActivityType, &activity.Subject, &activity.Description,
		&activity.ContactID, &activity.PropertyID,
		&activity.ScheduledAt, &activity.CompletedAt, &activity.DurationMinutes,
		&activity.GBPPostID, &activity.GBPReviewID, &activity.GBPMessageID,
		&tagsRaw, &attachmentsRaw, &activity.CreatedAt, &activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &activity.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	if len(attachmentsRaw) > 0 {
		_ = json.Unmarshal(attachmentsRaw, &activity.Attachments)
	}
	return activity, nil
}

// Create inserts a new activity row.
func (r *activityRepository) Create(ctx context.Context, activity *Activity) error {
	tagsJSON, err := json.Marshal(activity.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	attachmentsJSON, err := json.Marshal(activity.Attachments)
	if err != nil {
		return fmt.Errorf("marshaling attachments: %w", err)
	}

	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		activity.ID, activity.OrganizationID, activity.UserID,
		activity.ActivityType, activity.Subject, activity.Description,
		activity.ContactID, activity.PropertyID,
		activity.ScheduledAt, activity.CompletedAt, activity.DurationMinutes,
		activity.GBPPostID, activity.GBPReviewID, activity.GBPMessageID,
		tagsJSON, attachmentsJSON, activity.CreatedAt, activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// FindByID retrieves an activity within the organization.
func (r *activityRepository) FindByID(ctx context.Context, orgID, id string) (*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ? AND organization_id = ?`

	activity, err := scanActivity(r.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("activity not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity by id: %w", err)
	}
	return activity, nil
}

// Update persists the full field set of an activity, scoped to its tenant.
func (r *activityRepository) Update(ctx context.Context, activity *Activity) error {
	tagsJSON, err := json.Marshal(activity.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	attachmentsJSON, err := json.Marshal(activity.Attachments)
	if err != nil {
		return fmt.Errorf("marshaling attachments: %w", err)
	}

	query := `UPDATE activities SET
		activity_type = ?, subject = ?, description = ?,
		contact_id = ?, property_id = ?,
		scheduled_at = ?, completed_at = ?, duration_minutes = ?,
		gbp_post_id = ?, gbp_review_id = ?, gbp_message_id = ?,
		tags = ?, attachments = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		activity.ActivityType, activity.Subject, activity.Description,
		activity.ContactID, activity.PropertyID,
		activity.ScheduledAt, activity.CompletedAt, activity.DurationMinutes,
		activity.GBPPostID, activity.GBPReviewID, activity.GBPMessageID,
		tagsJSON, attachmentsJSON, activity.UpdatedAt,
		activity.ID, activity.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("activity not found")
	}
	return nil
}

// Delete removes an activity within the organization.
func (r *activityRepository) Delete(ctx context.Context, orgID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND organization_id = ?`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("activity not found")
	}
	return nil
}

// List returns a page of the organization's activities plus the total count
// matching the filter.
func (r *activityRepository) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Activity, int, error) {
	where := `WHERE organization_id = ?`
	args := []any{orgID}

	if filter.ActivityType != "" {
		where += ` AND activity_type = ?`
		args = append(args, filter.ActivityType)
	}
	if filter.ContactID != "" {
		where += ` AND contact_id = ?`
		args = append(args, filter.ContactID)
	}
	if filter.PropertyID != "" {
		where += ` AND property_id = ?`
		args = append(args, filter.PropertyID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting activities: %w", err)
	}

	query := `SELECT ` + activityColumns + ` FROM activities ` + where +
		` ORDER BY ` + params.OrderClause() + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, *activity)
	}
	return activities, total, rows.Err()
}

// Count returns the organization's total activity count.
func (r *activityRepository) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE organization_id = ?`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return count, nil
}
