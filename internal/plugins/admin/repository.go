package admin

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsRepository defines the cross-tenant census queries.
type StatsRepository interface {
	SystemCounts(ctx context.Context) (orgs, users, contacts, properties, activities int, err error)
	TenantCounts(ctx context.Context, orgID string) (*TenantCounts, error)
	ListUsers(ctx context.Context, offset, limit int) ([]UserSummary, int, error)
}

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a repository backed by the given DB pool.
func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

// SystemCounts returns whole-system record counts in one round trip.
func (r *statsRepository) SystemCounts(ctx context.Context) (orgs, users, contacts, properties, activities int, err error) {
	query := `SELECT
		(SELECT COUNT(*) FROM organizations),
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM contacts),
		(SELECT COUNT(*) FROM properties),
		(SELECT COUNT(*) FROM activities)`

	err = r.db.QueryRowContext(ctx, query).Scan(&orgs, &users, &contacts, &properties, &activities)
	if err != nil {
		err = fmt.Errorf("counting system records: %w", err)
	}
	return
}

// TenantCounts returns one organization's record counts.
func (r *statsRepository) TenantCounts(ctx context.Context, orgID string) (*TenantCounts, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users WHERE organization_id = ?),
		(SELECT COUNT(*) FROM contacts WHERE organization_id = ?),
		(SELECT COUNT(*) FROM properties WHERE organization_id = ?),
		(SELECT COUNT(*) FROM activities WHERE organization_id = ?)`

	counts := &TenantCounts{}
	err := r.db.QueryRowContext(ctx, query, orgID, orgID, orgID, orgID).Scan(
		&counts.Users, &counts.Contacts, &counts.Properties, &counts.Activities,
	)
	if err != nil {
		return nil, fmt.Errorf("counting tenant records: %w", err)
	}
	return counts, nil
}

// ListUsers returns a page of all user accounts plus the total count.
func (r *statsRepository) ListUsers(ctx context.Context, offset, limit int) ([]UserSummary, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	query := `SELECT id, email, full_name, role, organization_id, is_super_admin, created_at, last_login_at
		FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.OrganizationID,
			&u.IsSuperAdmin, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating users: %w", err)
	}
	return users, total, nil
}
