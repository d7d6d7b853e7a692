package gbp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/infinitas/crm/internal/apperror"
)

// ProfileRepository defines data access for GBP profile bindings. Each
// organization holds at most one profile row.
type ProfileRepository interface {
	FindByOrganization(ctx context.Context, orgID string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
	UpdateTokens(ctx context.Context, orgID string, accessToken string, refreshToken *string, expiresAt time.Time) error
	UpdateSyncState(ctx context.Context, orgID string, profileData map[string]any, syncedAt time.Time) error
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a repository backed by the given DB pool.
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, organization_id, account_id, location_id, account_name, location_name,
	verification_status, last_sync_at, sync_enabled,
	access_token, refresh_token, token_expires_at,
	profile_data, created_at, updated_at`

// FindByOrganization retrieves the organization's GBP profile binding.
func (r *profileRepository) FindByOrganization(ctx context.Context, orgID string) (*Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM gbp_profiles WHERE organization_id = ?", profileColumns)

	profile := &Profile{}
	var dataRaw []byte
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&profile.ID, &profile.OrganizationID,
		&profile.AccountID, &profile.LocationID, &profile.AccountName, &profile.LocationName,
		&profile.VerificationStatus, &profile.LastSyncAt, &profile.SyncEnabled,
		&profile.AccessToken, &profile.RefreshToken, &profile.TokenExpiresAt,
		&dataRaw, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("no Google Business Profile linked")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("finding gbp profile: %w", err))
	}
	if len(dataRaw) > 0 {
		if err := json.Unmarshal(dataRaw, &profile.ProfileData); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("unmarshaling profile data: %w", err))
		}
	}
	return profile, nil
}

// Create inserts the profile row for an organization.
func (r *profileRepository) Create(ctx context.Context, profile *Profile) error {
	dataJSON, err := marshalNullable(profile.ProfileData)
	if err != nil {
		return fmt.Errorf("marshaling profile data: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO gbp_profiles (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", profileColumns)
	_, err = r.db.ExecContext(ctx, query,
		profile.ID, profile.OrganizationID,
		profile.AccountID, profile.LocationID, profile.AccountName, profile.LocationName,
		profile.VerificationStatus, profile.LastSyncAt, profile.SyncEnabled,
		profile.AccessToken, profile.RefreshToken, profile.TokenExpiresAt,
		dataJSON, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting gbp profile: %w", err)
	}
	return nil
}

// Update persists the profile's mutable fields, scoped to its tenant.
func (r *profileRepository) Update(ctx context.Context, profile *Profile) error {
	dataJSON, err := marshalNullable(profile.ProfileData)
	if err != nil {
		return fmt.Errorf("marshaling profile data: %w", err)
	}

	query := `UPDATE gbp_profiles SET
		account_id = ?, location_id = ?, account_name = ?, location_name = ?,
		verification_status = ?, last_sync_at = ?, sync_enabled = ?,
		profile_data = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		profile.AccountID, profile.LocationID, profile.AccountName, profile.LocationName,
		profile.VerificationStatus, profile.LastSyncAt, profile.SyncEnabled,
		dataJSON, profile.UpdatedAt,
		profile.ID, profile.OrganizationID,
	)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating gbp profile: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating gbp profile: %w", err))
	}
	if rows == 0 {
		return apperror.NewNotFound("no Google Business Profile linked")
	}
	return nil
}

// UpdateTokens replaces the stored OAuth credentials.
func (r *profileRepository) UpdateTokens(ctx context.Context, orgID string, accessToken string, refreshToken *string, expiresAt time.Time) error {
	query := `UPDATE gbp_profiles SET access_token = ?, refresh_token = ?, token_expires_at = ?, updated_at = ?
		WHERE organization_id = ?`

	result, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, time.Now().UTC(), orgID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating gbp tokens: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating gbp tokens: %w", err))
	}
	if rows == 0 {
		return apperror.NewNotFound("no Google Business Profile linked")
	}
	return nil
}

// UpdateSyncState stores the refreshed profile data cache and sync timestamp.
func (r *profileRepository) UpdateSyncState(ctx context.Context, orgID string, profileData map[string]any, syncedAt time.Time) error {
	dataJSON, err := marshalNullable(profileData)
	if err != nil {
		return fmt.Errorf("marshaling profile data: %w", err)
	}

	query := `UPDATE gbp_profiles SET profile_data = ?, last_sync_at = ?, updated_at = ?
		WHERE organization_id = ?`

	if _, err := r.db.ExecContext(ctx, query, dataJSON, syncedAt, syncedAt, orgID); err != nil {
		return apperror.NewInternal(fmt.Errorf("updating gbp sync state: %w", err))
	}
	return nil
}

func marshalNullable(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
