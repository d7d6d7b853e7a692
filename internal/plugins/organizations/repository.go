package organizations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
)

// OrganizationRepository defines the data access contract for tenants.
type OrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error

	// Admin surface.
	List(ctx context.Context, offset, limit int) ([]Organization, int, error)
	Count(ctx context.Context) (int, error)
}

type organizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a repository backed by the given DB pool.
func NewOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

const orgColumns = `id, name, description, website_url, phone, email,
	gbp_account_id, gbp_location_id, business_status,
	address_line_1, address_line_2, locality, administrative_area, postal_code, country_code,
	latitude, longitude, primary_category, additional_categories,
	business_hours, social_profiles, created_at, updated_at`

type orgScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row orgScanner) (*Organization, error) {
	org := &Organization{}
	var categoriesRaw, hoursRaw, socialRaw []byte
	err := row.Scan(
		&org.ID, &org.Name, &org.Description, &org.WebsiteURL, &org.Phone, &org.Email,
		&org.GBPAccountID, &org.GBPLocationID, &org.BusinessStatus,
		&org.AddressLine1, &org.AddressLine2, &org.Locality, &org.AdministrativeArea,
		&org.PostalCode, &org.CountryCode,
		&org.Latitude, &org.Longitude, &org.PrimaryCategory, &categoriesRaw,
		&hoursRaw, &socialRaw, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(categoriesRaw) > 0 {
		if err := json.Unmarshal(categoriesRaw, &org.AdditionalCategories); err != nil {
			return nil, fmt.Errorf("unmarshaling categories: %w", err)
		}
	}
	if len(hoursRaw) > 0 {
		_ = json.Unmarshal(hoursRaw, &org.BusinessHours)
	}
	if len(socialRaw) > 0 {
		_ = json.Unmarshal(socialRaw, &org.SocialProfiles)
	}
	return org, nil
}

// FindByID retrieves an organization by UUID.
// Returns apperror.NotFound if no organization exists with this ID.
func (r *organizationRepository) FindByID(ctx context.Context, id string) (*Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = ?`

	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("organization not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying organization by id: %w", err)
	}
	return org, nil
}

// Update persists the full editable field set of an organization.
func (r *organizationRepository) Update(ctx context.Context, org *Organization) error {
	categoriesJSON, err := json.Marshal(org.AdditionalCategories)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}
	hoursJSON, err := json.Marshal(org.BusinessHours)
	if err != nil {
		return fmt.Errorf("marshaling business hours: %w", err)
	}
	socialJSON, err := json.Marshal(org.SocialProfiles)
	if err != nil {
		return fmt.Errorf("marshaling social profiles: %w", err)
	}

	query := `UPDATE organizations SET
		name = ?, description = ?, website_url = ?, phone = ?, email = ?,
		address_line_1 = ?, address_line_2 = ?, locality = ?, administrative_area = ?,
		postal_code = ?, country_code = ?, latitude = ?, longitude = ?,
		primary_category = ?, additional_categories = ?,
		business_hours = ?, social_profiles = ?, updated_at = NOW()
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		org.Name, org.Description, org.WebsiteURL, org.Phone, org.Email,
		org.AddressLine1, org.AddressLine2, org.Locality, org.AdministrativeArea,
		org.PostalCode, org.CountryCode, org.Latitude, org.Longitude,
		org.PrimaryCategory, categoriesJSON, hoursJSON, socialJSON,
		org.ID,
	)
	if err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("organization not found")
	}
	return nil
}

// UpdateGBPLink sets the GBP account/location binding and status. Used by
// the GBP plugin after a successful profile link or sync.
func (r *organizationRepository) UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET gbp_account_id = ?, gbp_location_id = ?,
		 business_status = ?, updated_at = NOW() WHERE id = ?`,
		accountID, locationID, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating gbp link: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("organization not found")
	}
	return nil
}

// List returns a page of organizations ordered by creation date, with the
// total count for pagination.
func (r *organizationRepository) List(ctx context.Context, offset, limit int) ([]Organization, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orgColumns + ` FROM organizations
		ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning organization row: %w", err)
		}
		orgs = append(orgs, *org)
	}
	return orgs, total, rows.Err()
}

// Count returns the total number of organizations.
func (r *organizationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting organizations: %w", err)
	}
	return count, nil
}
