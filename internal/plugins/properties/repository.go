package properties

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// PropertyRepository defines the data access contract for properties.
// Every query is scoped by organization ID.
type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, orgID, id string) (*Property, error)
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error)
	Count(ctx context.Context, orgID string) (int, error)
}

type propertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a repository backed by the given DB pool.
func NewPropertyRepository(db *sql.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, organization_id, name, description, property_type,
	address_line_1, address_line_2, locality, administrative_area, postal_code, country_code,
	latitude, longitude, square_feet, lot_size, year_built,
	purchase_price, current_value, owner_contact_id, manager_contact_id,
	tags, custom_fields, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*Property, error) {
	property := &Property{}
	var tagsRaw, customRaw []byte
	err := row.Scan(
		&property.ID, &property.OrganizationID, &property.Name, &property.Description,
		&property.PropertyType,
		&property.AddressLine1, &property.AddressLine2, &property.Locality,
		&property.AdministrativeArea, &property.PostalCode, &property.CountryCode,
		&property.Latitude, &property.Longitude, &property.SquareFeet,
		&property.LotSize, &property.YearBuilt,
		&property.PurchasePrice, &property.CurrentValue,
		&property.OwnerContactID, &property.ManagerContactID,
		&tagsRaw, &customRaw, &property.CreatedAt, &property.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &property.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	if len(customRaw) > 0 {
		_ = json.Unmarshal(customRaw, &property.CustomFields)
	}
	return property, nil
}

// Create inserts a new property row.
func (r *propertyRepository) Create(ctx context.Context, property *Property) error {
	tagsJSON, err := json.Marshal(property.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	customJSON, err := json.Marshal(property.CustomFields)
	if err != nil {
		return fmt.Errorf("marshaling custom fields: %w", err)
	}

	query := `INSERT INTO properties (` + propertyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		property.ID, property.OrganizationID, property.Name, property.Description,
		property.PropertyType,
		property.AddressLine1, property.AddressLine2, property.Locality,
		property.AdministrativeArea, property.PostalCode, property.CountryCode,
		property.Latitude, property.Longitude, property.SquareFeet,
		property.LotSize, property.YearBuilt,
		property.PurchasePrice, property.CurrentValue,
		property.OwnerContactID, property.ManagerContactID,
		tagsJSON, customJSON, property.CreatedAt, property.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// FindByID retrieves a property within the organization.
func (r *propertyRepository) FindByID(ctx context.Context, orgID, id string) (*Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = ? AND organization_id = ?`

	property, err := scanProperty(r.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("property not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying property by id: %w", err)
	}
	return property, nil
}

// Update persists the full field set of a property, scoped to its tenant.
func (r *propertyRepository) Update(ctx context.Context, property *Property) error {
	tagsJSON, err := json.Marshal(property.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	customJSON, err := json.Marshal(property.CustomFields)
	if err != nil {
		return fmt.Errorf("marshaling custom fields: %w", err)
	}

	query := `UPDATE properties SET
		name = ?, description = ?, property_type = ?,
		address_line_1 = ?, address_line_2 = ?, locality = ?, administrative_area = ?,
		postal_code = ?, country_code = ?, latitude = ?, longitude = ?,
		square_feet = ?, lot_size = ?, year_built = ?,
		purchase_price = ?, current_value = ?,
		owner_contact_id = ?, manager_contact_id = ?,
		tags = ?, custom_fields = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		property.Name, property.Description, property.PropertyType,
		property.AddressLine1, property.AddressLine2, property.Locality,
		property.AdministrativeArea, property.PostalCode, property.CountryCode,
		property.Latitude, property.Longitude,
		property.SquareFeet, property.LotSize, property.YearBuilt,
		property.PurchasePrice, property.CurrentValue,
		property.OwnerContactID, property.ManagerContactID,
		tagsJSON, customJSON, property.UpdatedAt,
		property.ID, property.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("property not found")
	}
	return nil
}

// Delete removes a property within the organization.
func (r *propertyRepository) Delete(ctx context.Context, orgID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM properties WHERE id = ? AND organization_id = ?`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("property not found")
	}
	return nil
}

// List returns a page of the organization's properties plus the total count
// matching the filter.
func (r *propertyRepository) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error) {
	where := `WHERE organization_id = ?`
	args := []any{orgID}

	if filter.PropertyType != "" {
		where += ` AND property_type = ?`
		args = append(args, filter.PropertyType)
	}
	if filter.Tag != "" {
		where += ` AND JSON_CONTAINS(tags, JSON_QUOTE(?))`
		args = append(args, filter.Tag)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting properties: %w", err)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties ` + where +
		` ORDER BY ` + params.OrderClause() + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var properties []Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning property row: %w", err)
		}
		properties = append(properties, *property)
	}
	return properties, total, rows.Err()
}

// Count returns the organization's total property count.
func (r *propertyRepository) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties WHERE organization_id = ?`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return count, nil
}
