package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// ContactRepository defines the data access contract for contacts. Every
// query is scoped by organization ID; a contact in another tenant behaves
// exactly like a contact that does not exist.
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, orgID, id string) (*Contact, error)
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Contact, int, error)
	Search(ctx context.Context, orgID, query string, params response.ListParams) ([]Contact, int, error)
	Count(ctx context.Context, orgID string) (int, error)
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a repository backed by the given DB pool.
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, organization_id, contact_type,
	first_name, last_name, company_name, title, email, phone,
	address_line_1, address_line_2, locality, administrative_area, postal_code, country_code,
	website_url, social_profiles, notes, tags, company_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*Contact, error) {
	contact := &Contact{}
	var socialRaw, tagsRaw []byte
	err := row.Scan(
		&contact.ID, &contact.OrganizationID, &contact.ContactType,
		&contact.FirstName, &contact.LastName, &contact.CompanyName,
		&contact.Title, &contact.Email, &contact.Phone,
		&contact.AddressLine1, &contact.AddressLine2, &contact.Locality,
		&contact.AdministrativeArea, &contact.PostalCode, &contact.CountryCode,
		&contact.WebsiteURL, &socialRaw, &contact.Notes, &tagsRaw,
		&contact.CompanyID, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(socialRaw) > 0 {
		_ = json.Unmarshal(socialRaw, &contact.SocialProfiles)
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &contact.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	return contact, nil
}

// Create inserts a new contact row.
func (r *contactRepository) Create(ctx context.Context, contact *Contact) error {
	socialJSON, err := json.Marshal(contact.SocialProfiles)
	if err != nil {
		return fmt.Errorf("marshaling social profiles: %w", err)
	}
	tagsJSON, err := json.Marshal(contact.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `INSERT INTO contacts (` + contactColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		contact.ID, contact.OrganizationID, contact.ContactType,
		contact.FirstName, contact.LastName, contact.CompanyName,
		contact.Title, contact.Email, contact.Phone,
		contact.AddressLine1, contact.AddressLine2, contact.Locality,
		contact.AdministrativeArea, contact.PostalCode, contact.CountryCode,
		contact.WebsiteURL, socialJSON, contact.Notes, tagsJSON,
		contact.CompanyID, contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	return nil
}

// FindByID retrieves a contact within the organization.
// Returns apperror.NotFound for a missing ID or one owned by another tenant.
func (r *contactRepository) FindByID(ctx context.Context, orgID, id string) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND organization_id = ?`

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact by id: %w", err)
	}
	return contact, nil
}

// Update persists the full field set of a contact, scoped to its tenant.
func (r *contactRepository) Update(ctx context.Context, contact *Contact) error {
	socialJSON, err := json.Marshal(contact.SocialProfiles)
	if err != nil {
		return fmt.Errorf("marshaling social profiles: %w", err)
	}
	tagsJSON, err := json.Marshal(contact.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `UPDATE contacts SET
		contact_type = ?, first_name = ?, last_name = ?, company_name = ?,
		title = ?, email = ?, phone = ?,
		address_line_1 = ?, address_line_2 = ?, locality = ?, administrative_area = ?,
		postal_code = ?, country_code = ?, website_url = ?, social_profiles = ?,
		notes = ?, tags = ?, company_id = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		contact.ContactType, contact.FirstName, contact.LastName, contact.CompanyName,
		contact.Title, contact.Email, contact.Phone,
		contact.AddressLine1, contact.AddressLine2, contact.Locality,
		contact.AdministrativeArea, contact.PostalCode, contact.CountryCode,
		contact.WebsiteURL, socialJSON, contact.Notes, tagsJSON, contact.CompanyID,
		contact.UpdatedAt,
		contact.ID, contact.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}

// Delete removes a contact within the organization.
func (r *contactRepository) Delete(ctx context.Context, orgID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND organization_id = ?`, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}

// List returns a page of the organization's contacts plus the total count
// matching the filter.
func (r *contactRepository) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Contact, int, error) {
	where := `WHERE organization_id = ?`
	args := []any{orgID}

	if filter.ContactType != "" {
		where += ` AND contact_type = ?`
		args = append(args, filter.ContactType)
	}
	if filter.Tag != "" {
		where += ` AND JSON_CONTAINS(tags, JSON_QUOTE(?))`
		args = append(args, filter.Tag)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting contacts: %w", err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts ` + where +
		` ORDER BY ` + params.OrderClause() + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning contact row: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	return contacts, total, rows.Err()
}

// Search matches the query against names, company, email, and phone within
// the organization.
func (r *contactRepository) Search(ctx context.Context, orgID, query string, params response.ListParams) ([]Contact, int, error) {
	pattern := "%" + query + "%"
	where := `WHERE organization_id = ? AND (
		first_name LIKE ? OR last_name LIKE ? OR company_name LIKE ?
		OR email LIKE ? OR phone LIKE ?
		OR CONCAT_WS(' ', first_name, last_name) LIKE ?)`
	args := []any{orgID, pattern, pattern, pattern, pattern, pattern, pattern}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting search results: %w", err)
	}

	sqlQuery := `SELECT ` + contactColumns + ` FROM contacts ` + where +
		` ORDER BY ` + params.OrderClause() + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning contact row: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	return contacts, total, rows.Err()
}

// Count returns the organization's total contact count. Used by the admin
// stats surface.
func (r *contactRepository) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE organization_id = ?`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return count, nil
}
