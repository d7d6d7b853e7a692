package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
)

// UserRepository defines the data access contract for user records.
// All SQL lives in the concrete implementation.
type UserRepository interface {
	// CreateWithOrganization inserts the user's organization and the user
	// itself in one transaction. user.OrganizationID is filled in before
	// the insert.
	CreateWithOrganization(ctx context.Context, user *User, orgID, orgName string) error

	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, full_name, password_hash, role, organization_id,
	is_super_admin, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.OrganizationID,
		&user.IsSuperAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateWithOrganization creates the tenant and its first user atomically so
// a failed user insert never leaves an empty orphan organization behind.
func (r *userRepository) CreateWithOrganization(ctx context.Context, user *User, orgID, orgName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at, updated_at) VALUES (?, ?, NOW(), NOW())`,
		orgID, orgName,
	)
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}

	user.OrganizationID = orgID
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, role, organization_id,
		                    is_super_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.OrganizationID,
		user.IsSuperAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FindByID retrieves a user by UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email address.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// EmailExists returns true if a user with the given email already exists.
// Checked before hashing during registration.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps last_login_at for the given user.
func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}
