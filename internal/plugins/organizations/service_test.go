package organizations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinitas/crm/internal/apperror"
)

// --- Mock repository ---

type mockOrgRepo struct {
	findByIDFn func(ctx context.Context, id string) (*Organization, error)
	updateFn   func(ctx context.Context, org *Organization) error
}

func (m *mockOrgRepo) FindByID(ctx context.Context, id string) (*Organization, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("organization not found")
}

func (m *mockOrgRepo) Update(ctx context.Context, org *Organization) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, org)
	}
	return nil
}

func (m *mockOrgRepo) UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error {
	return nil
}

func (m *mockOrgRepo) List(ctx context.Context, offset, limit int) ([]Organization, int, error) {
	return nil, 0, nil
}

func (m *mockOrgRepo) Count(ctx context.Context) (int, error) {
	return 0, nil
}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Fatalf("expected code %d, got %d (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func strPtr(s string) *string { return &s }

func seededOrg() *Organization {
	desc := "Full-service realty"
	return &Organization{
		ID:             "org-1",
		Name:           "Acme Realty",
		Description:    &desc,
		BusinessStatus: StatusVerified,
		CountryCode:    "US",
		CreatedAt:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpdate_PartialFieldsOnly(t *testing.T) {
	var saved *Organization
	repo := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*Organization, error) {
			return seededOrg(), nil
		},
		updateFn: func(ctx context.Context, org *Organization) error {
			saved = org
			return nil
		},
	}
	service := NewOrganizationService(repo)

	org, err := service.Update(context.Background(), "org-1", UpdateOrganizationRequest{
		Phone: strPtr("+1 555 0100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repo.Update to be called")
	}
	if org.Phone == nil || *org.Phone != "+1 555 0100" {
		t.Errorf("phone not updated: %v", org.Phone)
	}
	if org.Name != "Acme Realty" {
		t.Error("untouched name must be preserved")
	}
	if org.Description == nil {
		t.Error("untouched description must be preserved")
	}
}

func TestUpdate_EmptyStringClearsField(t *testing.T) {
	repo := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*Organization, error) {
			return seededOrg(), nil
		},
	}
	service := NewOrganizationService(repo)

	org, err := service.Update(context.Background(), "org-1", UpdateOrganizationRequest{
		Description: strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Description != nil {
		t.Errorf("expected description cleared, got %q", *org.Description)
	}
}

func TestUpdate_BlankNameRejected(t *testing.T) {
	repo := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*Organization, error) {
			return seededOrg(), nil
		},
	}
	service := NewOrganizationService(repo)

	_, err := service.Update(context.Background(), "org-1", UpdateOrganizationRequest{
		Name: strPtr("   "),
	})
	assertAppError(t, err, 400)
}

func TestUpdate_NormalizesEmailAndCountry(t *testing.T) {
	repo := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*Organization, error) {
			return seededOrg(), nil
		},
	}
	service := NewOrganizationService(repo)

	org, err := service.Update(context.Background(), "org-1", UpdateOrganizationRequest{
		Email:       strPtr("Office@Acme.COM"),
		CountryCode: strPtr("ca"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Email == nil || *org.Email != "office@acme.com" {
		t.Errorf("email not lowercased: %v", org.Email)
	}
	if org.CountryCode != "CA" {
		t.Errorf("country code not uppercased: %q", org.CountryCode)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	service := NewOrganizationService(&mockOrgRepo{})

	_, err := service.Update(context.Background(), "missing", UpdateOrganizationRequest{
		Name: strPtr("New Name"),
	})
	assertAppError(t, err, 404)
}

func TestGet_PassesThrough(t *testing.T) {
	repo := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*Organization, error) {
			if id != "org-1" {
				t.Errorf("unexpected id %q", id)
			}
			return seededOrg(), nil
		},
	}
	service := NewOrganizationService(repo)

	org, err := service.Get(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.ID != "org-1" {
		t.Errorf("unexpected organization: %+v", org)
	}
}
