package properties

import (
	"context"
	"errors"
	"testing"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/contacts"
	"github.com/infinitas/crm/internal/response"
)

// --- Mocks ---

type mockPropertyRepo struct {
	createFn   func(ctx context.Context, property *Property) error
	findByIDFn func(ctx context.Context, orgID, id string) (*Property, error)
	updateFn   func(ctx context.Context, property *Property) error
	deleteFn   func(ctx context.Context, orgID, id string) error
	listFn     func(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error)
}

func (m *mockPropertyRepo) Create(ctx context.Context, property *Property) error {
	if m.createFn != nil {
		return m.createFn(ctx, property)
	}
	return nil
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, orgID, id string) (*Property, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, orgID, id)
	}
	return nil, apperror.NewNotFound("property not found")
}

func (m *mockPropertyRepo) Update(ctx context.Context, property *Property) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, property)
	}
	return nil
}

func (m *mockPropertyRepo) Delete(ctx context.Context, orgID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, orgID, id)
	}
	return nil
}

func (m *mockPropertyRepo) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, orgID, filter, params)
	}
	return nil, 0, nil
}

func (m *mockPropertyRepo) Count(ctx context.Context, orgID string) (int, error) {
	return 0, nil
}

type mockContactChecker struct {
	getByIDFn func(ctx context.Context, orgID, id string) (*contacts.Contact, error)
}

func (m *mockContactChecker) GetByID(ctx context.Context, orgID, id string) (*contacts.Contact, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, orgID, id)
	}
	return nil, apperror.NewNotFound("contact not found")
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
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

func validCreateReq() CreatePropertyRequest {
	return CreatePropertyRequest{
		PropertyType:       TypeRetail,
		AddressLine1:       "200 Harbor Blvd",
		Locality:           "San Diego",
		AdministrativeArea: "CA",
		PostalCode:         "92101",
	}
}

// --- Tests ---

func TestCreate_Success(t *testing.T) {
	var created *Property
	repo := &mockPropertyRepo{
		createFn: func(ctx context.Context, property *Property) error {
			created = property
			return nil
		},
	}

	svc := NewPropertyService(repo, nil)
	property, err := svc.Create(context.Background(), "org-1", validCreateReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository create to be called")
	}
	if property.OrganizationID != "org-1" {
		t.Errorf("expected org-1, got %s", property.OrganizationID)
	}
	if property.CountryCode != "US" {
		t.Errorf("expected default country US, got %s", property.CountryCode)
	}
	if property.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestCreate_FutureYearBuilt(t *testing.T) {
	svc := NewPropertyService(&mockPropertyRepo{}, nil)
	req := validCreateReq()
	req.YearBuilt = intPtr(2200)

	_, err := svc.Create(context.Background(), "org-1", req)
	assertAppError(t, err, 400)
}

func TestCreate_OwnerContactValidated(t *testing.T) {
	checker := &mockContactChecker{
		getByIDFn: func(ctx context.Context, orgID, id string) (*contacts.Contact, error) {
			if orgID != "org-1" {
				t.Errorf("expected owner lookup scoped to org-1, got %s", orgID)
			}
			if id == "contact-9" {
				return &contacts.Contact{ID: id, OrganizationID: orgID}, nil
			}
			return nil, apperror.NewNotFound("contact not found")
		},
	}

	svc := NewPropertyService(&mockPropertyRepo{}, checker)

	req := validCreateReq()
	req.OwnerContactID = strPtr("contact-9")
	property, err := svc.Create(context.Background(), "org-1", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if property.OwnerContactID == nil || *property.OwnerContactID != "contact-9" {
		t.Errorf("expected owner link, got %v", property.OwnerContactID)
	}

	req.OwnerContactID = strPtr("missing")
	_, err = svc.Create(context.Background(), "org-1", req)
	assertAppError(t, err, 400)
}

func TestUpdate_BlankAddressRejected(t *testing.T) {
	repo := &mockPropertyRepo{
		findByIDFn: func(ctx context.Context, orgID, id string) (*Property, error) {
			return &Property{ID: id, OrganizationID: orgID, PropertyType: TypeOffice, AddressLine1: "1 Main St"}, nil
		},
	}

	svc := NewPropertyService(repo, nil)
	_, err := svc.Update(context.Background(), "org-1", "prop-1", UpdatePropertyRequest{
		AddressLine1: strPtr("   "),
	})
	assertAppError(t, err, 400)
}

func TestUpdate_ClearManagerLink(t *testing.T) {
	managerID := "contact-5"
	repo := &mockPropertyRepo{
		findByIDFn: func(ctx context.Context, orgID, id string) (*Property, error) {
			return &Property{
				ID: id, OrganizationID: orgID, PropertyType: TypeOffice,
				AddressLine1: "1 Main St", ManagerContactID: &managerID,
			}, nil
		},
	}

	svc := NewPropertyService(repo, nil)
	property, err := svc.Update(context.Background(), "org-1", "prop-1", UpdatePropertyRequest{
		ManagerContactID: strPtr(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if property.ManagerContactID != nil {
		t.Errorf("expected cleared manager link, got %v", *property.ManagerContactID)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewPropertyService(&mockPropertyRepo{}, nil)
	_, err := svc.Update(context.Background(), "org-1", "missing", UpdatePropertyRequest{})
	assertAppError(t, err, 404)
}

func TestList_PassesFilter(t *testing.T) {
	var gotFilter ListFilter
	repo := &mockPropertyRepo{
		listFn: func(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error) {
			gotFilter = filter
			return []Property{{ID: "p-1"}}, 1, nil
		},
	}

	svc := NewPropertyService(repo, nil)
	_, total, err := svc.List(context.Background(), "org-1",
		ListFilter{PropertyType: TypeRetail}, response.ListParams{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.PropertyType != TypeRetail {
		t.Errorf("filter not forwarded, got %+v", gotFilter)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}
