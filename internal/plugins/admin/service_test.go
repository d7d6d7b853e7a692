package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/organizations"
	"github.com/infinitas/crm/internal/ratelimit"
)

// --- Mocks ---

type mockStatsRepo struct {
	systemCountsFn func(ctx context.Context) (int, int, int, int, int, error)
	tenantCountsFn func(ctx context.Context, orgID string) (*TenantCounts, error)
	listUsersFn    func(ctx context.Context, offset, limit int) ([]UserSummary, int, error)
}

func (m *mockStatsRepo) SystemCounts(ctx context.Context) (int, int, int, int, int, error) {
	if m.systemCountsFn != nil {
		return m.systemCountsFn(ctx)
	}
	return 0, 0, 0, 0, 0, nil
}

func (m *mockStatsRepo) TenantCounts(ctx context.Context, orgID string) (*TenantCounts, error) {
	if m.tenantCountsFn != nil {
		return m.tenantCountsFn(ctx, orgID)
	}
	return &TenantCounts{}, nil
}

func (m *mockStatsRepo) ListUsers(ctx context.Context, offset, limit int) ([]UserSummary, int, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

type mockOrgRepo struct {
	findByIDFn func(ctx context.Context, id string) (*organizations.Organization, error)
	listFn     func(ctx context.Context, offset, limit int) ([]organizations.Organization, int, error)
}

func (m *mockOrgRepo) FindByID(ctx context.Context, id string) (*organizations.Organization, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("organization not found")
}

func (m *mockOrgRepo) Update(ctx context.Context, org *organizations.Organization) error {
	return nil
}

func (m *mockOrgRepo) UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error {
	return nil
}

func (m *mockOrgRepo) List(ctx context.Context, offset, limit int) ([]organizations.Organization, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
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

// --- Stats ---

func TestStats_IncludesLimiterOccupancy(t *testing.T) {
	stats := &mockStatsRepo{
		systemCountsFn: func(ctx context.Context) (int, int, int, int, int, error) {
			return 3, 12, 250, 40, 900, nil
		},
	}
	limiter := ratelimit.NewLimiter(100, time.Hour)
	limiter.Check("ip:10.0.0.1", ratelimit.TierAPI)
	limiter.Check("ip:10.0.0.2", ratelimit.TierAPI)

	service := NewService(stats, &mockOrgRepo{}, limiter)

	got, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Organizations != 3 || got.Users != 12 || got.Contacts != 250 ||
		got.Properties != 40 || got.Activities != 900 {
		t.Errorf("census mismatch: %+v", got)
	}
	if got.RateLimiter.Entries != 2 {
		t.Errorf("expected 2 tracked entries, got %d", got.RateLimiter.Entries)
	}
	if got.RateLimiter.Capacity != 100 {
		t.Errorf("expected capacity 100, got %d", got.RateLimiter.Capacity)
	}
}

func TestStats_RepoError(t *testing.T) {
	stats := &mockStatsRepo{
		systemCountsFn: func(ctx context.Context) (int, int, int, int, int, error) {
			return 0, 0, 0, 0, 0, errors.New("connection refused")
		},
	}
	service := NewService(stats, &mockOrgRepo{}, ratelimit.NewLimiter(10, time.Hour))

	_, err := service.Stats(context.Background())
	assertAppError(t, err, 500)
}

// --- OrganizationDetail ---

func TestOrganizationDetail_CombinesRecordAndCounts(t *testing.T) {
	orgs := &mockOrgRepo{
		findByIDFn: func(ctx context.Context, id string) (*organizations.Organization, error) {
			return &organizations.Organization{ID: id, Name: "Acme Realty"}, nil
		},
	}
	stats := &mockStatsRepo{
		tenantCountsFn: func(ctx context.Context, orgID string) (*TenantCounts, error) {
			return &TenantCounts{Users: 4, Contacts: 80}, nil
		},
	}
	service := NewService(stats, orgs, ratelimit.NewLimiter(10, time.Hour))

	detail, err := service.OrganizationDetail(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Organization.Name != "Acme Realty" {
		t.Errorf("unexpected organization: %+v", detail.Organization)
	}
	if detail.Counts.Users != 4 || detail.Counts.Contacts != 80 {
		t.Errorf("unexpected counts: %+v", detail.Counts)
	}
}

func TestOrganizationDetail_NotFound(t *testing.T) {
	service := NewService(&mockStatsRepo{}, &mockOrgRepo{}, ratelimit.NewLimiter(10, time.Hour))

	_, err := service.OrganizationDetail(context.Background(), "missing")
	assertAppError(t, err, 404)
}

// --- ClearRateLimits ---

func TestClearRateLimits_FlushesState(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, time.Hour)
	limiter.Check("ip:10.0.0.1", ratelimit.TierAPI)
	limiter.Check("ip:10.0.0.1", ratelimit.TierAuth)

	service := NewService(&mockStatsRepo{}, &mockOrgRepo{}, limiter)

	stats := service.ClearRateLimits()
	if stats.Entries != 0 {
		t.Errorf("expected empty limiter after clear, got %d entries", stats.Entries)
	}

	// A previously throttled identifier starts fresh.
	result := limiter.Check("ip:10.0.0.1", ratelimit.TierAPI)
	policy := ratelimit.PolicyFor(ratelimit.TierAPI)
	if result.Remaining != policy.MaxRequests-1 {
		t.Errorf("expected fresh budget, remaining %d", result.Remaining)
	}
}
