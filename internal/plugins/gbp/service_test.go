package gbp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/activities"
)

// --- Mocks ---

type mockProfileRepo struct {
	findFn            func(ctx context.Context, orgID string) (*Profile, error)
	createFn          func(ctx context.Context, profile *Profile) error
	updateFn          func(ctx context.Context, profile *Profile) error
	updateTokensFn    func(ctx context.Context, orgID string, accessToken string, refreshToken *string, expiresAt time.Time) error
	updateSyncStateFn func(ctx context.Context, orgID string, profileData map[string]any, syncedAt time.Time) error
}

func (m *mockProfileRepo) FindByOrganization(ctx context.Context, orgID string) (*Profile, error) {
	if m.findFn != nil {
		return m.findFn(ctx, orgID)
	}
	return nil, apperror.NewNotFound("no Google Business Profile linked")
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *Profile) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) UpdateTokens(ctx context.Context, orgID string, accessToken string, refreshToken *string, expiresAt time.Time) error {
	if m.updateTokensFn != nil {
		return m.updateTokensFn(ctx, orgID, accessToken, refreshToken, expiresAt)
	}
	return nil
}

func (m *mockProfileRepo) UpdateSyncState(ctx context.Context, orgID string, profileData map[string]any, syncedAt time.Time) error {
	if m.updateSyncStateFn != nil {
		return m.updateSyncStateFn(ctx, orgID, profileData, syncedAt)
	}
	return nil
}

type mockLinker struct {
	calls  int
	status string
}

func (m *mockLinker) UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error {
	m.calls++
	m.status = status
	return nil
}

type mockRecorder struct {
	calls   int
	subject string
	err     error
}

func (m *mockRecorder) RecordSync(ctx context.Context, orgID, userID, subject string, attachments map[string]any) (*activities.Activity, error) {
	m.calls++
	m.subject = subject
	if m.err != nil {
		return nil, m.err
	}
	return &activities.Activity{ID: "sync-activity", ActivityType: activities.TypeGBPSync}, nil
}

type mockFetcher struct {
	calls int
	data  map[string]any
	err   error
}

func (m *mockFetcher) FetchLocation(ctx context.Context, accessToken, locationID string) (map[string]any, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.data != nil {
		return m.data, nil
	}
	return map[string]any{"title": "Test Business"}, nil
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

func linkedProfile() *Profile {
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	expiry := time.Now().Add(time.Hour)
	return &Profile{
		ID:                 "profile-1",
		OrganizationID:     "org-1",
		AccountID:          "accounts/123",
		LocationID:         strPtr("locations/456"),
		VerificationStatus: StatusVerified,
		SyncEnabled:        true,
		AccessToken:        strPtr("ya29.token"),
		TokenExpiresAt:     &expiry,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

// --- UpsertProfile ---

func TestUpsertProfile_CreatesWhenMissing(t *testing.T) {
	var stored *Profile
	repo := &mockProfileRepo{
		createFn: func(ctx context.Context, profile *Profile) error {
			stored = profile
			return nil
		},
	}
	linker := &mockLinker{}
	service := NewService(repo, linker, &mockRecorder{}, &mockFetcher{})

	profile, err := service.UpsertProfile(context.Background(), "org-1", UpsertProfileRequest{
		AccountID:  "accounts/123",
		LocationID: strPtr("locations/456"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected repo.Create to be called")
	}
	if profile.VerificationStatus != StatusPending {
		t.Errorf("new profile defaults to pending, got %q", profile.VerificationStatus)
	}
	if !profile.SyncEnabled {
		t.Error("new profile defaults to sync enabled")
	}
	if linker.calls != 1 {
		t.Errorf("expected organization link mirrored once, got %d", linker.calls)
	}
}

func TestUpsertProfile_UpdatesExisting(t *testing.T) {
	var saved *Profile
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			return linkedProfile(), nil
		},
		updateFn: func(ctx context.Context, profile *Profile) error {
			saved = profile
			return nil
		},
	}
	linker := &mockLinker{}
	service := NewService(repo, linker, &mockRecorder{}, &mockFetcher{})

	disabled := false
	profile, err := service.UpsertProfile(context.Background(), "org-1", UpsertProfileRequest{
		AccountID:          "accounts/123",
		VerificationStatus: strPtr(StatusSuspended),
		SyncEnabled:        &disabled,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repo.Update to be called")
	}
	if profile.VerificationStatus != StatusSuspended {
		t.Errorf("expected suspended, got %q", profile.VerificationStatus)
	}
	if profile.SyncEnabled {
		t.Error("expected sync disabled")
	}
	if linker.status != StatusSuspended {
		t.Errorf("organization link must carry the new status, got %q", linker.status)
	}
}

func TestUpsertProfile_BlankAccountID(t *testing.T) {
	service := NewService(&mockProfileRepo{}, &mockLinker{}, &mockRecorder{}, &mockFetcher{})

	_, err := service.UpsertProfile(context.Background(), "org-1", UpsertProfileRequest{AccountID: "  "})
	assertAppError(t, err, 400)
}

// --- Sync ---

func TestSync_Success(t *testing.T) {
	var syncedData map[string]any
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			return linkedProfile(), nil
		},
		updateSyncStateFn: func(ctx context.Context, orgID string, profileData map[string]any, syncedAt time.Time) error {
			syncedData = profileData
			return nil
		},
	}
	fetcher := &mockFetcher{data: map[string]any{"title": "Acme Realty"}}
	recorder := &mockRecorder{}
	service := NewService(repo, &mockLinker{}, recorder, fetcher)

	result, err := service.Sync(context.Background(), "org-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected one fetch, got %d", fetcher.calls)
	}
	if syncedData["title"] != "Acme Realty" {
		t.Errorf("fetched data not persisted: %v", syncedData)
	}
	if result.Profile.LastSyncAt == nil {
		t.Error("expected last_sync_at set")
	}
	if recorder.calls != 1 {
		t.Errorf("expected one timeline entry, got %d", recorder.calls)
	}
}

func TestSync_NoProfile(t *testing.T) {
	service := NewService(&mockProfileRepo{}, &mockLinker{}, &mockRecorder{}, &mockFetcher{})

	_, err := service.Sync(context.Background(), "org-1", "user-1")
	assertAppError(t, err, 404)
}

func TestSync_Disabled(t *testing.T) {
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			profile := linkedProfile()
			profile.SyncEnabled = false
			return profile, nil
		},
	}
	fetcher := &mockFetcher{}
	service := NewService(repo, &mockLinker{}, &mockRecorder{}, fetcher)

	_, err := service.Sync(context.Background(), "org-1", "user-1")
	assertAppError(t, err, 400)
	if fetcher.calls != 0 {
		t.Error("disabled profile must not reach the api")
	}
}

func TestSync_NoCredentials(t *testing.T) {
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			profile := linkedProfile()
			profile.AccessToken = nil
			return profile, nil
		},
	}
	service := NewService(repo, &mockLinker{}, &mockRecorder{}, &mockFetcher{})

	_, err := service.Sync(context.Background(), "org-1", "user-1")
	assertAppError(t, err, 400)
}

func TestSync_ExpiredCredentials(t *testing.T) {
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			profile := linkedProfile()
			expired := time.Now().Add(-time.Minute)
			profile.TokenExpiresAt = &expired
			return profile, nil
		},
	}
	service := NewService(repo, &mockLinker{}, &mockRecorder{}, &mockFetcher{})

	_, err := service.Sync(context.Background(), "org-1", "user-1")
	assertAppError(t, err, 401)
}

func TestSync_FetchFailure(t *testing.T) {
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			return linkedProfile(), nil
		},
	}
	fetcher := &mockFetcher{err: errors.New("upstream 503")}
	service := NewService(repo, &mockLinker{}, &mockRecorder{}, fetcher)

	_, err := service.Sync(context.Background(), "org-1", "user-1")
	assertAppError(t, err, 500)
}

func TestSync_TimelineFailureIsNonFatal(t *testing.T) {
	repo := &mockProfileRepo{
		findFn: func(ctx context.Context, orgID string) (*Profile, error) {
			return linkedProfile(), nil
		},
	}
	recorder := &mockRecorder{err: errors.New("timeline down")}
	service := NewService(repo, &mockLinker{}, recorder, &mockFetcher{})

	result, err := service.Sync(context.Background(), "org-1", "user-1")
	if err != nil {
		t.Fatalf("sync must survive timeline failure: %v", err)
	}
	if result == nil {
		t.Fatal("expected a sync result")
	}
}

// --- StoreTokens ---

func TestStoreTokens_PassesThrough(t *testing.T) {
	var gotToken string
	repo := &mockProfileRepo{
		updateTokensFn: func(ctx context.Context, orgID string, accessToken string, refreshToken *string, expiresAt time.Time) error {
			gotToken = accessToken
			return nil
		},
	}
	service := NewService(repo, &mockLinker{}, &mockRecorder{}, &mockFetcher{})

	err := service.StoreTokens(context.Background(), "org-1", StoreTokensRequest{
		AccessToken:    "ya29.new",
		TokenExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "ya29.new" {
		t.Errorf("token not forwarded, got %q", gotToken)
	}
}
