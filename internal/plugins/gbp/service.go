package gbp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/activities"
)

// OrganizationLinker mirrors the GBP binding onto the tenant record.
// Satisfied by organizations.OrganizationRepository.
type OrganizationLinker interface {
	UpdateGBPLink(ctx context.Context, id string, accountID, locationID *string, status string) error
}

// SyncRecorder writes the gbp_sync timeline entry after a finished sync.
// Satisfied by activities.ActivityService.
type SyncRecorder interface {
	RecordSync(ctx context.Context, orgID, userID, subject string, attachments map[string]any) (*activities.Activity, error)
}

// Service handles GBP profile management and syncing.
type Service interface {
	GetProfile(ctx context.Context, orgID string) (*Profile, error)
	UpsertProfile(ctx context.Context, orgID string, req UpsertProfileRequest) (*Profile, error)
	StoreTokens(ctx context.Context, orgID string, req StoreTokensRequest) error
	Sync(ctx context.Context, orgID, userID string) (*SyncResult, error)
}

type service struct {
	repo     ProfileRepository
	orgs     OrganizationLinker
	timeline SyncRecorder
	fetcher  LocationFetcher
}

// NewService creates the GBP service.
func NewService(repo ProfileRepository, orgs OrganizationLinker, timeline SyncRecorder, fetcher LocationFetcher) Service {
	return &service{repo: repo, orgs: orgs, timeline: timeline, fetcher: fetcher}
}

// GetProfile returns the organization's GBP binding.
func (s *service) GetProfile(ctx context.Context, orgID string) (*Profile, error) {
	return s.repo.FindByOrganization(ctx, orgID)
}

// UpsertProfile creates the organization's GBP binding, or updates it if one
// already exists. The binding is mirrored onto the tenant record.
func (s *service) UpsertProfile(ctx context.Context, orgID string, req UpsertProfileRequest) (*Profile, error) {
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		return nil, apperror.NewBadRequest("account_id is required")
	}

	now := time.Now().UTC()

	profile, err := s.repo.FindByOrganization(ctx, orgID)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code != 404 {
			return nil, err
		}

		profile = &Profile{
			ID:                 uuid.NewString(),
			OrganizationID:     orgID,
			AccountID:          accountID,
			LocationID:         req.LocationID,
			AccountName:        req.AccountName,
			LocationName:       req.LocationName,
			VerificationStatus: StatusPending,
			SyncEnabled:        true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if req.VerificationStatus != nil {
			profile.VerificationStatus = *req.VerificationStatus
		}
		if req.SyncEnabled != nil {
			profile.SyncEnabled = *req.SyncEnabled
		}

		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("creating gbp profile: %w", err))
		}
	} else {
		profile.AccountID = accountID
		if req.LocationID != nil {
			if *req.LocationID == "" {
				profile.LocationID = nil
			} else {
				profile.LocationID = req.LocationID
			}
		}
		if req.AccountName != nil {
			profile.AccountName = req.AccountName
		}
		if req.LocationName != nil {
			profile.LocationName = req.LocationName
		}
		if req.VerificationStatus != nil {
			profile.VerificationStatus = *req.VerificationStatus
		}
		if req.SyncEnabled != nil {
			profile.SyncEnabled = *req.SyncEnabled
		}
		profile.UpdatedAt = now

		if err := s.repo.Update(ctx, profile); err != nil {
			return nil, err
		}
	}

	if err := s.orgs.UpdateGBPLink(ctx, orgID, &profile.AccountID, profile.LocationID, profile.VerificationStatus); err != nil {
		return nil, err
	}

	slog.Info("gbp profile linked",
		slog.String("organization_id", orgID),
		slog.String("account_id", profile.AccountID),
	)

	return profile, nil
}

// StoreTokens replaces the profile's OAuth credentials.
func (s *service) StoreTokens(ctx context.Context, orgID string, req StoreTokensRequest) error {
	return s.repo.UpdateTokens(ctx, orgID, req.AccessToken, req.RefreshToken, req.TokenExpiresAt.UTC())
}

// Sync refreshes the cached profile data from the Business Information API
// and records the result on the activity timeline.
func (s *service) Sync(ctx context.Context, orgID, userID string) (*SyncResult, error) {
	profile, err := s.repo.FindByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !profile.SyncEnabled {
		return nil, apperror.NewBadRequest("sync is disabled for this profile")
	}
	if profile.LocationID == nil || *profile.LocationID == "" {
		return nil, apperror.NewBadRequest("profile has no location bound")
	}
	if profile.AccessToken == nil || *profile.AccessToken == "" {
		return nil, apperror.NewBadRequest("profile has no stored credentials, authorize first")
	}
	if profile.TokenExpiresAt != nil && profile.TokenExpiresAt.Before(time.Now()) {
		return nil, apperror.NewUnauthorized("stored credentials expired, re-authorization required")
	}

	data, err := s.fetcher.FetchLocation(ctx, *profile.AccessToken, *profile.LocationID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("syncing gbp location: %w", err))
	}

	syncedAt := time.Now().UTC()
	if err := s.repo.UpdateSyncState(ctx, orgID, data, syncedAt); err != nil {
		return nil, err
	}
	profile.ProfileData = data
	profile.LastSyncAt = &syncedAt

	if err := s.orgs.UpdateGBPLink(ctx, orgID, &profile.AccountID, profile.LocationID, profile.VerificationStatus); err != nil {
		return nil, err
	}

	// Timeline entry is best-effort. The sync itself already persisted.
	if _, err := s.timeline.RecordSync(ctx, orgID, userID, "Google Business Profile synced", map[string]any{
		"location_id": *profile.LocationID,
		"synced_at":   syncedAt.Format(time.RFC3339),
	}); err != nil {
		slog.Warn("failed to record sync activity",
			slog.String("organization_id", orgID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("gbp profile synced",
		slog.String("organization_id", orgID),
		slog.String("location_id", *profile.LocationID),
	)

	return &SyncResult{SyncedAt: syncedAt, Profile: profile}, nil
}
