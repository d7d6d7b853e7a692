package organizations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/infinitas/crm/internal/apperror"
)

// OrganizationService handles business logic for tenant operations. The
// organization ID always comes from the caller's AuthContext, so every
// method is implicitly scoped to the caller's own tenant.
type OrganizationService interface {
	Get(ctx context.Context, orgID string) (*Organization, error)
	Update(ctx context.Context, orgID string, req UpdateOrganizationRequest) (*Organization, error)
}

type organizationService struct {
	repo OrganizationRepository
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(repo OrganizationRepository) OrganizationService {
	return &organizationService{repo: repo}
}

// Get retrieves the caller's organization.
func (s *organizationService) Get(ctx context.Context, orgID string) (*Organization, error) {
	return s.repo.FindByID(ctx, orgID)
}

// Update applies a partial update to the caller's organization. Only fields
// present in the request change; absent fields keep their stored values.
func (s *organizationService) Update(ctx context.Context, orgID string, req UpdateOrganizationRequest) (*Organization, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.NewBadRequest("organization name cannot be empty")
		}
		org.Name = name
	}
	if req.Description != nil {
		org.Description = nilIfEmpty(*req.Description)
	}
	if req.WebsiteURL != nil {
		org.WebsiteURL = nilIfEmpty(*req.WebsiteURL)
	}
	if req.Phone != nil {
		org.Phone = nilIfEmpty(*req.Phone)
	}
	if req.Email != nil {
		org.Email = nilIfEmpty(strings.ToLower(*req.Email))
	}
	if req.AddressLine1 != nil {
		org.AddressLine1 = nilIfEmpty(*req.AddressLine1)
	}
	if req.AddressLine2 != nil {
		org.AddressLine2 = nilIfEmpty(*req.AddressLine2)
	}
	if req.Locality != nil {
		org.Locality = nilIfEmpty(*req.Locality)
	}
	if req.AdministrativeArea != nil {
		org.AdministrativeArea = nilIfEmpty(*req.AdministrativeArea)
	}
	if req.PostalCode != nil {
		org.PostalCode = nilIfEmpty(*req.PostalCode)
	}
	if req.CountryCode != nil {
		org.CountryCode = strings.ToUpper(*req.CountryCode)
	}
	if req.Latitude != nil {
		org.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		org.Longitude = req.Longitude
	}
	if req.PrimaryCategory != nil {
		org.PrimaryCategory = nilIfEmpty(*req.PrimaryCategory)
	}
	if req.AdditionalCategories != nil {
		org.AdditionalCategories = req.AdditionalCategories
	}
	if req.BusinessHours != nil {
		org.BusinessHours = req.BusinessHours
	}
	if req.SocialProfiles != nil {
		org.SocialProfiles = req.SocialProfiles
	}

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("updating organization: %w", err))
	}

	slog.Info("organization updated", slog.String("organization_id", org.ID))

	return org, nil
}

// nilIfEmpty maps a trimmed-empty string to nil so PATCH-style requests can
// clear a column by sending "".
func nilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
