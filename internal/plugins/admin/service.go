package admin

import (
	"context"
	"fmt"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/organizations"
	"github.com/infinitas/crm/internal/ratelimit"
)

// OrganizationDetail pairs a tenant record with its record counts.
type OrganizationDetail struct {
	Organization *organizations.Organization `json:"organization"`
	Counts       *TenantCounts               `json:"counts"`
}

// Service aggregates the super-admin operations.
type Service interface {
	Stats(ctx context.Context) (*SystemStats, error)
	ListOrganizations(ctx context.Context, offset, limit int) ([]organizations.Organization, int, error)
	OrganizationDetail(ctx context.Context, orgID string) (*OrganizationDetail, error)
	ListUsers(ctx context.Context, offset, limit int) ([]UserSummary, int, error)
	ClearRateLimits() LimiterStats
}

type service struct {
	stats   StatsRepository
	orgs    organizations.OrganizationRepository
	limiter *ratelimit.Limiter
}

// NewService creates the admin service.
func NewService(stats StatsRepository, orgs organizations.OrganizationRepository, limiter *ratelimit.Limiter) Service {
	return &service{stats: stats, orgs: orgs, limiter: limiter}
}

// Stats returns the system-wide census plus limiter occupancy.
func (s *service) Stats(ctx context.Context) (*SystemStats, error) {
	orgs, users, contacts, properties, activities, err := s.stats.SystemCounts(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("gathering system stats: %w", err))
	}

	limiterStats := s.limiter.Stats()
	return &SystemStats{
		Organizations: orgs,
		Users:         users,
		Contacts:      contacts,
		Properties:    properties,
		Activities:    activities,
		RateLimiter: LimiterStats{
			Entries:  limiterStats.Entries,
			Capacity: limiterStats.Capacity,
		},
	}, nil
}

// ListOrganizations returns a page of all tenants.
func (s *service) ListOrganizations(ctx context.Context, offset, limit int) ([]organizations.Organization, int, error) {
	return s.orgs.List(ctx, offset, limit)
}

// OrganizationDetail returns one tenant with its record census.
func (s *service) OrganizationDetail(ctx context.Context, orgID string) (*OrganizationDetail, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts, err := s.stats.TenantCounts(ctx, orgID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("gathering tenant stats: %w", err))
	}
	return &OrganizationDetail{Organization: org, Counts: counts}, nil
}

// ListUsers returns a page of all user accounts.
func (s *service) ListUsers(ctx context.Context, offset, limit int) ([]UserSummary, int, error) {
	users, total, err := s.stats.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperror.NewInternal(fmt.Errorf("listing users: %w", err))
	}
	return users, total, nil
}

// ClearRateLimits drops all tracked rate limit state and reports the
// occupancy after the flush.
func (s *service) ClearRateLimits() LimiterStats {
	s.limiter.Clear()
	stats := s.limiter.Stats()
	return LimiterStats{Entries: stats.Entries, Capacity: stats.Capacity}
}
