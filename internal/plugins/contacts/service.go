package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/response"
)

// ContactService handles business logic for contact operations. It owns the
// person/company shape rule and company-link integrity; tenant scoping is
// enforced by passing the caller's organization ID into every call.
type ContactService interface {
	Create(ctx context.Context, orgID string, req CreateContactRequest) (*Contact, error)
	GetByID(ctx context.Context, orgID, id string) (*Contact, error)
	Update(ctx context.Context, orgID, id string, req UpdateContactRequest) (*Contact, error)
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Contact, int, error)
	Search(ctx context.Context, orgID, query string, params response.ListParams) ([]Contact, int, error)
}

type contactService struct {
	repo ContactRepository
}

// NewContactService creates a contact service.
func NewContactService(repo ContactRepository) ContactService {
	return &contactService{repo: repo}
}

// Create creates a new contact in the organization.
func (s *contactService) Create(ctx context.Context, orgID string, req CreateContactRequest) (*Contact, error) {
	now := time.Now().UTC()
	contact := &Contact{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		ContactType:    req.ContactType,
		FirstName:      trimPtr(req.FirstName),
		LastName:       trimPtr(req.LastName),
		CompanyName:    trimPtr(req.CompanyName),
		Title:          trimPtr(req.Title),
		Email:          lowerPtr(trimPtr(req.Email)),
		Phone:          trimPtr(req.Phone),
		AddressLine1:   trimPtr(req.AddressLine1),
		AddressLine2:   trimPtr(req.AddressLine2),
		Locality:       trimPtr(req.Locality),
		AdministrativeArea: trimPtr(req.AdministrativeArea),
		PostalCode:     trimPtr(req.PostalCode),
		CountryCode:    countryOrDefault(req.CountryCode),
		WebsiteURL:     trimPtr(req.WebsiteURL),
		SocialProfiles: req.SocialProfiles,
		Notes:          req.Notes,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := validateShape(contact); err != nil {
		return nil, err
	}

	if req.CompanyID != nil {
		if err := s.resolveCompanyLink(ctx, orgID, contact, *req.CompanyID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating contact: %w", err))
	}

	slog.Info("contact created",
		slog.String("contact_id", contact.ID),
		slog.String("organization_id", orgID),
		slog.String("type", contact.ContactType),
	)

	return contact, nil
}

// GetByID retrieves a contact within the organization.
func (s *contactService) GetByID(ctx context.Context, orgID, id string) (*Contact, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

// Update applies a partial update to a contact within the organization.
func (s *contactService) Update(ctx context.Context, orgID, id string, req UpdateContactRequest) (*Contact, error) {
	contact, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.ContactType != nil {
		contact.ContactType = *req.ContactType
	}
	if req.FirstName != nil {
		contact.FirstName = trimPtr(req.FirstName)
	}
	if req.LastName != nil {
		contact.LastName = trimPtr(req.LastName)
	}
	if req.CompanyName != nil {
		contact.CompanyName = trimPtr(req.CompanyName)
	}
	if req.Title != nil {
		contact.Title = trimPtr(req.Title)
	}
	if req.Email != nil {
		contact.Email = lowerPtr(trimPtr(req.Email))
	}
	if req.Phone != nil {
		contact.Phone = trimPtr(req.Phone)
	}
	if req.AddressLine1 != nil {
		contact.AddressLine1 = trimPtr(req.AddressLine1)
	}
	if req.AddressLine2 != nil {
		contact.AddressLine2 = trimPtr(req.AddressLine2)
	}
	if req.Locality != nil {
		contact.Locality = trimPtr(req.Locality)
	}
	if req.AdministrativeArea != nil {
		contact.AdministrativeArea = trimPtr(req.AdministrativeArea)
	}
	if req.PostalCode != nil {
		contact.PostalCode = trimPtr(req.PostalCode)
	}
	if req.CountryCode != nil {
		contact.CountryCode = strings.ToUpper(*req.CountryCode)
	}
	if req.WebsiteURL != nil {
		contact.WebsiteURL = trimPtr(req.WebsiteURL)
	}
	if req.SocialProfiles != nil {
		contact.SocialProfiles = req.SocialProfiles
	}
	if req.Notes != nil {
		contact.Notes = req.Notes
	}
	if req.Tags != nil {
		contact.Tags = req.Tags
	}

	if err := validateShape(contact); err != nil {
		return nil, err
	}

	if req.CompanyID != nil {
		if *req.CompanyID == "" {
			contact.CompanyID = nil
		} else if err := s.resolveCompanyLink(ctx, orgID, contact, *req.CompanyID); err != nil {
			return nil, err
		}
	}

	contact.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact within the organization.
func (s *contactService) Delete(ctx context.Context, orgID, id string) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	slog.Info("contact deleted",
		slog.String("contact_id", id),
		slog.String("organization_id", orgID),
	)
	return nil
}

// List returns a page of the organization's contacts.
func (s *contactService) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Contact, int, error) {
	return s.repo.List(ctx, orgID, filter, params)
}

// Search finds contacts matching the query within the organization.
// A blank query is rejected rather than degrading into a full listing.
func (s *contactService) Search(ctx context.Context, orgID, query string, params response.ListParams) ([]Contact, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, apperror.NewBadRequest("search query is required")
	}
	return s.repo.Search(ctx, orgID, query, params)
}

// validateShape enforces the type-specific required fields: a person needs
// a first or last name, a company needs a company name.
func validateShape(c *Contact) error {
	switch c.ContactType {
	case TypePerson:
		if c.FirstName == nil && c.LastName == nil {
			return apperror.NewBadRequest("a person contact requires a first or last name")
		}
	case TypeCompany:
		if c.CompanyName == nil {
			return apperror.NewBadRequest("a company contact requires a company name")
		}
	default:
		return apperror.NewBadRequest("contact_type must be person or company")
	}
	return nil
}

// resolveCompanyLink validates that the linked company exists in the same
// organization and is actually a company.
func (s *contactService) resolveCompanyLink(ctx context.Context, orgID string, contact *Contact, companyID string) error {
	if contact.ContactType != TypePerson {
		return apperror.NewBadRequest("only person contacts can be linked to a company")
	}
	if companyID == contact.ID {
		return apperror.NewBadRequest("a contact cannot be linked to itself")
	}

	company, err := s.repo.FindByID(ctx, orgID, companyID)
	if err != nil {
		return apperror.NewBadRequest("linked company not found")
	}
	if company.ContactType != TypeCompany {
		return apperror.NewBadRequest("linked contact is not a company")
	}

	contact.CompanyID = &companyID
	return nil
}

// --- Helpers ---

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(*s)
	return &lowered
}

func countryOrDefault(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "US"
	}
	return strings.ToUpper(strings.TrimSpace(*s))
}
