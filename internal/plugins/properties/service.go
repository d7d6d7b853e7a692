package properties

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinitas/crm/internal/apperror"
	"github.com/infinitas/crm/internal/plugins/contacts"
	"github.com/infinitas/crm/internal/response"
)

// ContactChecker is the slice of the contacts plugin this service needs:
// verifying that an owner or manager contact exists in the organization.
type ContactChecker interface {
	GetByID(ctx context.Context, orgID, id string) (*contacts.Contact, error)
}

// PropertyService handles business logic for property operations.
type PropertyService interface {
	Create(ctx context.Context, orgID string, req CreatePropertyRequest) (*Property, error)
	GetByID(ctx context.Context, orgID, id string) (*Property, error)
	Update(ctx context.Context, orgID, id string, req UpdatePropertyRequest) (*Property, error)
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error)
}

type propertyService struct {
	repo     PropertyRepository
	contacts ContactChecker
}

// NewPropertyService creates a property service. The contact checker guards
// owner/manager links; pass nil to skip link validation (tests).
func NewPropertyService(repo PropertyRepository, contactChecker ContactChecker) PropertyService {
	return &propertyService{repo: repo, contacts: contactChecker}
}

// Create creates a new property in the organization.
func (s *propertyService) Create(ctx context.Context, orgID string, req CreatePropertyRequest) (*Property, error) {
	now := time.Now().UTC()
	property := &Property{
		ID:                 uuid.NewString(),
		OrganizationID:     orgID,
		Name:               req.Name,
		Description:        req.Description,
		PropertyType:       req.PropertyType,
		AddressLine1:       strings.TrimSpace(req.AddressLine1),
		AddressLine2:       req.AddressLine2,
		Locality:           strings.TrimSpace(req.Locality),
		AdministrativeArea: strings.TrimSpace(req.AdministrativeArea),
		PostalCode:         strings.TrimSpace(req.PostalCode),
		CountryCode:        countryOrDefault(req.CountryCode),
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		SquareFeet:         req.SquareFeet,
		LotSize:            req.LotSize,
		YearBuilt:          req.YearBuilt,
		PurchasePrice:      req.PurchasePrice,
		CurrentValue:       req.CurrentValue,
		Tags:               req.Tags,
		CustomFields:       req.CustomFields,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := validateYearBuilt(property.YearBuilt); err != nil {
		return nil, err
	}
	if err := s.resolveContactLink(ctx, orgID, req.OwnerContactID, &property.OwnerContactID, "owner"); err != nil {
		return nil, err
	}
	if err := s.resolveContactLink(ctx, orgID, req.ManagerContactID, &property.ManagerContactID, "manager"); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating property: %w", err))
	}

	slog.Info("property created",
		slog.String("property_id", property.ID),
		slog.String("organization_id", orgID),
		slog.String("type", property.PropertyType),
	)

	return property, nil
}

// GetByID retrieves a property within the organization.
func (s *propertyService) GetByID(ctx context.Context, orgID, id string) (*Property, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

// Update applies a partial update to a property within the organization.
func (s *propertyService) Update(ctx context.Context, orgID, id string, req UpdatePropertyRequest) (*Property, error) {
	property, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		property.Name = req.Name
	}
	if req.Description != nil {
		property.Description = req.Description
	}
	if req.PropertyType != nil {
		property.PropertyType = *req.PropertyType
	}
	if req.AddressLine1 != nil {
		line1 := strings.TrimSpace(*req.AddressLine1)
		if line1 == "" {
			return nil, apperror.NewBadRequest("address_line_1 cannot be empty")
		}
		property.AddressLine1 = line1
	}
	if req.AddressLine2 != nil {
		property.AddressLine2 = req.AddressLine2
	}
	if req.Locality != nil {
		property.Locality = strings.TrimSpace(*req.Locality)
	}
	if req.AdministrativeArea != nil {
		property.AdministrativeArea = strings.TrimSpace(*req.AdministrativeArea)
	}
	if req.PostalCode != nil {
		property.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.CountryCode != nil {
		property.CountryCode = strings.ToUpper(*req.CountryCode)
	}
	if req.Latitude != nil {
		property.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		property.Longitude = req.Longitude
	}
	if req.SquareFeet != nil {
		property.SquareFeet = req.SquareFeet
	}
	if req.LotSize != nil {
		property.LotSize = req.LotSize
	}
	if req.YearBuilt != nil {
		if err := validateYearBuilt(req.YearBuilt); err != nil {
			return nil, err
		}
		property.YearBuilt = req.YearBuilt
	}
	if req.PurchasePrice != nil {
		property.PurchasePrice = req.PurchasePrice
	}
	if req.CurrentValue != nil {
		property.CurrentValue = req.CurrentValue
	}
	if req.OwnerContactID != nil {
		if *req.OwnerContactID == "" {
			property.OwnerContactID = nil
		} else if err := s.resolveContactLink(ctx, orgID, req.OwnerContactID, &property.OwnerContactID, "owner"); err != nil {
			return nil, err
		}
	}
	if req.ManagerContactID != nil {
		if *req.ManagerContactID == "" {
			property.ManagerContactID = nil
		} else if err := s.resolveContactLink(ctx, orgID, req.ManagerContactID, &property.ManagerContactID, "manager"); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		property.Tags = req.Tags
	}
	if req.CustomFields != nil {
		property.CustomFields = req.CustomFields
	}

	property.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a property within the organization.
func (s *propertyService) Delete(ctx context.Context, orgID, id string) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	slog.Info("property deleted",
		slog.String("property_id", id),
		slog.String("organization_id", orgID),
	)
	return nil
}

// List returns a page of the organization's properties.
func (s *propertyService) List(ctx context.Context, orgID string, filter ListFilter, params response.ListParams) ([]Property, int, error) {
	return s.repo.List(ctx, orgID, filter, params)
}

// resolveContactLink verifies the referenced contact exists in the same
// organization before storing the link.
func (s *propertyService) resolveContactLink(ctx context.Context, orgID string, reqID *string, dst **string, role string) error {
	if reqID == nil || *reqID == "" {
		return nil
	}
	if s.contacts != nil {
		if _, err := s.contacts.GetByID(ctx, orgID, *reqID); err != nil {
			return apperror.NewBadRequest(role + " contact not found")
		}
	}
	id := *reqID
	*dst = &id
	return nil
}

func validateYearBuilt(year *int) error {
	if year == nil {
		return nil
	}
	// A construction year a few years in the future covers developments
	// under construction.
	if *year < 1800 || *year > time.Now().Year()+5 {
		return apperror.NewBadRequest("year_built is out of range")
	}
	return nil
}

func countryOrDefault(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "US"
	}
	return strings.ToUpper(strings.TrimSpace(*s))
}
