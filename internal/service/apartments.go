package service

import (
	"context"
	"fmt"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListApartments returns the building roster. Tenants only see their own
// apartment; admins see everything.
func (s *DefaultService) ListApartments(ctx context.Context, principal Principal) ([]models.Apartment, error) {
	if !principal.IsAdmin() {
		if principal.ApartmentID == nil {
			return []models.Apartment{}, nil
		}
		apartment, err := s.repo.GetApartment(ctx, *principal.ApartmentID)
		if err != nil {
			return nil, fmt.Errorf("error getting apartment: %w", err)
		}
		if apartment == nil {
			return []models.Apartment{}, nil
		}
		return []models.Apartment{*apartment}, nil
	}

	apartments, err := s.repo.ListApartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing apartments: %w", err)
	}
	return apartments, nil
}

// ListApartmentsWithTenants returns the roster joined with active tenants.
// Admin only.
func (s *DefaultService) ListApartmentsWithTenants(ctx context.Context, principal Principal) ([]models.ApartmentWithTenant, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	apartments, err := s.repo.ListApartmentsWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing apartments: %w", err)
	}
	return apartments, nil
}

// UpdateApartment changes an apartment's monthly fee and/or size. Admin only.
func (s *DefaultService) UpdateApartment(ctx context.Context, principal Principal, id int64, req models.UpdateApartmentRequest) (*models.Apartment, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	apartment, err := s.repo.GetApartment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting apartment: %w", err)
	}
	if apartment == nil {
		return nil, ErrNotFound
	}

	if req.MonthlyFee != nil && req.MonthlyFee.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if err := s.repo.UpdateApartment(ctx, id, req.MonthlyFee, req.SizeSqm); err != nil {
		return nil, fmt.Errorf("error updating apartment: %w", err)
	}

	updated, err := s.repo.GetApartment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting apartment: %w", err)
	}
	return updated, nil
}
