package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
)

const defaultInvitationExpiryDays = 90

// ListInvitations returns all invitation codes with their apartments. Admin
// only.
func (s *DefaultService) ListInvitations(ctx context.Context, principal Principal) ([]models.InvitationWithApartment, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	invitations, err := s.repo.ListInvitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing invitations: %w", err)
	}
	return invitations, nil
}

// CreateInvitation generates a fresh single-use code for an apartment.
// Any previously active code for the same apartment is superseded.
func (s *DefaultService) CreateInvitation(ctx context.Context, principal Principal, req models.CreateInvitationRequest) (*models.InvitationResponse, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	apartment, err := s.repo.GetApartment(ctx, req.ApartmentID)
	if err != nil {
		return nil, fmt.Errorf("error getting apartment: %w", err)
	}
	if apartment == nil {
		return nil, ErrNotFound
	}

	code, err := generateInvitationCode()
	if err != nil {
		return nil, fmt.Errorf("error generating code: %w", err)
	}

	expiresInDays := req.ExpiresInDays
	if expiresInDays <= 0 {
		expiresInDays = defaultInvitationExpiryDays
	}
	expiresAt := time.Now().UTC().AddDate(0, 0, expiresInDays)

	invitation := &models.InvitationCode{
		Code:        code,
		ApartmentID: req.ApartmentID,
		CreatedBy:   principal.UserID,
		ExpiresAt:   &expiresAt,
	}

	if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
		// Includes the astronomically unlikely code collision; the admin
		// can simply retry.
		return nil, fmt.Errorf("error creating invitation: %w", err)
	}

	s.log.Info("invitation created",
		zap.Int64("invitation_id", invitation.ID),
		zap.Int64("apartment_id", invitation.ApartmentID))

	return &models.InvitationResponse{
		Status:          "success",
		Invitation:      invitation,
		ApartmentNumber: apartment.ApartmentNumber,
		BuildingNumber:  apartment.BuildingNumber,
	}, nil
}

// DeactivateInvitation retires a code without deleting it, keeping the audit
// trail. Admin only.
func (s *DefaultService) DeactivateInvitation(ctx context.Context, principal Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.DeactivateInvitation(ctx, id); err != nil {
		return fmt.Errorf("error deactivating invitation: %w", err)
	}
	return nil
}
