package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListUsers returns users joined with apartment details, optionally filtered
// by role. Admin only.
func (s *DefaultService) ListUsers(ctx context.Context, principal Principal, role string) ([]models.UserWithApartment, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := s.repo.ListUsers(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// UpdateUser edits a user's name, apartment binding or active flag. Admin
// only.
func (s *DefaultService) UpdateUser(ctx context.Context, principal Principal, id int64, req models.UpdateUserRequest) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if req.IsActive != nil && !*req.IsActive && id == principal.UserID {
		return nil, ErrSelfDeactivation
	}

	if err := s.repo.UpdateUser(ctx, id, req.FullName, req.ApartmentID, req.IsActive); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	updated, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return updated, nil
}

// DeactivateUser soft-deletes a user so payment and expense history stays
// intact. Admins cannot deactivate themselves.
func (s *DefaultService) DeactivateUser(ctx context.Context, principal Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if id == principal.UserID {
		return ErrSelfDeactivation
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	inactive := false
	if err := s.repo.UpdateUser(ctx, id, nil, nil, &inactive); err != nil {
		return fmt.Errorf("error deactivating user: %w", err)
	}

	s.log.Info("user deactivated", zap.Int64("user_id", id))

	return nil
}
