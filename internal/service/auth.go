package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/asalkic/zgrada-server/internal/models"
)

// SignUp registers a tenant. It requires a valid invitation code; consuming
// the code binds the new user to the code's apartment.
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	invitation, err := s.repo.GetInvitationByCode(ctx, strings.ToUpper(strings.TrimSpace(req.InvitationCode)))
	if err != nil {
		return nil, fmt.Errorf("error looking up invitation: %w", err)
	}

	if invitation == nil || !invitation.IsActive {
		return nil, ErrInvitationInvalid
	}
	if invitation.UsedAt != nil {
		return nil, ErrInvitationUsed
	}
	if invitation.ExpiresAt != nil && invitation.ExpiresAt.Before(time.Now()) {
		return nil, ErrInvitationExpired
	}

	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	apartmentID := invitation.ApartmentID
	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         models.RoleTenant,
		ApartmentID:  &apartmentID,
		IsActive:     true,
	}

	if err := s.repo.RegisterTenant(ctx, user, invitation.ID); err != nil {
		return nil, fmt.Errorf("error registering tenant: %w", err)
	}

	s.log.Info("tenant registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("apartment_id", apartmentID),
		zap.Int64("invitation_id", invitation.ID))

	return &models.AuthResponse{
		Status:      "success",
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		ApartmentID: user.ApartmentID,
	}, nil
}

// Login verifies credentials and returns a signed token.
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:      "success",
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		ApartmentID: user.ApartmentID,
		Token:       token,
		ExpiresIn:   int(s.tokenDuration.Seconds()),
	}, nil
}

// Bootstrap creates the very first admin account. It is guarded by the setup
// key and refuses to run once any active admin exists.
func (s *DefaultService) Bootstrap(ctx context.Context, req models.BootstrapRequest) (*models.AuthResponse, error) {
	if s.setupKey == "" || req.SetupKey != s.setupKey {
		return nil, ErrBadSetupKey
	}

	adminCount, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting admins: %w", err)
	}
	if adminCount > 0 {
		return nil, ErrAdminExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	s.log.Info("admin account bootstrapped", zap.Int64("user_id", user.ID))

	return &models.AuthResponse{
		Status:   "success",
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

// GetProfile returns the caller's user record and, for tenants, their
// apartment.
func (s *DefaultService) GetProfile(ctx context.Context, principal Principal) (*models.User, *models.Apartment, error) {
	user, err := s.repo.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}

	var apartment *models.Apartment
	if user.ApartmentID != nil {
		apartment, err = s.repo.GetApartment(ctx, *user.ApartmentID)
		if err != nil {
			return nil, nil, fmt.Errorf("error getting apartment: %w", err)
		}
	}

	return user, apartment, nil
}

// generateInvitationCode returns an 8-character uppercase hex code.
func generateInvitationCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
