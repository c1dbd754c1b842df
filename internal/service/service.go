package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/repository"
)

// Sentinel errors the API layer maps to HTTP status codes.
var (
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrForbidden          = errors.New("operation not permitted for this role")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicatePayment   = errors.New("a payment for this apartment and period already exists")
	ErrInvitationInvalid  = errors.New("invitation code is invalid")
	ErrInvitationUsed     = errors.New("invitation code has already been used")
	ErrInvitationExpired  = errors.New("invitation code has expired")
	ErrAdminExists        = errors.New("an admin account already exists")
	ErrBadSetupKey        = errors.New("invalid setup key")
	ErrSelfDeactivation   = errors.New("cannot deactivate your own account")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount      = errors.New("amount cannot be negative")
	ErrInvalidPeriod      = errors.New("invalid billing period")
)

// Principal identifies the authenticated caller for role gating.
type Principal struct {
	UserID      int64
	Role        string
	ApartmentID *int64
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Bootstrap(ctx context.Context, req models.BootstrapRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, principal Principal) (*models.User, *models.Apartment, error)

	// Apartments
	ListApartments(ctx context.Context, principal Principal) ([]models.Apartment, error)
	ListApartmentsWithTenants(ctx context.Context, principal Principal) ([]models.ApartmentWithTenant, error)
	UpdateApartment(ctx context.Context, principal Principal, id int64, req models.UpdateApartmentRequest) (*models.Apartment, error)

	// Payments
	ListPayments(ctx context.Context, principal Principal, month, year int, apartmentID int64) ([]models.PaymentWithApartment, error)
	CreatePayment(ctx context.Context, principal Principal, req models.CreatePaymentRequest) (*models.Payment, error)
	DeletePayment(ctx context.Context, principal Principal, id int64) error

	// Expenses
	ListExpenses(ctx context.Context, principal Principal, month, year int) ([]models.Expense, error)
	CreateExpense(ctx context.Context, principal Principal, req models.CreateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, principal Principal, id int64) error

	// Invitations
	ListInvitations(ctx context.Context, principal Principal) ([]models.InvitationWithApartment, error)
	CreateInvitation(ctx context.Context, principal Principal, req models.CreateInvitationRequest) (*models.InvitationResponse, error)
	DeactivateInvitation(ctx context.Context, principal Principal, id int64) error

	// Users
	ListUsers(ctx context.Context, principal Principal, role string) ([]models.UserWithApartment, error)
	UpdateUser(ctx context.Context, principal Principal, id int64, req models.UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, principal Principal, id int64) error

	// Reports
	MonthlyReport(ctx context.Context, principal Principal, month, year int) (*models.MonthlyReportResponse, error)
	FloorReport(ctx context.Context, principal Principal, month, year int) (*models.FloorReportResponse, error)
	YearTrend(ctx context.Context, principal Principal, year int) (*models.TrendResponse, error)
	TenantStatus(ctx context.Context, principal Principal, month, year int) (*models.TenantStatusResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	log           *zap.Logger
	jwtSecret     []byte
	tokenDuration time.Duration
	setupKey      string
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, log *zap.Logger, jwtSecret, setupKey string, tokenDuration time.Duration) Service {
	return &DefaultService{
		repo:          repo,
		log:           log,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		setupKey:      setupKey,
	}
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.Role,
		"exp":  now.Add(s.tokenDuration).Unix(),
		"iat":  now.Unix(),
	}
	if user.ApartmentID != nil {
		claims["apartment_id"] = *user.ApartmentID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func validPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}
