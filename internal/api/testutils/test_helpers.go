package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/asalkic/zgrada-server/internal/api"
	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/repository"
	"github.com/asalkic/zgrada-server/internal/service"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-secret-key"

// TestSetupKey guards the bootstrap endpoint in tests.
const TestSetupKey = "test-setup-key"

// TestContext holds all dependencies for API tests. The repository is an
// in-memory fake, so tests need no database.
type TestContext struct {
	Router     *gin.Engine
	Repository *FakeRepository
	Service    service.Service
}

// SetupTestContext wires the full HTTP stack on top of a fake repository.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	repo := NewFakeRepository()
	svc := service.NewDefaultService(repo, zap.NewNop(), TestJWTSecret, TestSetupKey, 24*time.Hour)
	handler := api.NewHandler(svc, []byte(TestJWTSecret))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.SetupRoutes(router)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
	}
}

// SeedAdmin creates an active admin directly in the repository and returns
// the user and a valid token.
func (tc *TestContext) SeedAdmin(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, tc.Repository.CreateUser(context.Background(), user))

	return user, tc.TokenFor(t, user)
}

// SeedApartment creates an apartment with the given fee.
func (tc *TestContext) SeedApartment(t *testing.T, building, number, floor int, fee string) *models.Apartment {
	t.Helper()

	apartment := &models.Apartment{
		BuildingNumber:  building,
		ApartmentNumber: number,
		Floor:           floor,
		MonthlyFee:      decimal.RequireFromString(fee),
	}
	require.NoError(t, tc.Repository.CreateApartment(context.Background(), apartment))
	return apartment
}

// SeedTenant creates an active tenant bound to an apartment and returns the
// user and a valid token.
func (tc *TestContext) SeedTenant(t *testing.T, email string, apartmentID int64) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("tenantpassword"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test Tenant",
		Role:         models.RoleTenant,
		ApartmentID:  &apartmentID,
		IsActive:     true,
	}
	require.NoError(t, tc.Repository.CreateUser(context.Background(), user))

	return user, tc.TokenFor(t, user)
}

// TokenFor mints a token by logging in with the seeded password.
func (tc *TestContext) TokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	password := "adminpassword"
	if user.Role == models.RoleTenant {
		password = "tenantpassword"
	}

	resp, err := tc.Service.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	require.NoError(t, err)
	return resp.Token
}

// PerformRequest executes an HTTP request against the router.
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token.
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// FakeRepository is an in-memory Repository for tests. It mirrors the
// uniqueness constraints the database enforces.
type FakeRepository struct {
	mu sync.Mutex

	users       map[int64]*models.User
	apartments  map[int64]*models.Apartment
	payments    map[int64]*models.Payment
	expenses    map[int64]*models.Expense
	invitations map[int64]*models.InvitationCode

	nextID int64
}

// NewFakeRepository creates an empty in-memory repository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		users:       make(map[int64]*models.User),
		apartments:  make(map[int64]*models.Apartment),
		payments:    make(map[int64]*models.Payment),
		expenses:    make(map[int64]*models.Expense),
		invitations: make(map[int64]*models.InvitationCode),
	}
}

func (f *FakeRepository) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeRepository) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createUserLocked(user)
}

func (f *FakeRepository) createUserLocked(user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = f.id()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *FakeRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, nil
}

func (f *FakeRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	found := *user
	return &found, nil
}

func (f *FakeRepository) ListUsers(ctx context.Context, role string) ([]models.UserWithApartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := []models.UserWithApartment{}
	for _, user := range f.users {
		if role != "" && user.Role != role {
			continue
		}
		entry := models.UserWithApartment{User: *user}
		if user.ApartmentID != nil {
			if apartment, ok := f.apartments[*user.ApartmentID]; ok {
				entry.ApartmentNumber = &apartment.ApartmentNumber
				entry.BuildingNumber = &apartment.BuildingNumber
				entry.Floor = &apartment.Floor
			}
		}
		users = append(users, entry)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *FakeRepository) UpdateUser(ctx context.Context, id int64, fullName *string, apartmentID *int64, isActive *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil
	}
	if fullName != nil {
		user.FullName = *fullName
	}
	if apartmentID != nil {
		user.ApartmentID = apartmentID
	}
	if isActive != nil {
		user.IsActive = *isActive
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FakeRepository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user, ok := f.users[id]; ok {
		user.PasswordHash = passwordHash
		user.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (f *FakeRepository) CountAdmins(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, user := range f.users {
		if user.Role == models.RoleAdmin && user.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *FakeRepository) CreateApartment(ctx context.Context, apartment *models.Apartment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.apartments {
		if existing.BuildingNumber == apartment.BuildingNumber &&
			existing.ApartmentNumber == apartment.ApartmentNumber {
			return repository.ErrDuplicate
		}
	}

	apartment.ID = f.id()
	apartment.CreatedAt = time.Now().UTC()

	stored := *apartment
	f.apartments[apartment.ID] = &stored
	return nil
}

func (f *FakeRepository) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	apartment, ok := f.apartments[id]
	if !ok {
		return nil, nil
	}
	found := *apartment
	return &found, nil
}

func (f *FakeRepository) ListApartments(ctx context.Context) ([]models.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	apartments := []models.Apartment{}
	for _, apartment := range f.apartments {
		apartments = append(apartments, *apartment)
	}
	sort.Slice(apartments, func(i, j int) bool {
		if apartments[i].BuildingNumber != apartments[j].BuildingNumber {
			return apartments[i].BuildingNumber < apartments[j].BuildingNumber
		}
		return apartments[i].ApartmentNumber < apartments[j].ApartmentNumber
	})
	return apartments, nil
}

func (f *FakeRepository) ListApartmentsWithTenants(ctx context.Context) ([]models.ApartmentWithTenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	apartments := []models.ApartmentWithTenant{}
	for _, apartment := range f.apartments {
		entry := models.ApartmentWithTenant{Apartment: *apartment}
		for _, user := range f.users {
			if user.Role == models.RoleTenant && user.IsActive &&
				user.ApartmentID != nil && *user.ApartmentID == apartment.ID {
				id := user.ID
				name := user.FullName
				email := user.Email
				entry.TenantID = &id
				entry.TenantName = &name
				entry.TenantEmail = &email
				break
			}
		}
		apartments = append(apartments, entry)
	}
	sort.Slice(apartments, func(i, j int) bool {
		if apartments[i].BuildingNumber != apartments[j].BuildingNumber {
			return apartments[i].BuildingNumber < apartments[j].BuildingNumber
		}
		return apartments[i].ApartmentNumber < apartments[j].ApartmentNumber
	})
	return apartments, nil
}

func (f *FakeRepository) UpdateApartment(ctx context.Context, id int64, monthlyFee, sizeSqm *decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	apartment, ok := f.apartments[id]
	if !ok {
		return nil
	}
	if monthlyFee != nil {
		apartment.MonthlyFee = *monthlyFee
	}
	if sizeSqm != nil {
		apartment.SizeSqm = decimal.NullDecimal{Decimal: *sizeSqm, Valid: true}
	}
	return nil
}

func (f *FakeRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.payments {
		if existing.ApartmentID == payment.ApartmentID &&
			existing.Month == payment.Month && existing.Year == payment.Year {
			return repository.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	payment.ID = f.id()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	stored := *payment
	f.payments[payment.ID] = &stored
	return nil
}

// InsertPaymentUnchecked stores a payment without the uniqueness check,
// simulating rows that predate the constraint or a corrupted store.
func (f *FakeRepository) InsertPaymentUnchecked(payment *models.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payment.ID = f.id()
	stored := *payment
	f.payments[payment.ID] = &stored
}

func (f *FakeRepository) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payment, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	found := *payment
	return &found, nil
}

func (f *FakeRepository) ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]models.PaymentWithApartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payments := []models.PaymentWithApartment{}
	for _, payment := range f.payments {
		if filter.Month != 0 && payment.Month != filter.Month {
			continue
		}
		if filter.Year != 0 && payment.Year != filter.Year {
			continue
		}
		if filter.ApartmentID != 0 && payment.ApartmentID != filter.ApartmentID {
			continue
		}
		entry := models.PaymentWithApartment{Payment: *payment}
		if apartment, ok := f.apartments[payment.ApartmentID]; ok {
			entry.ApartmentNumber = apartment.ApartmentNumber
		}
		payments = append(payments, entry)
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].PaymentDate.After(payments[j].PaymentDate)
		}
		return payments[i].ID > payments[j].ID
	})
	return payments, nil
}

func (f *FakeRepository) DeletePayment(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.payments, id)
	return nil
}

func (f *FakeRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	expense.ID = f.id()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	stored := *expense
	f.expenses[expense.ID] = &stored
	return nil
}

func (f *FakeRepository) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expense, ok := f.expenses[id]
	if !ok {
		return nil, nil
	}
	found := *expense
	return &found, nil
}

func (f *FakeRepository) ListExpenses(ctx context.Context, month, year int) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expenses := []models.Expense{}
	for _, expense := range f.expenses {
		if month != 0 && expense.Month != month {
			continue
		}
		if year != 0 && expense.Year != year {
			continue
		}
		expenses = append(expenses, *expense)
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].ExpenseDate.Before(expenses[j].ExpenseDate)
	})
	return expenses, nil
}

func (f *FakeRepository) DeleteExpense(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.expenses, id)
	return nil
}

func (f *FakeRepository) CreateInvitation(ctx context.Context, invitation *models.InvitationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.invitations {
		if existing.ApartmentID == invitation.ApartmentID && existing.IsActive {
			existing.IsActive = false
		}
	}

	invitation.ID = f.id()
	invitation.IsActive = true
	invitation.CreatedAt = time.Now().UTC()

	stored := *invitation
	f.invitations[invitation.ID] = &stored
	return nil
}

func (f *FakeRepository) GetInvitationByCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, invitation := range f.invitations {
		if invitation.Code == code {
			found := *invitation
			return &found, nil
		}
	}
	return nil, nil
}

func (f *FakeRepository) ListInvitations(ctx context.Context) ([]models.InvitationWithApartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	invitations := []models.InvitationWithApartment{}
	for _, invitation := range f.invitations {
		entry := models.InvitationWithApartment{InvitationCode: *invitation}
		if apartment, ok := f.apartments[invitation.ApartmentID]; ok {
			entry.ApartmentNumber = apartment.ApartmentNumber
			entry.BuildingNumber = apartment.BuildingNumber
			entry.Floor = apartment.Floor
		}
		invitations = append(invitations, entry)
	}
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].ID < invitations[j].ID })
	return invitations, nil
}

func (f *FakeRepository) DeactivateInvitation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if invitation, ok := f.invitations[id]; ok {
		invitation.IsActive = false
	}
	return nil
}

func (f *FakeRepository) RegisterTenant(ctx context.Context, user *models.User, invitationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createUserLocked(user); err != nil {
		return err
	}

	if invitation, ok := f.invitations[invitationID]; ok {
		now := time.Now().UTC()
		invitation.UsedBy = &user.ID
		invitation.UsedAt = &now
		invitation.IsActive = false
	}
	return nil
}

func (f *FakeRepository) Cleanup(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.payments = make(map[int64]*models.Payment)
	f.expenses = make(map[int64]*models.Expense)
	f.invitations = make(map[int64]*models.InvitationCode)
	for id, user := range f.users {
		if user.Role != models.RoleAdmin {
			delete(f.users, id)
		}
	}
	return nil
}
