package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// e.g. a second payment for the same apartment and period.
var ErrDuplicate = errors.New("duplicate record")

// PaymentFilter narrows ListPayments. Zero values mean no filtering on that
// dimension.
type PaymentFilter struct {
	Month       int
	Year        int
	ApartmentID int64
}

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]models.UserWithApartment, error)
	UpdateUser(ctx context.Context, id int64, fullName *string, apartmentID *int64, isActive *bool) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	CountAdmins(ctx context.Context) (int, error)

	// Apartment operations
	CreateApartment(ctx context.Context, apartment *models.Apartment) error
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	ListApartments(ctx context.Context) ([]models.Apartment, error)
	ListApartmentsWithTenants(ctx context.Context) ([]models.ApartmentWithTenant, error)
	UpdateApartment(ctx context.Context, id int64, monthlyFee, sizeSqm *decimal.Decimal) error

	// Payment operations
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]models.PaymentWithApartment, error)
	DeletePayment(ctx context.Context, id int64) error

	// Expense operations
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	ListExpenses(ctx context.Context, month, year int) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	// Invitation operations
	CreateInvitation(ctx context.Context, invitation *models.InvitationCode) error
	GetInvitationByCode(ctx context.Context, code string) (*models.InvitationCode, error)
	ListInvitations(ctx context.Context) ([]models.InvitationWithApartment, error)
	DeactivateInvitation(ctx context.Context, id int64) error
	RegisterTenant(ctx context.Context, user *models.User, invitationID int64) error

	// Maintenance operations (operator CLI only)
	Cleanup(ctx context.Context) error
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, role, apartment_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Role,
		user.ApartmentID, user.IsActive, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, role string) ([]models.UserWithApartment, error) {
	query := `
		SELECT u.*, a.apartment_number, a.building_number, a.floor
		FROM users u
		LEFT JOIN apartments a ON u.apartment_id = a.id
	`

	args := []interface{}{}
	if role != "" {
		query += ` WHERE u.role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY u.created_at`

	var users []models.UserWithApartment
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, id int64, fullName *string, apartmentID *int64, isActive *bool) error {
	sets := []string{}
	args := []interface{}{}

	if fullName != nil {
		args = append(args, *fullName)
		sets = append(sets, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if apartmentID != nil {
		args = append(args, *apartmentID)
		sets = append(sets, fmt.Sprintf("apartment_id = $%d", len(args)))
	}
	if isActive != nil {
		args = append(args, *isActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresRepository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	return err
}

func (r *PostgresRepository) CountAdmins(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, models.RoleAdmin); err != nil {
		return 0, err
	}

	return count, nil
}

// Apartment repository methods
func (r *PostgresRepository) CreateApartment(ctx context.Context, apartment *models.Apartment) error {
	query := `
		INSERT INTO apartments (building_number, apartment_number, floor, size_sqm, monthly_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	apartment.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		apartment.BuildingNumber, apartment.ApartmentNumber, apartment.Floor,
		apartment.SizeSqm, apartment.MonthlyFee, apartment.CreatedAt).Scan(&apartment.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	query := `SELECT * FROM apartments WHERE id = $1`

	var apartment models.Apartment
	err := r.db.GetContext(ctx, &apartment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Apartment not found
		}
		return nil, err
	}

	return &apartment, nil
}

func (r *PostgresRepository) ListApartments(ctx context.Context) ([]models.Apartment, error) {
	query := `SELECT * FROM apartments ORDER BY building_number, apartment_number`

	var apartments []models.Apartment
	if err := r.db.SelectContext(ctx, &apartments, query); err != nil {
		return nil, err
	}

	return apartments, nil
}

func (r *PostgresRepository) ListApartmentsWithTenants(ctx context.Context) ([]models.ApartmentWithTenant, error) {
	query := `
		SELECT a.*, u.id AS tenant_id, u.full_name AS tenant_name, u.email AS tenant_email
		FROM apartments a
		LEFT JOIN users u ON u.apartment_id = a.id AND u.role = 'tenant' AND u.is_active = TRUE
		ORDER BY a.building_number, a.apartment_number
	`

	var apartments []models.ApartmentWithTenant
	if err := r.db.SelectContext(ctx, &apartments, query); err != nil {
		return nil, err
	}

	return apartments, nil
}

func (r *PostgresRepository) UpdateApartment(ctx context.Context, id int64, monthlyFee, sizeSqm *decimal.Decimal) error {
	sets := []string{}
	args := []interface{}{}

	if monthlyFee != nil {
		args = append(args, *monthlyFee)
		sets = append(sets, fmt.Sprintf("monthly_fee = $%d", len(args)))
	}
	if sizeSqm != nil {
		args = append(args, *sizeSqm)
		sets = append(sets, fmt.Sprintf("size_sqm = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE apartments SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Payment repository methods
func (r *PostgresRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (apartment_id, amount, payment_date, month, year, payment_method, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		payment.ApartmentID, payment.Amount, payment.PaymentDate, payment.Month, payment.Year,
		payment.PaymentMethod, payment.Notes, payment.CreatedBy,
		payment.CreatedAt, payment.UpdatedAt).Scan(&payment.ID)
	if isUniqueViolation(err) {
		// The (apartment, month, year) constraint is what keeps the period
		// ledger sound; surface it instead of overwriting.
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepository) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	query := `SELECT * FROM payments WHERE id = $1`

	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Payment not found
		}
		return nil, err
	}

	return &payment, nil
}

func (r *PostgresRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.PaymentWithApartment, error) {
	query := `
		SELECT p.*, a.apartment_number
		FROM payments p
		JOIN apartments a ON p.apartment_id = a.id
	`

	conditions := []string{}
	args := []interface{}{}

	if filter.Month != 0 {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", len(args)))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", len(args)))
	}
	if filter.ApartmentID != 0 {
		args = append(args, filter.ApartmentID)
		conditions = append(conditions, fmt.Sprintf("p.apartment_id = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY p.payment_date DESC, p.id DESC`

	var payments []models.PaymentWithApartment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PostgresRepository) DeletePayment(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

// Expense repository methods
func (r *PostgresRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (title, amount, category, description, expense_date, month, year, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	return r.db.QueryRowContext(ctx, query,
		expense.Title, expense.Amount, expense.Category, expense.Description,
		expense.ExpenseDate, expense.Month, expense.Year, expense.CreatedBy,
		expense.CreatedAt, expense.UpdatedAt).Scan(&expense.ID)
}

func (r *PostgresRepository) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	query := `SELECT * FROM expenses WHERE id = $1`

	var expense models.Expense
	err := r.db.GetContext(ctx, &expense, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Expense not found
		}
		return nil, err
	}

	return &expense, nil
}

func (r *PostgresRepository) ListExpenses(ctx context.Context, month, year int) ([]models.Expense, error) {
	query := `SELECT * FROM expenses`

	conditions := []string{}
	args := []interface{}{}

	if month != 0 {
		args = append(args, month)
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)))
	}
	if year != 0 {
		args = append(args, year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY expense_date`

	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *PostgresRepository) DeleteExpense(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}

// Invitation repository methods

// CreateInvitation inserts a new invitation code for an apartment and
// deactivates any previously active codes for it, in one transaction.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *models.InvitationCode) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	_, err = tx.ExecContext(ctx,
		`UPDATE invitation_codes SET is_active = FALSE WHERE apartment_id = $1 AND is_active = TRUE`,
		invitation.ApartmentID)
	if err != nil {
		return err
	}

	invitation.CreatedAt = time.Now().UTC()
	invitation.IsActive = true

	err = tx.QueryRowContext(ctx, `
		INSERT INTO invitation_codes (code, apartment_id, created_by, is_active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, invitation.Code, invitation.ApartmentID, invitation.CreatedBy,
		invitation.IsActive, invitation.CreatedAt, invitation.ExpiresAt).Scan(&invitation.ID)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicate
		}
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetInvitationByCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	query := `SELECT * FROM invitation_codes WHERE code = $1`

	var invitation models.InvitationCode
	err := r.db.GetContext(ctx, &invitation, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Invitation not found
		}
		return nil, err
	}

	return &invitation, nil
}

func (r *PostgresRepository) ListInvitations(ctx context.Context) ([]models.InvitationWithApartment, error) {
	query := `
		SELECT i.*, a.apartment_number, a.building_number, a.floor
		FROM invitation_codes i
		JOIN apartments a ON i.apartment_id = a.id
		ORDER BY i.created_at
	`

	var invitations []models.InvitationWithApartment
	if err := r.db.SelectContext(ctx, &invitations, query); err != nil {
		return nil, err
	}

	return invitations, nil
}

func (r *PostgresRepository) DeactivateInvitation(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitation_codes SET is_active = FALSE WHERE id = $1`, id)
	return err
}

// RegisterTenant creates the tenant user and consumes the invitation code in
// one transaction, so a code can never be consumed without the user existing
// or vice versa.
func (r *PostgresRepository) RegisterTenant(ctx context.Context, user *models.User, invitationID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, apartment_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, user.Email, user.PasswordHash, user.FullName, user.Role,
		user.ApartmentID, user.IsActive, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicate
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE invitation_codes
		SET used_by = $1, used_at = $2, is_active = FALSE
		WHERE id = $3
	`, user.ID, now, invitationID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Cleanup wipes transactional data. It is only reachable from the operator
// CLI, never from an HTTP route.
func (r *PostgresRepository) Cleanup(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	statements := []string{
		`DELETE FROM late_fees`,
		`DELETE FROM payments`,
		`DELETE FROM expenses`,
		`DELETE FROM invitation_codes`,
		`DELETE FROM users WHERE role <> 'admin'`,
	}

	for _, statement := range statements {
		if _, err = tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return tx.Commit()
}
