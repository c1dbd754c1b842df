package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"
)

// Expense categories.
const (
	CategoryRepair      = "repair"
	CategoryMaintenance = "maintenance"
	CategoryUtilities   = "utilities"
	CategoryCleaning    = "cleaning"
	CategoryOther       = "other"
)

// Apartment represents one unit in the building. The (building number,
// apartment number) pair is unique. Apartments are never deleted because
// payments reference them.
type Apartment struct {
	ID              int64               `db:"id" json:"id"`
	BuildingNumber  int                 `db:"building_number" json:"buildingNumber"`
	ApartmentNumber int                 `db:"apartment_number" json:"apartmentNumber"`
	Floor           int                 `db:"floor" json:"floor"`
	SizeSqm         decimal.NullDecimal `db:"size_sqm" json:"sizeSqm"`
	MonthlyFee      decimal.Decimal     `db:"monthly_fee" json:"monthlyFee"`
	CreatedAt       time.Time           `db:"created_at" json:"createdAt"`
}

// ApartmentWithTenant is an apartment joined with its active tenant, if any.
type ApartmentWithTenant struct {
	Apartment
	TenantID    *int64  `db:"tenant_id" json:"tenantId"`
	TenantName  *string `db:"tenant_name" json:"tenantName"`
	TenantEmail *string `db:"tenant_email" json:"tenantEmail"`
}

// User represents an administrator or a tenant. Users are deactivated, never
// deleted, to preserve referential history.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	Role         string    `db:"role" json:"role"`
	ApartmentID  *int64    `db:"apartment_id" json:"apartmentId"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserWithApartment is a user joined with apartment details for admin lists.
type UserWithApartment struct {
	User
	ApartmentNumber *int `db:"apartment_number" json:"apartmentNumber"`
	BuildingNumber  *int `db:"building_number" json:"buildingNumber"`
	Floor           *int `db:"floor" json:"floor"`
}

// Payment records one monthly fee payment. At most one payment may exist per
// (apartment, month, year); the database enforces this.
type Payment struct {
	ID            int64           `db:"id" json:"id"`
	ApartmentID   int64           `db:"apartment_id" json:"apartmentId"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate   time.Time       `db:"payment_date" json:"paymentDate"`
	Month         int             `db:"month" json:"month"`
	Year          int             `db:"year" json:"year"`
	PaymentMethod *string         `db:"payment_method" json:"paymentMethod"`
	Notes         *string         `db:"notes" json:"notes"`
	CreatedBy     *int64          `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// PaymentWithApartment is a payment joined with its apartment number.
type PaymentWithApartment struct {
	Payment
	ApartmentNumber int `db:"apartment_number" json:"apartmentNumber"`
}

// Expense is a building-wide cost; it has no apartment association.
type Expense struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Category    string          `db:"category" json:"category"`
	Description *string         `db:"description" json:"description"`
	ExpenseDate time.Time       `db:"expense_date" json:"expenseDate"`
	Month       int             `db:"month" json:"month"`
	Year        int             `db:"year" json:"year"`
	CreatedBy   int64           `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// InvitationCode binds a prospective tenant signup to one apartment. A code
// is usable at most once, only while active and before expiry. Generating a
// new code for an apartment deactivates the previous one.
type InvitationCode struct {
	ID          int64      `db:"id" json:"id"`
	Code        string     `db:"code" json:"code"`
	ApartmentID int64      `db:"apartment_id" json:"apartmentId"`
	CreatedBy   int64      `db:"created_by" json:"createdBy"`
	UsedBy      *int64     `db:"used_by" json:"usedBy"`
	UsedAt      *time.Time `db:"used_at" json:"usedAt"`
	IsActive    bool       `db:"is_active" json:"isActive"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expiresAt"`
}

// InvitationWithApartment is an invitation joined with apartment details.
type InvitationWithApartment struct {
	InvitationCode
	ApartmentNumber int `db:"apartment_number" json:"apartmentNumber"`
	BuildingNumber  int `db:"building_number" json:"buildingNumber"`
	Floor           int `db:"floor" json:"floor"`
}
