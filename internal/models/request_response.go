package models

import "github.com/shopspring/decimal"

// Request models
type SignUpRequest struct {
	InvitationCode string `json:"invitationCode" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	FullName       string `json:"fullName" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type BootstrapRequest struct {
	SetupKey string `json:"setupKey" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
}

type CreatePaymentRequest struct {
	ApartmentID   int64           `json:"apartmentId" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   string          `json:"paymentDate" binding:"required"` // YYYY-MM-DD
	Month         int             `json:"month" binding:"required,min=1,max=12"`
	Year          int             `json:"year" binding:"required,min=2000"`
	PaymentMethod *string         `json:"paymentMethod"`
	Notes         *string         `json:"notes"`
}

type CreateExpenseRequest struct {
	Title       string          `json:"title" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required,oneof=repair maintenance utilities cleaning other"`
	Description *string         `json:"description"`
	ExpenseDate string          `json:"expenseDate" binding:"required"` // YYYY-MM-DD
	Month       int             `json:"month" binding:"required,min=1,max=12"`
	Year        int             `json:"year" binding:"required,min=2000"`
}

type CreateInvitationRequest struct {
	ApartmentID   int64 `json:"apartmentId" binding:"required"`
	ExpiresInDays int   `json:"expiresInDays"` // defaults to 90
}

type UpdateApartmentRequest struct {
	MonthlyFee *decimal.Decimal `json:"monthlyFee"`
	SizeSqm    *decimal.Decimal `json:"sizeSqm"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"fullName"`
	ApartmentID *int64  `json:"apartmentId"`
	IsActive    *bool   `json:"isActive"`
}

// Response models
type AuthResponse struct {
	Status      string `json:"status"`
	UserID      int64  `json:"userId,omitempty"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Role        string `json:"role,omitempty"`
	ApartmentID *int64 `json:"apartmentId,omitempty"`
	Token       string `json:"token,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DelinquentEntry is one unpaid apartment in a monthly report, with the
// active tenant's name when one is assigned.
type DelinquentEntry struct {
	ApartmentID     int64   `json:"apartmentId"`
	BuildingNumber  int     `json:"buildingNumber"`
	ApartmentNumber int     `json:"apartmentNumber"`
	Floor           int     `json:"floor"`
	TenantName      *string `json:"tenantName"`
}

// MonthlyReportResponse summarizes one billing period. Money values are
// rendered with two decimal places; the rate is a 0..1 fraction.
type MonthlyReportResponse struct {
	Status          string            `json:"status"`
	Month           int               `json:"month"`
	Year            int               `json:"year"`
	Expected        string            `json:"expected"`
	Collected       string            `json:"collected"`
	Rate            float64           `json:"rate"`
	PaidCount       int               `json:"paidCount"`
	DelinquentCount int               `json:"delinquentCount"`
	Delinquent      []DelinquentEntry `json:"delinquent"`
	TotalExpenses   string            `json:"totalExpenses"`
	Balance         string            `json:"balance"`
}

type FloorEntry struct {
	Floor  int `json:"floor"`
	Paid   int `json:"paid"`
	Unpaid int `json:"unpaid"`
}

type FloorReportResponse struct {
	Status string       `json:"status"`
	Month  int          `json:"month"`
	Year   int          `json:"year"`
	Floors []FloorEntry `json:"floors"`
}

type TrendEntry struct {
	Month     int     `json:"month"`
	Expected  string  `json:"expected"`
	Collected string  `json:"collected"`
	Rate      float64 `json:"rate"`
}

type TrendResponse struct {
	Status string       `json:"status"`
	Year   int          `json:"year"`
	Months []TrendEntry `json:"months"`
}

// TenantStatusResponse is the tenant-facing view of the current period.
type TenantStatusResponse struct {
	Status      string   `json:"status"`
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	ApartmentID int64    `json:"apartmentId"`
	Paid        bool     `json:"paid"`
	LastPayment *Payment `json:"lastPayment,omitempty"`
}

type InvitationResponse struct {
	Status          string          `json:"status"`
	Invitation      *InvitationCode `json:"invitation"`
	ApartmentNumber int             `json:"apartmentNumber"`
	BuildingNumber  int             `json:"buildingNumber"`
}
