package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asalkic/zgrada-server/internal/api/testutils"
	"github.com/asalkic/zgrada-server/internal/models"
)

func TestMonthlyReport(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")

	// Three apartments at 25.00/month; only the first one pays in March.
	first := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	second := testCtx.SeedApartment(t, 1, 2, 0, "25.00")
	third := testCtx.SeedApartment(t, 1, 3, 1, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", second.ID)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		models.CreatePaymentRequest{
			ApartmentID: first.ID,
			Amount:      decimal.RequireFromString("25.00"),
			PaymentDate: "2026-03-05",
			Month:       3,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/expenses",
		models.CreateExpenseRequest{
			Title:       "Stairwell lights",
			Amount:      decimal.RequireFromString("10.00"),
			Category:    models.CategoryUtilities,
			ExpenseDate: "2026-03-10",
			Month:       3,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	// Test case 1: Tenant cannot read reports
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/monthly?month=3&year=2026",
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin gets the reconciled period
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/monthly?month=3&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var report models.MonthlyReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	assert.Equal(t, "75.00", report.Expected)
	assert.Equal(t, "25.00", report.Collected)
	assert.InDelta(t, 1.0/3.0, report.Rate, 1e-9)
	assert.Equal(t, 1, report.PaidCount)
	assert.Equal(t, 2, report.DelinquentCount)
	assert.Equal(t, "10.00", report.TotalExpenses)
	assert.Equal(t, "15.00", report.Balance)

	// Delinquents are ordered by floor, then apartment number, and carry
	// the tenant name when one is bound.
	require.Len(t, report.Delinquent, 2)
	assert.Equal(t, second.ID, report.Delinquent[0].ApartmentID)
	require.NotNil(t, report.Delinquent[0].TenantName)
	assert.Equal(t, "Test Tenant", *report.Delinquent[0].TenantName)
	assert.Equal(t, third.ID, report.Delinquent[1].ApartmentID)
	assert.Nil(t, report.Delinquent[1].TenantName)

	// Test case 3: Period with no payments at all
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/monthly?month=4&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "0.00", report.Collected)
	assert.Equal(t, 0.0, report.Rate)
	assert.Equal(t, 3, report.DelinquentCount)

	// Test case 4: Invalid period
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/monthly?month=13&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonthlyReportDataIntegrity(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")

	// Two payments for the same period, bypassing the uniqueness check the
	// way a store predating the constraint could.
	for i := 0; i < 2; i++ {
		testCtx.Repository.InsertPaymentUnchecked(&models.Payment{
			ApartmentID: apartment.ID,
			Amount:      decimal.RequireFromString("25.00"),
			Month:       3,
			Year:        2026,
		})
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/monthly?month=3&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "DATA_INTEGRITY", errResp.Code)
}

func TestFloorReport(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")

	ground := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	testCtx.SeedApartment(t, 1, 2, 0, "25.00")
	testCtx.SeedApartment(t, 1, 3, 1, "25.00")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		models.CreatePaymentRequest{
			ApartmentID: ground.ID,
			Amount:      decimal.RequireFromString("25.00"),
			PaymentDate: "2026-03-05",
			Month:       3,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/floors?month=3&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var report models.FloorReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	require.Len(t, report.Floors, 2)
	assert.Equal(t, models.FloorEntry{Floor: 0, Paid: 1, Unpaid: 1}, report.Floors[0])
	assert.Equal(t, models.FloorEntry{Floor: 1, Paid: 0, Unpaid: 1}, report.Floors[1])
}

func TestYearTrend(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		models.CreatePaymentRequest{
			ApartmentID: apartment.ID,
			Amount:      decimal.RequireFromString("25.00"),
			PaymentDate: "2026-02-01",
			Month:       2,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/reports/trend?year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var trend models.TrendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))

	require.Len(t, trend.Months, 12)
	assert.Equal(t, "25.00", trend.Months[1].Collected)
	assert.Equal(t, 1.0, trend.Months[1].Rate)
	assert.Equal(t, "0.00", trend.Months[0].Collected)
	assert.Equal(t, 0.0, trend.Months[0].Rate)
}

func TestTenantStatus(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	// Test case 1: Unpaid period
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me/status?month=3&year=2026",
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.TenantStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Paid)
	assert.Nil(t, status.LastPayment)

	// Test case 2: Paid period
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		models.CreatePaymentRequest{
			ApartmentID: apartment.ID,
			Amount:      decimal.RequireFromString("25.00"),
			PaymentDate: "2026-03-05",
			Month:       3,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me/status?month=3&year=2026",
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Paid)
	require.NotNil(t, status.LastPayment)
	assert.Equal(t, apartment.ID, status.LastPayment.ApartmentID)

	// Test case 3: Admins have no apartment to ask about
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me/status?month=3&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
