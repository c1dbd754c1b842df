package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asalkic/zgrada-server/internal/api/testutils"
	"github.com/asalkic/zgrada-server/internal/models"
)

func TestExpenses(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	req := models.CreateExpenseRequest{
		Title:       "Elevator service",
		Amount:      decimal.RequireFromString("120.00"),
		Category:    models.CategoryMaintenance,
		ExpenseDate: "2026-03-12",
		Month:       3,
		Year:        2026,
	}

	// Test case 1: Tenant cannot record expenses
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/expenses",
		req,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin records an expense
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/expenses",
		req,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Expense models.Expense `json:"expense"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.CategoryMaintenance, created.Expense.Category)

	// Test case 3: Unknown category fails binding
	bad := req
	bad.Category = "entertainment"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/expenses",
		bad,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Expenses are visible to tenants
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/expenses?month=3&year=2026",
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Expenses []models.Expense `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 1)

	// Test case 5: Only admins delete expenses
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/expenses/%d", created.Expense.ID),
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/expenses/%d", created.Expense.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
}
