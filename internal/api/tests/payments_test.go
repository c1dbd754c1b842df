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

func TestCreatePayment(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	req := models.CreatePaymentRequest{
		ApartmentID: apartment.ID,
		Amount:      decimal.RequireFromString("25.00"),
		PaymentDate: "2026-03-05",
		Month:       3,
		Year:        2026,
	}

	// Test case 1: Tenant cannot record payments
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		req,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin records a payment
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		req,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	// Test case 3: Same apartment and period is rejected, not overwritten
	req.Amount = decimal.RequireFromString("30.00")
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		req,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "DUPLICATE_PAYMENT", errResp.Code)

	// Test case 4: Unknown apartment
	req.ApartmentID = 9999
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		req,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 5: Malformed payment date
	req.ApartmentID = apartment.ID
	req.Month = 4
	req.PaymentDate = "05-03-2026"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		req,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPayments(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	first := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	second := testCtx.SeedApartment(t, 1, 2, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", first.ID)

	for _, apartment := range []int64{first.ID, second.ID} {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/payments",
			models.CreatePaymentRequest{
				ApartmentID: apartment,
				Amount:      decimal.RequireFromString("25.00"),
				PaymentDate: "2026-03-05",
				Month:       3,
				Year:        2026,
			},
			testutils.AuthHeaders(adminToken),
		)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	type listResponse struct {
		Status   string                        `json:"status"`
		Payments []models.PaymentWithApartment `json:"payments"`
	}

	// Test case 1: Admin sees every payment
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/payments?month=3&year=2026",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var adminList listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adminList))
	assert.Len(t, adminList.Payments, 2)

	// Test case 2: Tenant only sees their own apartment, even when asking
	// for another one
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		fmt.Sprintf("/api/payments?month=3&year=2026&apartmentId=%d", second.ID),
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var tenantList listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tenantList))
	require.Len(t, tenantList.Payments, 1)
	assert.Equal(t, first.ID, tenantList.Payments[0].ApartmentID)
}

func TestDeletePayment(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	w := testutils.PerformRequest(
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

	var created struct {
		Payment models.Payment `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Test case 1: Tenant cannot delete
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/payments/%d", created.Payment.ID),
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin deletes
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/payments/%d", created.Payment.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 3: Deleting again reports not found
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/payments/%d", created.Payment.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Once a payment is deleted the period can be recorded again
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/payments",
		models.CreatePaymentRequest{
			ApartmentID: apartment.ID,
			Amount:      decimal.RequireFromString("25.00"),
			PaymentDate: "2026-03-20",
			Month:       3,
			Year:        2026,
		},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)
}
