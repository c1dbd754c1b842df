package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asalkic/zgrada-server/internal/api/testutils"
	"github.com/asalkic/zgrada-server/internal/models"
)

func TestListUsers(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	// Test case 1: Tenant cannot list users
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users",
		nil,
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin lists everyone, joined with apartment details
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Users []models.UserWithApartment `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Users, 2)

	// Test case 3: Role filter
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users?role=tenant",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Users, 1)
	assert.Equal(t, models.RoleTenant, list.Users[0].Role)
	require.NotNil(t, list.Users[0].ApartmentNumber)
	assert.Equal(t, 1, *list.Users[0].ApartmentNumber)
}

func TestUpdateUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	admin, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	tenant, _ := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	// Test case 1: Rename a tenant
	newName := "Renamed Tenant"
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/users/%d", tenant.ID),
		models.UpdateUserRequest{FullName: &newName},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, newName, body.User.FullName)

	// Test case 2: Admins cannot deactivate themselves
	inactive := false
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/users/%d", admin.ID),
		models.UpdateUserRequest{IsActive: &inactive},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 3: Unknown user
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/users/9999",
		models.UpdateUserRequest{FullName: &newName},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivateUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	admin, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	tenant, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	// Test case 1: Self-deactivation is refused
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/users/%d", admin.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 2: Deactivate the tenant
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/users/%d", tenant.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 3: Deactivated tenants cannot log in
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "tenant@example.com", Password: "tenantpassword"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Their old token still parses, so requests authenticate, but the
	// record is inactive; they vanish from the active-tenant join.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me",
		nil,
		testutils.AuthHeaders(tenantToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)
}
