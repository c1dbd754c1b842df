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

func TestCreateInvitation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")
	_, tenantToken := testCtx.SeedTenant(t, "tenant@example.com", apartment.ID)

	// Test case 1: Tenant cannot create invitations
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/invitations",
		models.CreateInvitationRequest{ApartmentID: apartment.ID},
		testutils.AuthHeaders(tenantToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 2: Admin creates a code
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/invitations",
		models.CreateInvitationRequest{ApartmentID: apartment.ID},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var first models.InvitationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotNil(t, first.Invitation)
	assert.Len(t, first.Invitation.Code, 8)
	assert.True(t, first.Invitation.IsActive)
	require.NotNil(t, first.Invitation.ExpiresAt)

	// Test case 3: A second code supersedes the first
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/invitations",
		models.CreateInvitationRequest{ApartmentID: apartment.ID},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var second models.InvitationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.NotEqual(t, first.Invitation.Code, second.Invitation.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/invitations",
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Invitations []models.InvitationWithApartment `json:"invitations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Invitations, 2)

	active := 0
	for _, invitation := range list.Invitations {
		if invitation.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)

	// Test case 4: Unknown apartment
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/invitations",
		models.CreateInvitationRequest{ApartmentID: 9999},
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivateInvitation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	_, adminToken := testCtx.SeedAdmin(t, "admin@example.com")
	apartment := testCtx.SeedApartment(t, 1, 1, 0, "25.00")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/invitations",
		models.CreateInvitationRequest{ApartmentID: apartment.ID},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.InvitationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/invitations/%d", created.Invitation.ID),
		nil,
		testutils.AuthHeaders(adminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// A deactivated code no longer admits signups
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		models.SignUpRequest{
			InvitationCode: created.Invitation.Code,
			Email:          "late@example.com",
			Password:       "password123",
			FullName:       "Late Tenant",
		},
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
