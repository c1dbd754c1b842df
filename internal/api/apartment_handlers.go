package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListApartments returns the apartment roster. Admins get tenant details
// via ?withTenants=true; tenants only ever see their own apartment.
func (h *Handler) ListApartments(c *gin.Context) {
	principal := principalFrom(c)

	if c.Query("withTenants") == "true" {
		apartments, err := h.service.ListApartmentsWithTenants(c.Request.Context(), principal)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "apartments": apartments})
		return
	}

	apartments, err := h.service.ListApartments(c.Request.Context(), principal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "apartments": apartments})
}

// UpdateApartment edits the monthly fee or size of an apartment.
func (h *Handler) UpdateApartment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	var req models.UpdateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	apartment, err := h.service.UpdateApartment(c.Request.Context(), principalFrom(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "apartment": apartment})
}
