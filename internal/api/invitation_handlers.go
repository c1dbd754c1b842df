package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListInvitations returns all invitation codes.
func (h *Handler) ListInvitations(c *gin.Context) {
	invitations, err := h.service.ListInvitations(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "invitations": invitations})
}

// CreateInvitation generates a fresh code for an apartment.
func (h *Handler) CreateInvitation(c *gin.Context) {
	var req models.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.service.CreateInvitation(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// DeactivateInvitation retires a code.
func (h *Handler) DeactivateInvitation(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.DeactivateInvitation(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Status: "success", Message: "Invitation deactivated"})
}
