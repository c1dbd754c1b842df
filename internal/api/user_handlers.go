package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListUsers returns users, optionally filtered by ?role=.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), principalFrom(c), c.Query("role"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}

// UpdateUser edits a user's name, apartment binding or active flag.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), principalFrom(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}

// DeactivateUser soft-deletes a user account.
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Status: "success", Message: "User deactivated"})
}
