package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// SignUp registers a tenant with an invitation code.
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates a user and returns a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Bootstrap creates the first admin account, guarded by the setup key.
func (h *Handler) Bootstrap(c *gin.Context) {
	var req models.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.service.Bootstrap(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetProfile returns the caller's account and apartment.
func (h *Handler) GetProfile(c *gin.Context) {
	user, apartment, err := h.service.GetProfile(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"user":      user,
		"apartment": apartment,
	})
}
