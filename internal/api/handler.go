package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/ledger"
	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/service"
)

// Handler holds the API dependencies.
type Handler struct {
	service   service.Service
	jwtSecret []byte
}

// NewHandler creates a new API handler.
func NewHandler(svc service.Service, jwtSecret []byte) *Handler {
	return &Handler{service: svc, jwtSecret: jwtSecret}
}

// SetupRoutes registers all routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/api/auth")
	auth.Use(RateLimitMiddleware(StrictLimit))
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/bootstrap", h.Bootstrap)
	}

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(LenientLimit), AuthMiddleware(h.jwtSecret))
	{
		api.GET("/me", h.GetProfile)
		api.GET("/me/status", h.GetTenantStatus)

		api.GET("/apartments", h.ListApartments)
		api.PUT("/apartments/:id", h.UpdateApartment)

		api.GET("/payments", h.ListPayments)
		api.POST("/payments", h.CreatePayment)
		api.DELETE("/payments/:id", h.DeletePayment)

		api.GET("/expenses", h.ListExpenses)
		api.POST("/expenses", h.CreateExpense)
		api.DELETE("/expenses/:id", h.DeleteExpense)

		api.GET("/invitations", h.ListInvitations)
		api.POST("/invitations", h.CreateInvitation)
		api.DELETE("/invitations/:id", h.DeactivateInvitation)

		api.GET("/users", h.ListUsers)
		api.PUT("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", h.DeactivateUser)

		api.GET("/reports/monthly", h.GetMonthlyReport)
		api.GET("/reports/floors", h.GetFloorReport)
		api.GET("/reports/trend", h.GetYearTrend)
	}
}

// respondError maps service errors to HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var integrity *ledger.IntegrityError

	switch {
	case errors.Is(err, service.ErrNotFound):
		h.writeError(c, http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, service.ErrForbidden):
		h.writeError(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, service.ErrBadSetupKey):
		h.writeError(c, http.StatusForbidden, "INVALID_SETUP_KEY", err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled):
		h.writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, service.ErrDuplicatePayment):
		h.writeError(c, http.StatusConflict, "DUPLICATE_PAYMENT", err)
	case errors.Is(err, service.ErrEmailExists):
		h.writeError(c, http.StatusConflict, "EMAIL_EXISTS", err)
	case errors.Is(err, service.ErrAdminExists):
		h.writeError(c, http.StatusConflict, "ADMIN_EXISTS", err)
	case errors.Is(err, service.ErrInvitationInvalid),
		errors.Is(err, service.ErrInvitationUsed),
		errors.Is(err, service.ErrInvitationExpired):
		h.writeError(c, http.StatusBadRequest, "INVITATION_INVALID", err)
	case errors.Is(err, service.ErrSelfDeactivation),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPeriod):
		h.writeError(c, http.StatusBadRequest, "BAD_REQUEST", err)
	case errors.As(err, &integrity):
		// Stored rows violate a ledger invariant; surfaced, not masked.
		h.writeError(c, http.StatusInternalServerError, "DATA_INTEGRITY", err)
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		})
	}
}

func (h *Handler) writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "BAD_REQUEST",
		Message: err.Error(),
	})
}

func idParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	value := c.Query(name)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
