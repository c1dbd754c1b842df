package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListExpenses returns expenses filtered by ?month=&year=.
func (h *Handler) ListExpenses(c *gin.Context) {
	month, err := intQuery(c, "month", 0)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	year, err := intQuery(c, "year", 0)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	expenses, err := h.service.ListExpenses(c.Request.Context(), principalFrom(c), month, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "expenses": expenses})
}

// CreateExpense records a building-wide cost.
func (h *Handler) CreateExpense(c *gin.Context) {
	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "expense": expense})
}

// DeleteExpense removes an expense record.
func (h *Handler) DeleteExpense(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.DeleteExpense(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Status: "success", Message: "Expense deleted"})
}
