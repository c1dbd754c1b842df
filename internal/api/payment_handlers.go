package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListPayments returns payments filtered by ?month=&year=&apartmentId=.
func (h *Handler) ListPayments(c *gin.Context) {
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

	var apartmentID int64
	if raw := c.Query("apartmentId"); raw != "" {
		apartmentID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.badRequest(c, err)
			return
		}
	}

	payments, err := h.service.ListPayments(c.Request.Context(), principalFrom(c), month, year, apartmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "payments": payments})
}

// CreatePayment records one monthly payment.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "payment": payment})
}

// DeletePayment removes a payment record.
func (h *Handler) DeletePayment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), principalFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Status: "success", Message: "Payment deleted"})
}
