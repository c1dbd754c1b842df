package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetMonthlyReport returns the collection summary for ?month=&year=,
// defaulting to the current period.
func (h *Handler) GetMonthlyReport(c *gin.Context) {
	now := time.Now()
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		h.badRequest(c, err)
		return
	}

	report, err := h.service.MonthlyReport(c.Request.Context(), principalFrom(c), month, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetFloorReport returns the per-floor paid/unpaid breakdown.
func (h *Handler) GetFloorReport(c *gin.Context) {
	now := time.Now()
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		h.badRequest(c, err)
		return
	}

	report, err := h.service.FloorReport(c.Request.Context(), principalFrom(c), month, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetYearTrend returns monthly collection figures for ?year=.
func (h *Handler) GetYearTrend(c *gin.Context) {
	year, err := intQuery(c, "year", time.Now().Year())
	if err != nil {
		h.badRequest(c, err)
		return
	}

	trend, err := h.service.YearTrend(c.Request.Context(), principalFrom(c), year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}

// GetTenantStatus returns the caller's payment status for the period.
func (h *Handler) GetTenantStatus(c *gin.Context) {
	now := time.Now()
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		h.badRequest(c, err)
		return
	}

	status, err := h.service.TenantStatus(c.Request.Context(), principalFrom(c), month, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
