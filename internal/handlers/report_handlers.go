package handlers

import (
	"errors"
	"net/http"

	"feedpos_backend/internal/services"
	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// AdminDashboard returns shop-wide figures for today plus stock alerts.
func (h *ReportHandler) AdminDashboard(c *gin.Context) {
	dashboard, err := h.reportService.AdminDashboard()
	if err != nil {
		utils.LogError(err, "AdminDashboard: Error from reportService.AdminDashboard")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build admin dashboard.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// CashierDashboard returns the authenticated cashier's own daily figures.
func (h *ReportHandler) CashierDashboard(c *gin.Context) {
	cashierID, _, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.reportService.CashierDashboard(cashierID)
	if err != nil {
		utils.LogError(err, "CashierDashboard: Error from reportService.CashierDashboard")
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cashier not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build cashier dashboard.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ExportSalesCSV streams the full sales ledger as a CSV download (admin only).
func (h *ReportHandler) ExportSalesCSV(c *gin.Context) {
	data, filename, err := h.reportService.ExportSalesLedgerCSV()
	if err != nil {
		utils.LogError(err, "ExportSalesCSV: Error from reportService.ExportSalesLedgerCSV")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export sales ledger.", "Internal error"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
