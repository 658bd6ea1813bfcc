package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/services"
	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

func respondSaleError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidPaymentType):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
	case errors.Is(err, services.ErrSaleNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", err.Error()))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Not enough stock to complete the sale.", err.Error()))
	case errors.Is(err, services.ErrSaleAlreadyReversed):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Sale has already been reversed.", err.Error()))
	case errors.Is(err, services.ErrNotSaleOwner):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You may only reverse your own sales.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Sale operation failed.", "Internal error"))
	}
}

// CreateSale records a sale for the authenticated cashier.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	cashierID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSale: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	sale, err := h.saleService.CreateSale(req, cashierID)
	if err != nil {
		respondSaleError(c, err, "CreateSale: Error from saleService.CreateSale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// ReverseSale reverses a completed sale. Cashiers may reverse only their own
// sales; admins may reverse any sale.
func (h *SaleHandler) ReverseSale(c *gin.Context) {
	actorID, actorRole, ok := currentUser(c)
	if !ok {
		return
	}
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ReverseSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReverseSale: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	sale, err := h.saleService.ReverseSale(saleID, req, actorID, actorRole)
	if err != nil {
		respondSaleError(c, err, "ReverseSale: Error from saleService.ReverseSale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetSale returns one sale with reversal details when present. Cashiers can
// only see their own sales.
func (h *SaleHandler) GetSale(c *gin.Context) {
	actorID, actorRole, ok := currentUser(c)
	if !ok {
		return
	}
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSaleByID(saleID)
	if err != nil {
		respondSaleError(c, err, "GetSale: Error from saleService.GetSaleByID")
		return
	}
	if actorRole != models.RoleAdmin && sale.CashierID != actorID {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You may only view your own sales.", "sale belongs to another cashier"))
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetMySales lists the authenticated cashier's own sales.
func (h *SaleHandler) GetMySales(c *gin.Context) {
	cashierID, _, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	var date *string
	if d := c.Query("date"); d != "" {
		date = &d
	}

	sales, totalCount, err := h.saleService.GetSalesByCashier(cashierID, date, page, pageSize)
	if err != nil {
		respondSaleError(c, err, "GetMySales: Error from saleService.GetSalesByCashier")
		return
	}
	paginatedResponse(c, sales, totalCount, page, pageSize)
}

// GetSalesByItem lists every sale of one item (admin only).
func (h *SaleHandler) GetSalesByItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	filters := models.SaleFilters{ItemID: &itemID, Page: page, PageSize: pageSize}
	sales, totalCount, err := h.saleService.GetAllSales(filters)
	if err != nil {
		respondSaleError(c, err, "GetSalesByItem: Error from saleService.GetAllSales")
		return
	}
	paginatedResponse(c, sales, totalCount, page, pageSize)
}

// GetAllSales lists sales across all cashiers with filters (admin only).
func (h *SaleHandler) GetAllSales(c *gin.Context) {
	page, pageSize := pagination(c)
	filters := models.SaleFilters{Page: page, PageSize: pageSize}

	if v := c.Query("cashier_id"); v != "" {
		cashierID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid cashier_id query parameter.", v))
			return
		}
		filters.CashierID = &cashierID
	}
	if v := c.Query("item_id"); v != "" {
		itemID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid item_id query parameter.", v))
			return
		}
		filters.ItemID = &itemID
	}
	if v := c.Query("status"); v != "" {
		filters.Status = &v
	}
	if v := c.Query("date"); v != "" {
		filters.Date = &v
	}

	sales, totalCount, err := h.saleService.GetAllSales(filters)
	if err != nil {
		respondSaleError(c, err, "GetAllSales: Error from saleService.GetAllSales")
		return
	}
	paginatedResponse(c, sales, totalCount, page, pageSize)
}
