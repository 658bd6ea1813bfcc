package handlers

import (
	"errors"
	"net/http"

	"feedpos_backend/internal/services"
	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func respondInventoryError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
	case errors.Is(err, services.ErrDuplicateItemName):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "An item with that name already exists.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Inventory operation failed.", "Internal error"))
	}
}

// RecordPurchase records a stock purchase for an existing or new item (admin only).
func (h *InventoryHandler) RecordPurchase(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RecordPurchase: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.inventoryService.RecordPurchase(req, adminID)
	if err != nil {
		respondInventoryError(c, err, "RecordPurchase: Error from inventoryService.RecordPurchase")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SetSellingPrice updates an item's selling price per kg (admin only).
// Existing sales keep the price snapshotted when they were made.
func (h *InventoryHandler) SetSellingPrice(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetSellingPrice: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.SetSellingPrice(itemID, req.Price)
	if err != nil {
		respondInventoryError(c, err, "SetSellingPrice: Error from inventoryService.SetSellingPrice")
		return
	}
	c.JSON(http.StatusOK, item)
}

// SetPurchasePrice updates an item's purchase price per kg (admin only).
func (h *InventoryHandler) SetPurchasePrice(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetPurchasePrice: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.SetPurchasePrice(itemID, req.Price)
	if err != nil {
		respondInventoryError(c, err, "SetPurchasePrice: Error from inventoryService.SetPurchasePrice")
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetItems returns a paginated item list.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	page, pageSize := pagination(c)

	items, totalCount, err := h.inventoryService.GetItems(page, pageSize)
	if err != nil {
		respondInventoryError(c, err, "GetItems: Error from inventoryService.GetItems")
		return
	}
	paginatedResponse(c, items, totalCount, page, pageSize)
}

// GetItemStock returns one item's stock level, status and value.
func (h *InventoryHandler) GetItemStock(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	row, err := h.inventoryService.GetItemStock(itemID)
	if err != nil {
		respondInventoryError(c, err, "GetItemStock: Error from inventoryService.GetItemStock")
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetStockStatus returns the stock dashboard for all active items.
func (h *InventoryHandler) GetStockStatus(c *gin.Context) {
	rows, err := h.inventoryService.GetStockStatus()
	if err != nil {
		respondInventoryError(c, err, "GetStockStatus: Error from inventoryService.GetStockStatus")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetItemLedger returns an item's stock movement history, newest first.
func (h *InventoryHandler) GetItemLedger(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	movements, totalCount, err := h.inventoryService.GetItemLedger(itemID, page, pageSize)
	if err != nil {
		respondInventoryError(c, err, "GetItemLedger: Error from inventoryService.GetItemLedger")
		return
	}
	paginatedResponse(c, movements, totalCount, page, pageSize)
}

// Convert converts between kg and price at an item's current selling price.
func (h *InventoryHandler) Convert(c *gin.Context) {
	var req services.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Convert: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.inventoryService.Convert(req)
	if err != nil {
		respondInventoryError(c, err, "Convert: Error from inventoryService.Convert")
		return
	}
	c.JSON(http.StatusOK, resp)
}
