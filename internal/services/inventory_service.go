package services

import (
	"errors"
	"fmt"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/repositories"
	"feedpos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors ---
var (
	ErrValidation        = errors.New("validation failed")
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrDuplicateItemName = errors.New("inventory item name already exists")
)

// sellingPriceMarkup is the default markup applied when a new item is
// created from a purchase without an explicit selling price.
var sellingPriceMarkup = decimal.NewFromFloat(1.5)

// --- Data Transfer Objects (DTOs) ---

// PurchaseRequest records a stock purchase. Either ItemID (existing item)
// or Name (new item) must be set.
type PurchaseRequest struct {
	ItemID             *int64           `json:"item_id"`
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	KgAdded            decimal.Decimal  `json:"kg_added" binding:"required"`
	PurchasePricePerKg *decimal.Decimal `json:"purchase_price_per_kg"`
	CurrentPricePerKg  *decimal.Decimal `json:"current_price_per_kg"`
	SupplierName       *string          `json:"supplier_name"`
	Notes              *string          `json:"notes"`
}

// PurchaseResult is the item snapshot plus the ledger entry the purchase
// appended.
type PurchaseResult struct {
	Item     *models.InventoryItem `json:"item"`
	Movement *models.StockMovement `json:"movement"`
}

// PriceUpdateRequest carries a single price field.
type PriceUpdateRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// ConversionRequest converts between kg and price for one item.
type ConversionRequest struct {
	ItemID int64           `json:"item_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	IsKg   bool            `json:"is_kg"`
}

// ConversionResponse carries both sides of the conversion.
type ConversionResponse struct {
	ItemID            int64           `json:"item_id"`
	ItemName          string          `json:"item_name"`
	KgAmount          decimal.Decimal `json:"kg_amount"`
	PriceAmount       decimal.Decimal `json:"price_amount"`
	CurrentPricePerKg decimal.Decimal `json:"current_price_per_kg"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	RecordPurchase(req PurchaseRequest, adminID int64) (*PurchaseResult, error)
	SetSellingPrice(itemID int64, price decimal.Decimal) (*models.InventoryItem, error)
	SetPurchasePrice(itemID int64, price decimal.Decimal) (*models.InventoryItem, error)
	GetItems(page, pageSize int) ([]models.InventoryItem, int, error)
	GetItemStock(itemID int64) (*models.StockStatusRow, error)
	GetStockStatus() ([]models.StockStatusRow, error)
	GetItemLedger(itemID int64, page, pageSize int) ([]models.StockMovement, int, error)
	Convert(req ConversionRequest) (*ConversionResponse, error)
}

// --- inventoryService Implementation ---
type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	db            repositories.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(inventoryRepo repositories.InventoryRepository, db repositories.DB) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		db:            db,
	}
}

// RecordPurchase increases stock for an existing item or creates a new one
// with its starting stock. Stock write and ledger entry share a transaction.
func (s *inventoryService) RecordPurchase(req PurchaseRequest, adminID int64) (*PurchaseResult, error) {
	if !req.KgAdded.IsPositive() {
		return nil, fmt.Errorf("%w: kg_added must be positive", ErrValidation)
	}
	if !utils.ValidKgPrecision(req.KgAdded) {
		return nil, fmt.Errorf("%w: kg_added must have at most %d decimal places", ErrValidation, utils.KgDecimalPlaces)
	}
	if req.PurchasePricePerKg != nil && !req.PurchasePricePerKg.IsPositive() {
		return nil, fmt.Errorf("%w: purchase_price_per_kg must be positive", ErrValidation)
	}
	kgAdded := utils.NormalizeKg(req.KgAdded)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	switch {
	case req.ItemID != nil:
		item, repoErr := s.inventoryRepo.GetItemByID(*req.ItemID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, *req.ItemID)
			}
			return nil, fmt.Errorf("failed to fetch item for purchase: %w", repoErr)
		}
		itemID = item.ID
		// Purchase price is optional on restock: it defaults to the last
		// known one and only an explicit value overwrites it.
		if req.PurchasePricePerKg != nil {
			if repoErr := s.inventoryRepo.UpdatePurchasePrice(tx, itemID, utils.RoundMoney(*req.PurchasePricePerKg)); repoErr != nil {
				return nil, fmt.Errorf("failed to update purchase price: %w", repoErr)
			}
		}

	case req.Name != nil && !utils.IsEmpty(*req.Name):
		if req.PurchasePricePerKg == nil {
			return nil, fmt.Errorf("%w: purchase_price_per_kg is required when creating a new item", ErrValidation)
		}
		purchasePrice := utils.RoundMoney(*req.PurchasePricePerKg)
		sellingPrice := utils.RoundMoney(purchasePrice.Mul(sellingPriceMarkup))
		if req.CurrentPricePerKg != nil {
			if !req.CurrentPricePerKg.IsPositive() {
				return nil, fmt.Errorf("%w: current_price_per_kg must be positive", ErrValidation)
			}
			sellingPrice = utils.RoundMoney(*req.CurrentPricePerKg)
		}
		newItem := models.InventoryItem{
			Name:               *req.Name,
			Description:        req.Description,
			CurrentStock:       decimal.Zero,
			CurrentPricePerKg:  sellingPrice,
			PurchasePricePerKg: &purchasePrice,
			LowStockLevel:      decimal.RequireFromString("100.000"),
			CriticalStockLevel: decimal.RequireFromString("50.000"),
			CreatedBy:          &adminID,
			IsActive:           true,
		}
		createdID, repoErr := s.inventoryRepo.CreateItem(tx, &newItem)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrDuplicateKey) {
				return nil, fmt.Errorf("%w: '%s'", ErrDuplicateItemName, *req.Name)
			}
			return nil, fmt.Errorf("failed to create item from purchase: %w", repoErr)
		}
		itemID = createdID

	default:
		return nil, fmt.Errorf("%w: either item_id or name must be provided", ErrValidation)
	}

	if _, err := s.inventoryRepo.AdjustStock(tx, itemID, kgAdded); err != nil {
		return nil, fmt.Errorf("failed to add purchased stock for item ID %d: %w", itemID, err)
	}

	notes := "Purchase"
	if req.SupplierName != nil && *req.SupplierName != "" {
		notes = fmt.Sprintf("Purchase: %s", *req.SupplierName)
	}
	movement := models.StockMovement{
		ItemID:     itemID,
		KgChange:   kgAdded,
		SourceType: models.SourcePurchase,
		Notes:      models.NewNullString(notes),
		CreatedBy:  &adminID,
	}
	if _, err := s.inventoryRepo.CreateMovement(tx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record purchase movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	item, err := s.inventoryRepo.GetItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("purchase recorded but failed to fetch item snapshot: %w", err)
	}
	return &PurchaseResult{Item: item, Movement: &movement}, nil
}

func (s *inventoryService) SetSellingPrice(itemID int64, price decimal.Decimal) (*models.InventoryItem, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if err := s.inventoryRepo.UpdateSellingPrice(s.db, itemID, utils.RoundMoney(price)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to set selling price: %w", err)
	}
	// Price changes affect future sales only; existing sales keep their snapshot.
	return s.inventoryRepo.GetItemByID(itemID)
}

func (s *inventoryService) SetPurchasePrice(itemID int64, price decimal.Decimal) (*models.InventoryItem, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if err := s.inventoryRepo.UpdatePurchasePrice(s.db, itemID, utils.RoundMoney(price)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to set purchase price: %w", err)
	}
	return s.inventoryRepo.GetItemByID(itemID)
}

func (s *inventoryService) GetItems(page, pageSize int) ([]models.InventoryItem, int, error) {
	items, totalCount, err := s.inventoryRepo.GetItems(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get items: %w", err)
	}
	return items, totalCount, nil
}

func (s *inventoryService) GetItemStock(itemID int64) (*models.StockStatusRow, error) {
	item, err := s.inventoryRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to get item stock: %w", err)
	}
	return stockStatusRow(item), nil
}

func (s *inventoryService) GetStockStatus() ([]models.StockStatusRow, error) {
	items, err := s.inventoryRepo.GetActiveItems()
	if err != nil {
		return nil, fmt.Errorf("failed to get stock status: %w", err)
	}
	rows := make([]models.StockStatusRow, 0, len(items))
	for i := range items {
		rows = append(rows, *stockStatusRow(&items[i]))
	}
	return rows, nil
}

func (s *inventoryService) GetItemLedger(itemID int64, page, pageSize int) ([]models.StockMovement, int, error) {
	if _, err := s.inventoryRepo.GetItemByID(itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: item ID %d", ErrItemNotFound, itemID)
		}
		return nil, 0, fmt.Errorf("failed to fetch item for ledger: %w", err)
	}
	movements, totalCount, err := s.inventoryRepo.GetMovementsByItem(itemID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get item ledger: %w", err)
	}
	return movements, totalCount, nil
}

// Convert is a pure kg/price computation against the item's current selling
// price. It never mutates anything.
func (s *inventoryService) Convert(req ConversionRequest) (*ConversionResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	item, err := s.inventoryRepo.GetItemByID(req.ItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, req.ItemID)
		}
		return nil, fmt.Errorf("failed to fetch item for conversion: %w", err)
	}

	resp := &ConversionResponse{
		ItemID:            item.ID,
		ItemName:          item.Name,
		CurrentPricePerKg: item.CurrentPricePerKg,
	}

	if req.IsKg {
		if !utils.ValidKgPrecision(req.Amount) {
			return nil, fmt.Errorf("%w: kg amount must have at most %d decimal places", ErrValidation, utils.KgDecimalPlaces)
		}
		resp.KgAmount = utils.NormalizeKg(req.Amount)
		resp.PriceAmount = utils.RoundMoney(resp.KgAmount.Mul(item.CurrentPricePerKg))
		return resp, nil
	}

	if item.CurrentPricePerKg.IsZero() {
		return nil, fmt.Errorf("%w: cannot convert price to kg while price per kg is zero", ErrValidation)
	}
	resp.PriceAmount = utils.RoundMoney(req.Amount)
	resp.KgAmount = req.Amount.DivRound(item.CurrentPricePerKg, utils.KgDecimalPlaces)
	return resp, nil
}

func stockStatusRow(item *models.InventoryItem) *models.StockStatusRow {
	return &models.StockStatusRow{
		ItemID:            item.ID,
		Name:              item.Name,
		TotalKg:           item.CurrentStock,
		CurrentPricePerKg: item.CurrentPricePerKg,
		StockStatus:       item.StockStatus(),
		StockValue:        utils.RoundMoney(item.CurrentStock.Mul(item.CurrentPricePerKg)),
	}
}
