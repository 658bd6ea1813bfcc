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
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleAlreadyReversed = errors.New("sale has already been reversed")
	ErrNotSaleOwner        = errors.New("sale belongs to another cashier")
	ErrInsufficientStock   = errors.New("insufficient stock for sale")
	ErrInvalidPaymentType  = errors.New("invalid payment type")
)

// --- Data Transfer Objects (DTOs) ---

// CreateSaleRequest is the cashier-facing sale payload. The price is never
// part of it: the item's current selling price is snapshotted server-side.
type CreateSaleRequest struct {
	ItemID       int64           `json:"item_id" binding:"required"`
	KgSold       decimal.Decimal `json:"kg_sold" binding:"required"`
	PaymentType  string          `json:"payment_type" binding:"required"`
	CustomerName *string         `json:"customer_name"`
}

// ReverseSaleRequest carries the mandatory reason for a reversal.
type ReverseSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// --- SaleService Interface ---
type SaleService interface {
	CreateSale(req CreateSaleRequest, cashierID int64) (*models.Sale, error)
	ReverseSale(saleID int64, req ReverseSaleRequest, actorID int64, actorRole string) (*models.Sale, error)
	GetSaleByID(saleID int64) (*models.Sale, error)
	GetSalesByCashier(cashierID int64, date *string, page, pageSize int) ([]models.Sale, int, error)
	GetAllSales(filters models.SaleFilters) ([]models.Sale, int, error)
}

// --- saleService Implementation ---
type saleService struct {
	saleRepo      repositories.SaleRepository
	inventoryRepo repositories.InventoryRepository
	db            repositories.DB
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(saleRepo repositories.SaleRepository, inventoryRepo repositories.InventoryRepository, db repositories.DB) SaleService {
	return &saleService{
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
		db:            db,
	}
}

func isValidPaymentType(paymentType string) bool {
	switch paymentType {
	case models.PaymentCash, models.PaymentMpesa, models.PaymentCard:
		return true
	}
	return false
}

// CreateSale runs the whole sale as one transaction: number allocation,
// stock decrement, sale row and ledger entry commit together or not at all.
func (s *saleService) CreateSale(req CreateSaleRequest, cashierID int64) (*models.Sale, error) {
	if !req.KgSold.IsPositive() {
		return nil, fmt.Errorf("%w: kg_sold must be positive", ErrValidation)
	}
	if !utils.ValidKgPrecision(req.KgSold) {
		return nil, fmt.Errorf("%w: kg_sold must have at most %d decimal places", ErrValidation, utils.KgDecimalPlaces)
	}
	if !isValidPaymentType(req.PaymentType) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidPaymentType, req.PaymentType)
	}
	kgSold := utils.NormalizeKg(req.KgSold)

	item, err := s.inventoryRepo.GetItemByID(req.ItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, req.ItemID)
		}
		return nil, fmt.Errorf("failed to fetch item for sale: %w", err)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: item '%s' is not active", ErrValidation, item.Name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	number, err := s.saleRepo.NextSaleNumber(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sale number: %w", err)
	}

	// The guarded decrement is the single authority on overselling.
	if _, err := s.inventoryRepo.AdjustStock(tx, item.ID, kgSold.Neg()); err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: item '%s' has %s kg available", ErrInsufficientStock, item.Name, item.CurrentStock.String())
		}
		return nil, fmt.Errorf("failed to decrement stock for sale: %w", err)
	}

	sale := models.Sale{
		SaleNumber:         fmt.Sprintf("SALE-%06d", number),
		ItemID:             item.ID,
		ItemName:           item.Name,
		KgSold:             kgSold,
		PricePerKgSnapshot: item.CurrentPricePerKg,
		TotalPrice:         utils.RoundMoney(kgSold.Mul(item.CurrentPricePerKg)),
		PaymentType:        req.PaymentType,
		CashierID:          cashierID,
		CustomerName:       req.CustomerName,
		Status:             models.SaleCompleted,
	}
	saleID, err := s.saleRepo.CreateSale(tx, &sale)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	movement := models.StockMovement{
		ItemID:     item.ID,
		KgChange:   kgSold.Neg(),
		SourceType: models.SourceSale,
		SourceID:   &saleID,
		Notes:      models.NewNullString(fmt.Sprintf("Sale %s", sale.SaleNumber)),
		CreatedBy:  &cashierID,
	}
	if _, err := s.inventoryRepo.CreateMovement(tx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record sale movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	created, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		// The sale is committed; fall back to the in-memory copy.
		return &sale, nil
	}
	return created, nil
}

// ReverseSale restores the sold kg and flips the status, all in one
// transaction. Cashiers may reverse only their own sales; admins any sale.
func (s *saleService) ReverseSale(saleID int64, req ReverseSaleRequest, actorID int64, actorRole string) (*models.Sale, error) {
	if utils.IsEmpty(req.Reason) {
		return nil, fmt.Errorf("%w: reversal reason is required", ErrValidation)
	}

	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale ID %d", ErrSaleNotFound, saleID)
		}
		return nil, fmt.Errorf("failed to fetch sale for reversal: %w", err)
	}
	if sale.Status == models.SaleReversed {
		return nil, fmt.Errorf("%w: sale %s", ErrSaleAlreadyReversed, sale.SaleNumber)
	}
	if actorRole != models.RoleAdmin && sale.CashierID != actorID {
		return nil, fmt.Errorf("%w: sale %s", ErrNotSaleOwner, sale.SaleNumber)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// The status guard in the UPDATE closes the race between two concurrent
	// reversal requests that both passed the check above.
	if err := s.saleRepo.MarkSaleReversed(tx, saleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrSaleAlreadyReversed, sale.SaleNumber)
		}
		return nil, fmt.Errorf("failed to mark sale reversed: %w", err)
	}

	reversal := models.SaleReversal{
		SaleID:         saleID,
		ReversedBy:     actorID,
		ReversalReason: req.Reason,
	}
	if _, err := s.saleRepo.CreateReversal(tx, &reversal); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: sale %s", ErrSaleAlreadyReversed, sale.SaleNumber)
		}
		return nil, fmt.Errorf("failed to create sale reversal: %w", err)
	}

	if _, err := s.inventoryRepo.AdjustStock(tx, sale.ItemID, sale.KgSold); err != nil {
		return nil, fmt.Errorf("failed to restore stock for reversal: %w", err)
	}

	movement := models.StockMovement{
		ItemID:     sale.ItemID,
		KgChange:   sale.KgSold,
		SourceType: models.SourceReversal,
		SourceID:   &saleID,
		Notes:      models.NewNullString(fmt.Sprintf("Reversal of %s: %s", sale.SaleNumber, req.Reason)),
		CreatedBy:  &actorID,
	}
	if _, err := s.inventoryRepo.CreateMovement(tx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record reversal movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reversal transaction: %w", err)
	}

	return s.GetSaleByID(saleID)
}

// GetSaleByID returns the sale with its reversal details attached when present.
func (s *saleService) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale ID %d", ErrSaleNotFound, saleID)
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale.Status == models.SaleReversed {
		reversal, revErr := s.saleRepo.GetReversalBySaleID(saleID)
		if revErr != nil && !errors.Is(revErr, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to get sale reversal: %w", revErr)
		}
		sale.Reversal = reversal
	}
	return sale, nil
}

func (s *saleService) GetSalesByCashier(cashierID int64, date *string, page, pageSize int) ([]models.Sale, int, error) {
	filters := models.SaleFilters{
		CashierID: &cashierID,
		Date:      date,
		Page:      page,
		PageSize:  pageSize,
	}
	return s.GetAllSales(filters)
}

func (s *saleService) GetAllSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	if filters.Status != nil && *filters.Status != "" &&
		*filters.Status != models.SaleCompleted && *filters.Status != models.SaleReversed {
		return nil, 0, fmt.Errorf("%w: unknown sale status '%s'", ErrValidation, *filters.Status)
	}
	sales, totalCount, err := s.saleRepo.GetSales(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, totalCount, nil
}
