package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock movement source types. The stock_movements table is append-only:
// these three paths are the only writers of inventory_items.current_stock.
const (
	SourcePurchase = "PURCHASE"
	SourceSale     = "SALE"
	SourceReversal = "REVERSAL"
)

// Stock status levels relative to an item's alert thresholds.
const (
	StockNormal   = "NORMAL"
	StockLow      = "LOW"
	StockCritical = "CRITICAL"
)

// InventoryItem represents a feed product sold by the kilogram.
// CurrentStock carries three decimal places and never goes negative; it is
// mutated only by purchases, sales and reversals.
type InventoryItem struct {
	ID                  int64            `json:"id" db:"id"`
	Name                string           `json:"name" db:"name"`
	Description         *string          `json:"description,omitempty" db:"description"`
	CurrentStock        decimal.Decimal  `json:"current_stock" db:"current_stock"`
	CurrentPricePerKg   decimal.Decimal  `json:"current_price_per_kg" db:"current_price_per_kg"`
	PurchasePricePerKg  *decimal.Decimal `json:"purchase_price_per_kg,omitempty" db:"purchase_price_per_kg"`
	LowStockLevel       decimal.Decimal  `json:"low_stock_level" db:"low_stock_level"`
	CriticalStockLevel  decimal.Decimal  `json:"critical_stock_level" db:"critical_stock_level"`
	CreatedBy           *int64           `json:"created_by,omitempty" db:"created_by"`
	IsActive            bool             `json:"is_active" db:"is_active"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
}

// StockStatus classifies the item's stock against its alert thresholds.
func (i *InventoryItem) StockStatus() string {
	if i.CurrentStock.LessThanOrEqual(i.CriticalStockLevel) {
		return StockCritical
	}
	if i.CurrentStock.LessThanOrEqual(i.LowStockLevel) {
		return StockLow
	}
	return StockNormal
}

// StockMovement is one row of the append-only kg ledger.
type StockMovement struct {
	ID         int64           `json:"id" db:"id"`
	ItemID     int64           `json:"item_id" db:"item_id"`
	KgChange   decimal.Decimal `json:"kg_change" db:"kg_change"` // negative for sales
	SourceType string          `json:"source_type" db:"source_type"`
	SourceID   *int64          `json:"source_id,omitempty" db:"source_id"`
	Notes      *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy  *int64          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	ItemName   string          `json:"item_name,omitempty"` // joined for ledger views
}

// StockStatusRow is the per-item row of the stock dashboard.
type StockStatusRow struct {
	ItemID            int64           `json:"item_id"`
	Name              string          `json:"name"`
	TotalKg           decimal.Decimal `json:"total_kg"`
	CurrentPricePerKg decimal.Decimal `json:"current_price_per_kg"`
	StockStatus       string          `json:"stock_status"`
	StockValue        decimal.Decimal `json:"stock_value"`
}

// NewNullString returns a pointer to s, or nil for the empty string.
// Keeps optional text columns NULL instead of storing "".
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
