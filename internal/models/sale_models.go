package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale status values. The only transition is completed -> reversed, one-way
// and one-shot; corrections are made by reversal, never by edit or delete.
const (
	SaleCompleted = "completed"
	SaleReversed  = "reversed"
)

// Accepted payment types.
const (
	PaymentCash  = "cash"
	PaymentMpesa = "mpesa"
	PaymentCard  = "card"
)

// Sale is one immutable ledger row. KgSold, PricePerKgSnapshot and
// TotalPrice are frozen at creation: TotalPrice is always the product of
// KgSold and the snapshot, regardless of later price changes on the item.
type Sale struct {
	ID                 int64           `json:"id" db:"id"`
	SaleNumber         string          `json:"sale_number" db:"sale_number"`
	ItemID             int64           `json:"item_id" db:"item_id"`
	ItemName           string          `json:"item_name,omitempty"` // joined
	KgSold             decimal.Decimal `json:"kg_sold" db:"kg_sold"`
	PricePerKgSnapshot decimal.Decimal `json:"price_per_kg_snapshot" db:"price_per_kg_snapshot"`
	TotalPrice         decimal.Decimal `json:"total_price" db:"total_price"`
	PaymentType        string          `json:"payment_type" db:"payment_type"`
	CashierID          int64           `json:"cashier_id" db:"cashier_id"`
	CashierName        string          `json:"cashier_name,omitempty"` // joined
	CustomerName       *string         `json:"customer_name,omitempty" db:"customer_name"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	Reversal           *SaleReversal   `json:"reversal,omitempty"`
}

// SaleReversal records the compensating entry for a reversed sale. The
// unique sale_id constraint enforces reverse-at-most-once at the database.
type SaleReversal struct {
	ID             int64     `json:"id" db:"id"`
	SaleID         int64     `json:"sale_id" db:"sale_id"`
	ReversedBy     int64     `json:"reversed_by" db:"reversed_by"`
	ReverserName   string    `json:"reverser_name,omitempty"` // joined
	ReversalReason string    `json:"reversal_reason" db:"reversal_reason"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SaleFilters narrows sale listings.
type SaleFilters struct {
	CashierID *int64
	ItemID    *int64
	Status    *string
	Date      *string // YYYY-MM-DD
	Page      int
	PageSize  int
}
