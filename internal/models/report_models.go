package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminDashboard aggregates today's trade and stock alerts for the admin view.
type AdminDashboard struct {
	TodaySalesCount int              `json:"today_sales_count"`
	TodayRevenue    decimal.Decimal  `json:"today_revenue"`
	LowStockItems   []StockStatusRow `json:"low_stock_items"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// CashierDashboard is the cashier's view of their own day.
type CashierDashboard struct {
	CashierName     string           `json:"cashier_name"`
	TodaySalesCount int              `json:"today_sales_count"`
	TodayRevenue    decimal.Decimal  `json:"today_revenue"`
	RecentSales     []Sale           `json:"recent_sales"`
	StockAlerts     []StockStatusRow `json:"stock_alerts"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
