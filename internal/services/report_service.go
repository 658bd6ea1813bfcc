package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/repositories"
)

const recentSalesLimit = 10

// --- ReportService Interface ---
type ReportService interface {
	AdminDashboard() (*models.AdminDashboard, error)
	CashierDashboard(cashierID int64) (*models.CashierDashboard, error)
	ExportSalesLedgerCSV() ([]byte, string, error)
}

// --- reportService Implementation ---
type reportService struct {
	reportRepo    repositories.ReportRepository
	saleRepo      repositories.SaleRepository
	inventoryRepo repositories.InventoryRepository
	authRepo      repositories.AuthRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	reportRepo repositories.ReportRepository,
	saleRepo repositories.SaleRepository,
	inventoryRepo repositories.InventoryRepository,
	authRepo repositories.AuthRepository,
) ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
		authRepo:      authRepo,
	}
}

func (s *reportService) AdminDashboard() (*models.AdminDashboard, error) {
	count, err := s.reportRepo.TodaySalesCount(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's sales: %w", err)
	}
	revenue, err := s.reportRepo.TodayRevenue(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}
	alerts, err := s.stockAlerts()
	if err != nil {
		return nil, err
	}
	return &models.AdminDashboard{
		TodaySalesCount: count,
		TodayRevenue:    revenue,
		LowStockItems:   alerts,
		GeneratedAt:     time.Now(),
	}, nil
}

func (s *reportService) CashierDashboard(cashierID int64) (*models.CashierDashboard, error) {
	cashier, err := s.authRepo.FindUserByID(cashierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch cashier: %w", err)
	}

	count, err := s.reportRepo.TodaySalesCount(&cashierID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cashier's sales: %w", err)
	}
	revenue, err := s.reportRepo.TodayRevenue(&cashierID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cashier's revenue: %w", err)
	}
	recent, err := s.reportRepo.RecentSalesByCashier(cashierID, recentSalesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sales: %w", err)
	}
	alerts, err := s.stockAlerts()
	if err != nil {
		return nil, err
	}

	return &models.CashierDashboard{
		CashierName:     cashier.FullName,
		TodaySalesCount: count,
		TodayRevenue:    revenue,
		RecentSales:     recent,
		StockAlerts:     alerts,
		GeneratedAt:     time.Now(),
	}, nil
}

// stockAlerts returns active items at or below their low stock threshold.
func (s *reportService) stockAlerts() ([]models.StockStatusRow, error) {
	items, err := s.inventoryRepo.GetActiveItems()
	if err != nil {
		return nil, fmt.Errorf("failed to get items for stock alerts: %w", err)
	}
	alerts := []models.StockStatusRow{}
	for i := range items {
		if items[i].StockStatus() == models.StockNormal {
			continue
		}
		alerts = append(alerts, *stockStatusRow(&items[i]))
	}
	return alerts, nil
}

// ExportSalesLedgerCSV writes the full sales history, reversed rows
// included, as CSV. Returns the file bytes and a dated filename.
func (s *reportService) ExportSalesLedgerCSV() ([]byte, string, error) {
	sales, err := s.saleRepo.GetAllSalesForExport()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get sales for export: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"sale_number", "created_at", "item_name", "kg_sold", "price_per_kg",
		"total_price", "payment_type", "cashier_name", "customer_name", "status",
	}
	if err := writer.Write(header); err != nil {
		return nil, "", fmt.Errorf("failed to write export header: %w", err)
	}

	for i := range sales {
		sale := &sales[i]
		customer := ""
		if sale.CustomerName != nil {
			customer = *sale.CustomerName
		}
		record := []string{
			sale.SaleNumber,
			sale.CreatedAt.Format(time.RFC3339),
			sale.ItemName,
			sale.KgSold.String(),
			sale.PricePerKgSnapshot.String(),
			sale.TotalPrice.String(),
			sale.PaymentType,
			sale.CashierName,
			customer,
			sale.Status,
		}
		if err := writer.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write export row for sale %s: %w", sale.SaleNumber, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush sales export: %w", err)
	}

	filename := "sales_ledger_" + time.Now().Format("2006-01-02") + ".csv"
	return buf.Bytes(), filename, nil
}
