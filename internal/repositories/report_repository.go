package repositories

import (
	"fmt"

	"feedpos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// ReportRepository covers the read-only aggregations behind the dashboards.
type ReportRepository interface {
	// TodaySalesCount counts today's sales, all statuses. Pass a cashier ID
	// to scope to one cashier.
	TodaySalesCount(cashierID *int64) (int, error)
	// TodayRevenue sums today's completed sale totals; reversed sales do not
	// contribute revenue.
	TodayRevenue(cashierID *int64) (decimal.Decimal, error)
	RecentSalesByCashier(cashierID int64, limit int) ([]models.Sale, error)
}

type reportRepository struct {
	db DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) TodaySalesCount(cashierID *int64) (int, error) {
	var count int
	var err error
	if cashierID != nil {
		query := `SELECT COUNT(*) FROM sales WHERE created_at::date = CURRENT_DATE AND cashier_id = $1`
		err = r.db.QueryRow(query, *cashierID).Scan(&count)
	} else {
		query := `SELECT COUNT(*) FROM sales WHERE created_at::date = CURRENT_DATE`
		err = r.db.QueryRow(query).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: counting today's sales: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *reportRepository) TodayRevenue(cashierID *int64) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	var err error
	if cashierID != nil {
		query := `SELECT COALESCE(SUM(total_price), 0) FROM sales
		          WHERE created_at::date = CURRENT_DATE AND status = $1 AND cashier_id = $2`
		err = r.db.QueryRow(query, models.SaleCompleted, *cashierID).Scan(&revenue)
	} else {
		query := `SELECT COALESCE(SUM(total_price), 0) FROM sales
		          WHERE created_at::date = CURRENT_DATE AND status = $1`
		err = r.db.QueryRow(query, models.SaleCompleted).Scan(&revenue)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: summing today's revenue: %v", ErrDatabaseError, err)
	}
	return revenue, nil
}

func (r *reportRepository) RecentSalesByCashier(cashierID int64, limit int) ([]models.Sale, error) {
	sales := []models.Sale{}
	query := saleSelect + ` WHERE s.cashier_id = $1 ORDER BY s.created_at DESC LIMIT $2`
	rows, err := r.db.Query(query, cashierID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: getting recent sales for cashier ID %d: %v", ErrDatabaseError, cashierID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := scanSale(rows, &sale); err != nil {
			return nil, fmt.Errorf("%w: scanning recent sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating recent sales: %v", ErrDatabaseError, err)
	}
	return sales, nil
}
