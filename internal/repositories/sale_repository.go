package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedpos_backend/internal/models"

	"github.com/lib/pq"
)

// SaleRepository defines the interface for sale and reversal database operations.
type SaleRepository interface {
	// NextSaleNumber increments the single-row sale counter and returns the
	// new value. The row lock taken by the UPDATE serializes concurrent
	// sale transactions, so numbers are unique and monotonically increasing.
	NextSaleNumber(executor SQLExecutor) (int64, error)

	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	GetSaleByID(id int64) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetAllSalesForExport() ([]models.Sale, error)
	MarkSaleReversed(executor SQLExecutor, saleID int64) error
	CreateReversal(executor SQLExecutor, reversal *models.SaleReversal) (int64, error)
	GetReversalBySaleID(saleID int64) (*models.SaleReversal, error)
}

type saleRepository struct {
	db DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) NextSaleNumber(executor SQLExecutor) (int64, error) {
	var next int64
	query := `UPDATE sale_counters SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number`
	err := executor.QueryRow(query).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("%w: advancing sale counter: %v", ErrDatabaseError, err)
	}
	return next, nil
}

func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales
	          (sale_number, item_id, kg_sold, price_per_kg_snapshot, total_price, payment_type,
	           cashier_id, customer_name, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		sale.SaleNumber, sale.ItemID, sale.KgSold, sale.PricePerKgSnapshot, sale.TotalPrice,
		sale.PaymentType, sale.CashierID, sale.CustomerName, sale.Status, time.Now(),
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: sale number '%s' already exists (constraint: %s)", ErrDuplicateKey, sale.SaleNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

const saleSelect = `SELECT s.id, s.sale_number, s.item_id, ii.name, s.kg_sold, s.price_per_kg_snapshot,
	       s.total_price, s.payment_type, s.cashier_id, u.full_name, s.customer_name, s.status, s.created_at
	FROM sales s
	JOIN inventory_items ii ON s.item_id = ii.id
	JOIN users u ON s.cashier_id = u.id`

func scanSale(row interface{ Scan(...interface{}) error }, sale *models.Sale, extra ...interface{}) error {
	dest := []interface{}{
		&sale.ID, &sale.SaleNumber, &sale.ItemID, &sale.ItemName, &sale.KgSold,
		&sale.PricePerKgSnapshot, &sale.TotalPrice, &sale.PaymentType, &sale.CashierID,
		&sale.CashierName, &sale.CustomerName, &sale.Status, &sale.CreatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

func (r *saleRepository) GetSaleByID(id int64) (*models.Sale, error) {
	sale := &models.Sale{}
	query := saleSelect + ` WHERE s.id = $1`
	err := scanSale(r.db.QueryRow(query, id), sale)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale by ID %d: %v", ErrDatabaseError, id, err)
	}
	return sale, nil
}

func (r *saleRepository) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT s.id, s.sale_number, s.item_id, ii.name, s.kg_sold, s.price_per_kg_snapshot,
	       s.total_price, s.payment_type, s.cashier_id, u.full_name, s.customer_name, s.status, s.created_at,
	       COUNT(*) OVER() AS total_count
	FROM sales s
	JOIN inventory_items ii ON s.item_id = ii.id
	JOIN users u ON s.cashier_id = u.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CashierID != nil {
		conditions = append(conditions, fmt.Sprintf("s.cashier_id = $%d", argCount))
		args = append(args, *filters.CashierID)
		argCount++
	}
	if filters.ItemID != nil {
		conditions = append(conditions, fmt.Sprintf("s.item_id = $%d", argCount))
		args = append(args, *filters.ItemID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("s.created_at::date = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY s.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := scanSale(rows, &sale, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}
	return sales, totalCount, nil
}

func (r *saleRepository) GetAllSalesForExport() ([]models.Sale, error) {
	sales := []models.Sale{}
	// Creation order, reversed rows included: the exported ledger is the
	// complete append-only history.
	query := saleSelect + ` ORDER BY s.id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sales for export: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := scanSale(rows, &sale); err != nil {
			return nil, fmt.Errorf("%w: scanning sale for export: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sales for export: %v", ErrDatabaseError, err)
	}
	return sales, nil
}

func (r *saleRepository) MarkSaleReversed(executor SQLExecutor, saleID int64) error {
	// The status guard keeps the transition one-way and one-shot even if two
	// reversal requests race past the service-level check.
	query := `UPDATE sales SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.Exec(query, models.SaleReversed, saleID, models.SaleCompleted)
	if err != nil {
		return fmt.Errorf("%w: marking sale ID %d reversed: %v", ErrDatabaseError, saleID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepository) CreateReversal(executor SQLExecutor, reversal *models.SaleReversal) (int64, error) {
	query := `INSERT INTO sale_reversals (sale_id, reversed_by, reversal_reason, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		reversal.SaleID, reversal.ReversedBy, reversal.ReversalReason, time.Now(),
	).Scan(&reversal.ID, &reversal.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: sale ID %d already reversed (constraint: %s)", ErrDuplicateKey, reversal.SaleID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating sale reversal: %v", ErrDatabaseError, err)
	}
	return reversal.ID, nil
}

func (r *saleRepository) GetReversalBySaleID(saleID int64) (*models.SaleReversal, error) {
	reversal := &models.SaleReversal{}
	query := `SELECT sr.id, sr.sale_id, sr.reversed_by, u.full_name, sr.reversal_reason, sr.created_at
	          FROM sale_reversals sr
	          JOIN users u ON sr.reversed_by = u.id
	          WHERE sr.sale_id = $1`
	err := r.db.QueryRow(query, saleID).Scan(
		&reversal.ID, &reversal.SaleID, &reversal.ReversedBy, &reversal.ReverserName,
		&reversal.ReversalReason, &reversal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting reversal for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	return reversal, nil
}
