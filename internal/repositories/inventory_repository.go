package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedpos_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// InventoryRepository defines the interface for inventory-related database operations.
type InventoryRepository interface {
	CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetItemByID(id int64) (*models.InventoryItem, error)
	GetItems(page, pageSize int) ([]models.InventoryItem, int, error)
	GetActiveItems() ([]models.InventoryItem, error)
	UpdateSellingPrice(executor SQLExecutor, id int64, price decimal.Decimal) error
	UpdatePurchasePrice(executor SQLExecutor, id int64, price decimal.Decimal) error

	// AdjustStock applies a signed kg change to an item's stock and returns
	// the new level. The decrement path is guarded in SQL so concurrent
	// sales serialize on the row and can never drive stock negative.
	AdjustStock(executor SQLExecutor, itemID int64, kgChange decimal.Decimal) (decimal.Decimal, error)

	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovementsByItem(itemID int64, page, pageSize int) ([]models.StockMovement, int, error)
}

type inventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const itemColumns = `id, name, description, current_stock, current_price_per_kg, purchase_price_per_kg,
	          low_stock_level, critical_stock_level, created_by, is_active, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }, item *models.InventoryItem) error {
	return row.Scan(
		&item.ID, &item.Name, &item.Description, &item.CurrentStock, &item.CurrentPricePerKg,
		&item.PurchasePricePerKg, &item.LowStockLevel, &item.CriticalStockLevel,
		&item.CreatedBy, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	)
}

func (r *inventoryRepository) CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO inventory_items
	          (name, description, current_stock, current_price_per_kg, purchase_price_per_kg,
	           low_stock_level, critical_stock_level, created_by, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.Name, item.Description, item.CurrentStock, item.CurrentPricePerKg, item.PurchasePricePerKg,
		item.LowStockLevel, item.CriticalStockLevel, item.CreatedBy, item.IsActive, currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: inventory item name '%s' already exists (constraint: %s)", ErrDuplicateKey, item.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *inventoryRepository) GetItemByID(id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`
	err := scanItem(r.db.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetItems(page, pageSize int) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0
	query := `SELECT ` + itemColumns + `, COUNT(*) OVER() AS total_count
	          FROM inventory_items
	          ORDER BY name
	          LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.CurrentStock, &item.CurrentPricePerKg,
			&item.PurchasePricePerKg, &item.LowStockLevel, &item.CriticalStockLevel,
			&item.CreatedBy, &item.IsActive, &item.CreatedAt, &item.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory items: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *inventoryRepository) GetActiveItems() ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting active inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("%w: scanning active inventory item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating active inventory items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *inventoryRepository) UpdateSellingPrice(executor SQLExecutor, id int64, price decimal.Decimal) error {
	query := `UPDATE inventory_items SET current_price_per_kg = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, price, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating selling price for item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) UpdatePurchasePrice(executor SQLExecutor, id int64, price decimal.Decimal) error {
	query := `UPDATE inventory_items SET purchase_price_per_kg = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, price, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating purchase price for item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) AdjustStock(executor SQLExecutor, itemID int64, kgChange decimal.Decimal) (decimal.Decimal, error) {
	var newStock decimal.Decimal
	// The current_stock + $1 >= 0 guard makes the check-and-update one atomic
	// statement: two concurrent sales serialize on the row lock and the
	// second fails instead of overselling.
	query := `UPDATE inventory_items
	          SET current_stock = current_stock + $1, updated_at = $2
	          WHERE id = $3 AND current_stock + $1 >= 0
	          RETURNING current_stock`
	err := executor.QueryRow(query, kgChange, time.Now(), itemID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			checkErr := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, itemID).Scan(&exists)
			if checkErr != nil {
				return decimal.Zero, fmt.Errorf("%w: checking item ID %d after failed stock update: %v", ErrDatabaseError, itemID, checkErr)
			}
			if !exists {
				return decimal.Zero, ErrNotFound
			}
			return decimal.Zero, fmt.Errorf("%w: item ID %d", ErrInsufficientStock, itemID)
		}
		return decimal.Zero, fmt.Errorf("%w: adjusting stock for item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	return newStock, nil
}

func (r *inventoryRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements (item_id, kg_change, source_type, source_id, notes, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := executor.QueryRow(query,
		movement.ItemID, movement.KgChange, movement.SourceType, movement.SourceID,
		movement.Notes, movement.CreatedBy, time.Now(),
	).Scan(&movement.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *inventoryRepository) GetMovementsByItem(itemID int64, page, pageSize int) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0
	query := `SELECT sm.id, sm.item_id, sm.kg_change, sm.source_type, sm.source_id, sm.notes,
	                 sm.created_by, sm.created_at, ii.name, COUNT(*) OVER() AS total_count
	          FROM stock_movements sm
	          JOIN inventory_items ii ON sm.item_id = ii.id
	          WHERE sm.item_id = $1
	          ORDER BY sm.created_at DESC
	          LIMIT $2 OFFSET $3`
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(query, itemID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements for item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.StockMovement
		if err := rows.Scan(
			&movement.ID, &movement.ItemID, &movement.KgChange, &movement.SourceType,
			&movement.SourceID, &movement.Notes, &movement.CreatedBy, &movement.CreatedAt,
			&movement.ItemName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}
