package services

import (
	"database/sql"
	"fmt"
	"time"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// fakeDB satisfies repositories.DB for service tests. The fake repositories
// below keep all state in memory, so the executor methods are never reached.
type fakeDB struct {
	beginErr  error
	commits   int
	rollbacks int
}

type fakeTx struct {
	db        *fakeDB
	committed bool
}

func (d *fakeDB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (d *fakeDB) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (d *fakeDB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

func (d *fakeDB) Begin() (repositories.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return &fakeTx{db: d}, nil
}

func (t *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (t *fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

func (t *fakeTx) Commit() error {
	t.committed = true
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.db.rollbacks++
	}
	return nil
}

// --- fake auth repository ---

type fakeAuthRepo struct {
	users  map[int64]*models.User
	hashes map[int64]string
	nextID int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:  map[int64]*models.User{},
		hashes: map[int64]string{},
		nextID: 1,
	}
}

func (r *fakeAuthRepo) addUser(user models.User, hash string) *models.User {
	user.ID = r.nextID
	r.nextID++
	u := user
	r.users[u.ID] = &u
	r.hashes[u.ID] = hash
	return &u
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, passwordHash string) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	created := r.addUser(*user, passwordHash)
	user.ID = created.ID
	return created.ID, nil
}

func (r *fakeAuthRepo) FindUserByUsername(username string) (*models.User, string, error) {
	for id, user := range r.users {
		if user.Username == username {
			u := *user
			return &u, r.hashes[id], nil
		}
	}
	return nil, "", repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (r *fakeAuthRepo) GetUsers(page, pageSize int) ([]models.User, int, error) {
	users := []models.User{}
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, len(users), nil
}

func (r *fakeAuthRepo) UpdateUserStatus(_ repositories.SQLExecutor, id int64, isActive bool) error {
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsActive = isActive
	return nil
}

func (r *fakeAuthRepo) UpdatePasswordHash(_ repositories.SQLExecutor, id int64, passwordHash string) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	r.hashes[id] = passwordHash
	return nil
}

func (r *fakeAuthRepo) GetPasswordHash(id int64) (string, error) {
	hash, ok := r.hashes[id]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return hash, nil
}

func (r *fakeAuthRepo) CountUsers() (int, error) {
	return len(r.users), nil
}

// --- fake inventory repository ---

type fakeInventoryRepo struct {
	items      map[int64]*models.InventoryItem
	movements  []models.StockMovement
	nextItemID int64
	nextMvID   int64
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		items:      map[int64]*models.InventoryItem{},
		nextItemID: 1,
		nextMvID:   1,
	}
}

func (r *fakeInventoryRepo) addItem(item models.InventoryItem) *models.InventoryItem {
	item.ID = r.nextItemID
	r.nextItemID++
	i := item
	r.items[i.ID] = &i
	return &i
}

func (r *fakeInventoryRepo) CreateItem(_ repositories.SQLExecutor, item *models.InventoryItem) (int64, error) {
	for _, existing := range r.items {
		if existing.Name == item.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	created := r.addItem(*item)
	item.ID = created.ID
	return created.ID, nil
}

func (r *fakeInventoryRepo) GetItemByID(id int64) (*models.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	i := *item
	return &i, nil
}

func (r *fakeInventoryRepo) GetItems(page, pageSize int) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (r *fakeInventoryRepo) GetActiveItems() ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	for _, item := range r.items {
		if item.IsActive {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeInventoryRepo) UpdateSellingPrice(_ repositories.SQLExecutor, id int64, price decimal.Decimal) error {
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	item.CurrentPricePerKg = price
	return nil
}

func (r *fakeInventoryRepo) UpdatePurchasePrice(_ repositories.SQLExecutor, id int64, price decimal.Decimal) error {
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p := price
	item.PurchasePricePerKg = &p
	return nil
}

func (r *fakeInventoryRepo) AdjustStock(_ repositories.SQLExecutor, itemID int64, kgChange decimal.Decimal) (decimal.Decimal, error) {
	item, ok := r.items[itemID]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	newStock := item.CurrentStock.Add(kgChange)
	if newStock.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: item ID %d", repositories.ErrInsufficientStock, itemID)
	}
	item.CurrentStock = newStock
	return newStock, nil
}

func (r *fakeInventoryRepo) CreateMovement(_ repositories.SQLExecutor, movement *models.StockMovement) (int64, error) {
	movement.ID = r.nextMvID
	r.nextMvID++
	movement.CreatedAt = time.Now()
	r.movements = append(r.movements, *movement)
	return movement.ID, nil
}

func (r *fakeInventoryRepo) GetMovementsByItem(itemID int64, page, pageSize int) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	for _, mv := range r.movements {
		if mv.ItemID == itemID {
			movements = append(movements, mv)
		}
	}
	return movements, len(movements), nil
}

// --- fake sale repository ---

type fakeSaleRepo struct {
	sales      map[int64]*models.Sale
	reversals  map[int64]*models.SaleReversal // keyed by sale ID
	counter    int64
	nextSaleID int64
	nextRevID  int64
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales:      map[int64]*models.Sale{},
		reversals:  map[int64]*models.SaleReversal{},
		nextSaleID: 1,
		nextRevID:  1,
	}
}

func (r *fakeSaleRepo) NextSaleNumber(_ repositories.SQLExecutor) (int64, error) {
	r.counter++
	return r.counter, nil
}

func (r *fakeSaleRepo) CreateSale(_ repositories.SQLExecutor, sale *models.Sale) (int64, error) {
	sale.ID = r.nextSaleID
	r.nextSaleID++
	sale.CreatedAt = time.Now()
	s := *sale
	r.sales[s.ID] = &s
	return s.ID, nil
}

func (r *fakeSaleRepo) GetSaleByID(id int64) (*models.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	s := *sale
	return &s, nil
}

func (r *fakeSaleRepo) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	for _, sale := range r.sales {
		if filters.CashierID != nil && sale.CashierID != *filters.CashierID {
			continue
		}
		if filters.ItemID != nil && sale.ItemID != *filters.ItemID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && sale.Status != *filters.Status {
			continue
		}
		sales = append(sales, *sale)
	}
	return sales, len(sales), nil
}

func (r *fakeSaleRepo) GetAllSalesForExport() ([]models.Sale, error) {
	sales := []models.Sale{}
	for id := int64(1); id < r.nextSaleID; id++ {
		if sale, ok := r.sales[id]; ok {
			sales = append(sales, *sale)
		}
	}
	return sales, nil
}

func (r *fakeSaleRepo) MarkSaleReversed(_ repositories.SQLExecutor, saleID int64) error {
	sale, ok := r.sales[saleID]
	if !ok || sale.Status != models.SaleCompleted {
		return repositories.ErrNotFound
	}
	sale.Status = models.SaleReversed
	return nil
}

func (r *fakeSaleRepo) CreateReversal(_ repositories.SQLExecutor, reversal *models.SaleReversal) (int64, error) {
	if _, exists := r.reversals[reversal.SaleID]; exists {
		return 0, repositories.ErrDuplicateKey
	}
	reversal.ID = r.nextRevID
	r.nextRevID++
	reversal.CreatedAt = time.Now()
	rev := *reversal
	r.reversals[rev.SaleID] = &rev
	return rev.ID, nil
}

func (r *fakeSaleRepo) GetReversalBySaleID(saleID int64) (*models.SaleReversal, error) {
	reversal, ok := r.reversals[saleID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	rev := *reversal
	return &rev, nil
}

// --- fake report repository ---

type fakeReportRepo struct {
	saleRepo *fakeSaleRepo
}

func (r *fakeReportRepo) TodaySalesCount(cashierID *int64) (int, error) {
	count := 0
	for _, sale := range r.saleRepo.sales {
		if cashierID != nil && sale.CashierID != *cashierID {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeReportRepo) TodayRevenue(cashierID *int64) (decimal.Decimal, error) {
	revenue := decimal.Zero
	for _, sale := range r.saleRepo.sales {
		if cashierID != nil && sale.CashierID != *cashierID {
			continue
		}
		if sale.Status != models.SaleCompleted {
			continue
		}
		revenue = revenue.Add(sale.TotalPrice)
	}
	return revenue, nil
}

func (r *fakeReportRepo) RecentSalesByCashier(cashierID int64, limit int) ([]models.Sale, error) {
	sales := []models.Sale{}
	for _, sale := range r.saleRepo.sales {
		if sale.CashierID == cashierID && len(sales) < limit {
			sales = append(sales, *sale)
		}
	}
	return sales, nil
}

// --- shared test fixtures ---

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestItem(repo *fakeInventoryRepo, name, stock, price string) *models.InventoryItem {
	return repo.addItem(models.InventoryItem{
		Name:               name,
		CurrentStock:       mustDecimal(stock),
		CurrentPricePerKg:  mustDecimal(price),
		LowStockLevel:      mustDecimal("100.000"),
		CriticalStockLevel: mustDecimal("50.000"),
		IsActive:           true,
	})
}
