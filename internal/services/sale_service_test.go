package services

import (
	"errors"
	"testing"

	"feedpos_backend/internal/models"
)

func newSaleServiceForTest() (SaleService, *fakeSaleRepo, *fakeInventoryRepo, *fakeDB) {
	saleRepo := newFakeSaleRepo()
	inventoryRepo := newFakeInventoryRepo()
	db := &fakeDB{}
	return NewSaleService(saleRepo, inventoryRepo, db), saleRepo, inventoryRepo, db
}

func TestCreateSale(t *testing.T) {
	svc, _, inventoryRepo, db := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	sale, err := svc.CreateSale(CreateSaleRequest{
		ItemID:      item.ID,
		KgSold:      mustDecimal("10.5"),
		PaymentType: models.PaymentCash,
	}, 7)
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	if sale.SaleNumber != "SALE-000001" {
		t.Errorf("expected sale number SALE-000001, got %s", sale.SaleNumber)
	}
	if sale.KgSold.String() != "10.500" {
		t.Errorf("expected kg_sold 10.500, got %s", sale.KgSold.String())
	}
	if sale.TotalPrice.String() != "525.00" {
		t.Errorf("expected total 525.00, got %s", sale.TotalPrice.String())
	}
	if sale.Status != models.SaleCompleted {
		t.Errorf("expected status completed, got %s", sale.Status)
	}

	updated, _ := inventoryRepo.GetItemByID(item.ID)
	if updated.CurrentStock.String() != "89.500" {
		t.Errorf("expected stock 89.500 after sale, got %s", updated.CurrentStock.String())
	}
	if db.commits != 1 {
		t.Errorf("expected 1 commit, got %d", db.commits)
	}

	movements, _, _ := inventoryRepo.GetMovementsByItem(item.ID, 1, 10)
	if len(movements) != 1 {
		t.Fatalf("expected 1 stock movement, got %d", len(movements))
	}
	if movements[0].SourceType != models.SourceSale {
		t.Errorf("expected SALE movement, got %s", movements[0].SourceType)
	}
	if movements[0].KgChange.String() != "-10.500" {
		t.Errorf("expected kg change -10.500, got %s", movements[0].KgChange.String())
	}
}

func TestCreateSaleSnapshotsPrice(t *testing.T) {
	svc, saleRepo, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	sale, err := svc.CreateSale(CreateSaleRequest{
		ItemID:      item.ID,
		KgSold:      mustDecimal("2"),
		PaymentType: models.PaymentMpesa,
	}, 7)
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	// A later price change must not touch the recorded sale.
	inventoryRepo.items[item.ID].CurrentPricePerKg = mustDecimal("80.00")

	stored, _ := saleRepo.GetSaleByID(sale.ID)
	if stored.PricePerKgSnapshot.String() != "50.00" {
		t.Errorf("expected snapshot 50.00, got %s", stored.PricePerKgSnapshot.String())
	}
	if stored.TotalPrice.String() != "100.00" {
		t.Errorf("expected total 100.00, got %s", stored.TotalPrice.String())
	}
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	svc, saleRepo, inventoryRepo, db := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "89.500", "50.00")

	_, err := svc.CreateSale(CreateSaleRequest{
		ItemID:      item.ID,
		KgSold:      mustDecimal("200.000"),
		PaymentType: models.PaymentCash,
	}, 7)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	updated, _ := inventoryRepo.GetItemByID(item.ID)
	if updated.CurrentStock.String() != "89.500" {
		t.Errorf("stock must be unchanged after failed sale, got %s", updated.CurrentStock.String())
	}
	if len(saleRepo.sales) != 0 {
		t.Errorf("no sale row must exist after failed sale, got %d", len(saleRepo.sales))
	}
	if db.commits != 0 {
		t.Errorf("expected no commits, got %d", db.commits)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	cases := []struct {
		name string
		req  CreateSaleRequest
		want error
	}{
		{"zero kg", CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("0"), PaymentType: models.PaymentCash}, ErrValidation},
		{"negative kg", CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("-1"), PaymentType: models.PaymentCash}, ErrValidation},
		{"too many decimals", CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("10.5555"), PaymentType: models.PaymentCash}, ErrValidation},
		{"bad payment type", CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("1"), PaymentType: "cheque"}, ErrInvalidPaymentType},
		{"unknown item", CreateSaleRequest{ItemID: 999, KgSold: mustDecimal("1"), PaymentType: models.PaymentCash}, ErrItemNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateSale(tc.req, 7); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSaleInactiveItem(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Old Feed", "100.000", "50.00")
	inventoryRepo.items[item.ID].IsActive = false

	_, err := svc.CreateSale(CreateSaleRequest{
		ItemID:      item.ID,
		KgSold:      mustDecimal("1"),
		PaymentType: models.PaymentCash,
	}, 7)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inactive item, got %v", err)
	}
}

func TestSaleNumbersIncrement(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	first, err := svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("1"), PaymentType: models.PaymentCash}, 7)
	if err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	second, err := svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("1"), PaymentType: models.PaymentCard}, 7)
	if err != nil {
		t.Fatalf("second sale failed: %v", err)
	}
	if first.SaleNumber != "SALE-000001" || second.SaleNumber != "SALE-000002" {
		t.Errorf("expected consecutive sale numbers, got %s then %s", first.SaleNumber, second.SaleNumber)
	}
}

func TestReverseSaleRestoresStock(t *testing.T) {
	svc, saleRepo, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	sale, err := svc.CreateSale(CreateSaleRequest{
		ItemID:      item.ID,
		KgSold:      mustDecimal("10.500"),
		PaymentType: models.PaymentCash,
	}, 7)
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	reversed, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "customer returned feed"}, 7, models.RoleCashier)
	if err != nil {
		t.Fatalf("ReverseSale failed: %v", err)
	}
	if reversed.Status != models.SaleReversed {
		t.Errorf("expected status reversed, got %s", reversed.Status)
	}
	if reversed.Reversal == nil {
		t.Fatal("expected reversal details on reversed sale")
	}
	if reversed.Reversal.ReversalReason != "customer returned feed" {
		t.Errorf("unexpected reversal reason: %s", reversed.Reversal.ReversalReason)
	}

	updated, _ := inventoryRepo.GetItemByID(item.ID)
	if updated.CurrentStock.String() != "100.000" {
		t.Errorf("expected stock restored to 100.000, got %s", updated.CurrentStock.String())
	}

	// The original row keeps its figures; only status changed.
	stored, _ := saleRepo.GetSaleByID(sale.ID)
	if stored.TotalPrice.String() != "525.00" || stored.KgSold.String() != "10.500" {
		t.Errorf("reversed sale must keep original figures, got kg=%s total=%s", stored.KgSold, stored.TotalPrice)
	}

	movements, _, _ := inventoryRepo.GetMovementsByItem(item.ID, 1, 10)
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements (sale + reversal), got %d", len(movements))
	}
	if movements[1].SourceType != models.SourceReversal || movements[1].KgChange.String() != "10.500" {
		t.Errorf("unexpected reversal movement: %+v", movements[1])
	}
}

func TestReverseSaleTwiceConflicts(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	sale, _ := svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("5"), PaymentType: models.PaymentCash}, 7)
	if _, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "wrong item"}, 7, models.RoleCashier); err != nil {
		t.Fatalf("first reversal failed: %v", err)
	}

	_, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "again"}, 7, models.RoleCashier)
	if !errors.Is(err, ErrSaleAlreadyReversed) {
		t.Fatalf("expected ErrSaleAlreadyReversed, got %v", err)
	}

	// Stock must not be restored twice.
	updated, _ := inventoryRepo.GetItemByID(item.ID)
	if updated.CurrentStock.String() != "100.000" {
		t.Errorf("expected stock 100.000 after single reversal, got %s", updated.CurrentStock.String())
	}
}

func TestReverseSaleOwnership(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	sale, _ := svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("5"), PaymentType: models.PaymentCash}, 7)

	// Another cashier cannot reverse it.
	_, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "not mine"}, 8, models.RoleCashier)
	if !errors.Is(err, ErrNotSaleOwner) {
		t.Fatalf("expected ErrNotSaleOwner, got %v", err)
	}

	// An admin can.
	if _, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "admin correction"}, 1, models.RoleAdmin); err != nil {
		t.Fatalf("admin reversal failed: %v", err)
	}
}

func TestReverseSaleRequiresReason(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")
	sale, _ := svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("5"), PaymentType: models.PaymentCash}, 7)

	if _, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{}, 7, models.RoleCashier); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty reason, got %v", err)
	}
	if _, err := svc.ReverseSale(sale.ID, ReverseSaleRequest{Reason: "   "}, 7, models.RoleCashier); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for whitespace reason, got %v", err)
	}
}

func TestGetSalesByCashierFilters(t *testing.T) {
	svc, _, inventoryRepo, _ := newSaleServiceForTest()
	item := newTestItem(inventoryRepo, "Layer Mash", "100.000", "50.00")

	svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("1"), PaymentType: models.PaymentCash}, 7)
	svc.CreateSale(CreateSaleRequest{ItemID: item.ID, KgSold: mustDecimal("1"), PaymentType: models.PaymentCash}, 8)

	sales, total, err := svc.GetSalesByCashier(7, nil, 1, 20)
	if err != nil {
		t.Fatalf("GetSalesByCashier failed: %v", err)
	}
	if total != 1 || len(sales) != 1 {
		t.Fatalf("expected 1 sale for cashier 7, got %d", total)
	}
	if sales[0].CashierID != 7 {
		t.Errorf("expected cashier 7, got %d", sales[0].CashierID)
	}
}

func TestGetAllSalesRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newSaleServiceForTest()
	status := "pending"
	_, _, err := svc.GetAllSales(models.SaleFilters{Status: &status, Page: 1, PageSize: 20})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}
