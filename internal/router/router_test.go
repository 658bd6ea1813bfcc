package router

import (
	"testing"

	"github.com/gin-gonic/gin"
)

// The route table is part of the external contract: clients are written
// against these exact methods and paths.
func TestSetupMountsDocumentedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Setup(engine, nil)

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/auth/login",
		"POST /api/auth/logout",
		"GET /api/auth/me",
		"POST /api/auth/change-password",

		"GET /api/inventory/items",
		"GET /api/inventory/items/:id/stock",
		"GET /api/inventory/items/:id/ledger",
		"GET /api/inventory/stock-status",
		"POST /api/inventory/convert",

		"POST /api/cashier/sales",
		"GET /api/cashier/sales/me",
		"GET /api/cashier/sales/:id",
		"POST /api/cashier/sales/:id/reverse",
		"GET /api/cashier/dashboard",

		"POST /api/admin/cashiers",
		"GET /api/admin/users",
		"PUT /api/admin/users/:id/status",
		"POST /api/admin/purchases",
		"PATCH /api/admin/inventory/:id/price",
		"PATCH /api/admin/inventory/:id/purchase-price",
		"GET /api/admin/sales/all",
		"GET /api/admin/sales/item/:id",
		"GET /api/admin/dashboard",
		"GET /api/admin/ledger/download",
	}
	for _, want := range expected {
		if !registered[want] {
			t.Errorf("route %s is not registered", want)
		}
	}
}
