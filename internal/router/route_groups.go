package router

import (
	"feedpos_backend/internal/handlers"
	"feedpos_backend/internal/middleware"
	"feedpos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes. Login is public; the
// rest require a valid token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
			authRequiredRoutes.POST("/change-password", authHandler.ChangePassword)
		}
	}
}

// SetupInventoryRoutes sets up the inventory reads and the kg/price
// converter, available to every authenticated user. Prices and purchases
// are admin-only and live under the admin group.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	inventoryRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		inventoryRoutes.GET("/items", inventoryHandler.GetItems)
		inventoryRoutes.GET("/items/:id/stock", inventoryHandler.GetItemStock)
		inventoryRoutes.GET("/items/:id/ledger", inventoryHandler.GetItemLedger)
		inventoryRoutes.GET("/stock-status", inventoryHandler.GetStockStatus)
		inventoryRoutes.POST("/convert", inventoryHandler.Convert)
	}
}

// SetupCashierRoutes sets up the selling surface: sales, reversals and the
// cashier's own dashboard. Admins pass the role check too, so they can sell
// and reverse like any cashier.
func SetupCashierRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler, reportHandler *handlers.ReportHandler) {
	cashierRoutes := authenticatedGroup.Group("/cashier")
	cashierRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		cashierRoutes.POST("/sales", saleHandler.CreateSale)
		cashierRoutes.GET("/sales/me", saleHandler.GetMySales)
		cashierRoutes.GET("/sales/:id", saleHandler.GetSale)
		cashierRoutes.POST("/sales/:id/reverse", saleHandler.ReverseSale)
		cashierRoutes.GET("/dashboard", reportHandler.CashierDashboard)
	}
}

// SetupAdminRoutes sets up the admin-only routes: user management, stock
// purchases, pricing, shop-wide sales and the ledger export.
func SetupAdminRoutes(
	authenticatedGroup *gin.RouterGroup,
	authHandler *handlers.AuthHandler,
	inventoryHandler *handlers.InventoryHandler,
	saleHandler *handlers.SaleHandler,
	reportHandler *handlers.ReportHandler,
) {
	adminRoutes := authenticatedGroup.Group("/admin")
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.POST("/cashiers", authHandler.CreateCashier)
		adminRoutes.GET("/users", authHandler.ListUsers)
		adminRoutes.PUT("/users/:id/status", authHandler.SetUserStatus)

		adminRoutes.POST("/purchases", inventoryHandler.RecordPurchase)
		adminRoutes.PATCH("/inventory/:id/price", inventoryHandler.SetSellingPrice)
		adminRoutes.PATCH("/inventory/:id/purchase-price", inventoryHandler.SetPurchasePrice)

		adminRoutes.GET("/sales/all", saleHandler.GetAllSales)
		adminRoutes.GET("/sales/item/:id", saleHandler.GetSalesByItem)

		adminRoutes.GET("/dashboard", reportHandler.AdminDashboard)
		adminRoutes.GET("/ledger/download", reportHandler.ExportSalesCSV)
	}
}
