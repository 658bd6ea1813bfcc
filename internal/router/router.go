package router

import (
	"database/sql"

	"feedpos_backend/internal/handlers"
	"feedpos_backend/internal/middleware"
	"feedpos_backend/internal/repositories"
	"feedpos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, sqlDB *sql.DB) {
	db := repositories.NewDB(sqlDB)

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	inventoryService := services.NewInventoryService(inventoryRepo, db)
	saleService := services.NewSaleService(saleRepo, inventoryRepo, db)
	reportService := services.NewReportService(reportRepo, saleRepo, inventoryRepo, authRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	saleHandler := handlers.NewSaleHandler(saleService)
	reportHandler := handlers.NewReportHandler(reportService)

	api := engine.Group("/api")

	SetupAuthRoutes(api, authHandler)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupCashierRoutes(authenticated, saleHandler, reportHandler)
		SetupAdminRoutes(authenticated, authHandler, inventoryHandler, saleHandler, reportHandler)
	}
}
