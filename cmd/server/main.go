package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"feedpos_backend/internal/database"
	"feedpos_backend/internal/middleware"
	"feedpos_backend/internal/repositories"
	"feedpos_backend/internal/router"
	"feedpos_backend/internal/services"
	"feedpos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	utils.InitLogger()

	jwtSecret := utils.Getenv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	jwtTTLHours, err := strconv.Atoi(utils.Getenv("JWT_TTL_HOURS", "8"))
	if err != nil || jwtTTLHours <= 0 {
		log.Fatal("JWT_TTL_HOURS must be a positive integer")
	}
	utils.InitJWT(jwtSecret, time.Duration(jwtTTLHours)*time.Hour)

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "feedpos_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "feedpos_password")
	dbName := utils.Getenv("DB_NAME", "feedpos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbHost, "name": dbName})

	dbConn := database.GetDB()

	// Bootstrap the first admin account on an empty users table.
	db := repositories.NewDB(dbConn)
	authService := services.NewAuthService(repositories.NewAuthRepository(db), db)
	if err := authService.EnsureAdminUser(
		utils.Getenv("ADMIN_USERNAME", "admin"),
		utils.Getenv("ADMIN_FULL_NAME", "Shop Administrator"),
		utils.Getenv("ADMIN_PASSWORD", "changeme123"),
	); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	engine := gin.Default()

	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, dbConn)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
