package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/kopiaku-backend/config"
	"github.com/yeremiapane/kopiaku-backend/middlewares"
	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/router"
	"github.com/yeremiapane/kopiaku-backend/services"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

func init() {
	// Load .env di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database ke utils untuk digunakan di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Rate limiter global per IP
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Sapu periodik stok di bawah ambang notifikasi
	monitor := services.NewStockMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	// Setup router
	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Stock{},
		&models.StockLog{},
		&models.Menu{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.Notification{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
