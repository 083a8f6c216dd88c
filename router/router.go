package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kopiaku-backend/controllers"
	"github.com/yeremiapane/kopiaku-backend/middlewares"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db)
	stockCtrl := controllers.NewStockController(db)
	recipeCtrl := controllers.NewRecipeController(db)
	transactionCtrl := controllers.NewTransactionController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter ketat untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Katalog menu bisa dilihat tanpa login
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TRANSACTIONS (semua user login boleh membuat order)
	auth.POST("/transactions", transactionCtrl.CreateTransaction)
	auth.GET("/transactions", transactionCtrl.GetAllTransactions)
	auth.GET("/transactions/:transaction_id", transactionCtrl.GetTransactionByID)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("/admin")
	admin.Use(middlewares.AdminOnly())

	// STOCKS
	admin.GET("/stocks", stockCtrl.GetAllStocks)
	admin.POST("/stocks", stockCtrl.AddStock)
	admin.PATCH("/stocks/:stock_id", stockCtrl.UpdateStock)
	admin.DELETE("/stocks/:stock_id", stockCtrl.DeleteStock)
	admin.POST("/stocks/:stock_id/in", stockCtrl.StockIn)
	admin.POST("/stocks/:stock_id/out", stockCtrl.StockOut)
	admin.POST("/stocks/batch-update", stockCtrl.BatchUpdateStocks)
	admin.GET("/stock-logs", stockCtrl.GetStockLogs)

	// RECIPES
	admin.GET("/recipes", recipeCtrl.GetAllRecipes)
	admin.POST("/recipes", recipeCtrl.CreateRecipe)
	admin.PATCH("/recipes/:recipe_id", recipeCtrl.UpdateRecipe)
	admin.DELETE("/recipes/:recipe_id", recipeCtrl.DeleteRecipe)

	// MENUS
	admin.POST("/menus", menuCtrl.CreateMenu)
	admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// TRANSACTIONS (mutasi status + purge + rekonsiliasi)
	admin.PATCH("/transactions/:transaction_id/status", transactionCtrl.UpdateTransactionStatus)
	admin.DELETE("/transactions/:transaction_id", transactionCtrl.DeleteTransaction)
	admin.POST("/transactions/reconciliation", transactionCtrl.SyncReconciliation)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkNotificationRead)
	admin.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.WSHandler)
	}

	return r
}
