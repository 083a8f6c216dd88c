package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/services"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

type StockController struct {
	DB      *gorm.DB
	Service *services.StockService
}

func NewStockController(db *gorm.DB) *StockController {
	return &StockController{
		DB:      db,
		Service: services.NewStockService(db),
	}
}

// GetAllStocks -> list seluruh item stok
func (sc *StockController) GetAllStocks(c *gin.Context) {
	var stocks []models.Stock
	if err := sc.DB.Order("item_name asc").Find(&stocks).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of stocks", stocks)
}

// GetStockLogs -> riwayat movement, bisa difilter per stok
// Endpoint: GET /admin/stock-logs?stock_id=<id>
func (sc *StockController) GetStockLogs(c *gin.Context) {
	query := sc.DB.Order("timestamp asc")
	if stockIDStr := c.Query("stock_id"); stockIDStr != "" {
		stockID, err := strconv.Atoi(stockIDStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		query = query.Where("stock_id = ?", stockID)
	}

	var logs []models.StockLog
	if err := query.Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of stock logs", logs)
}

// AddStock -> buat item stok baru (movement "in" sintetis ditulis service)
func (sc *StockController) AddStock(c *gin.Context) {
	var req struct {
		ItemName              string `json:"item_name" binding:"required"`
		Quantity              int    `json:"quantity"`
		Unit                  string `json:"unit" binding:"required"`
		NotificationThreshold int    `json:"notification_threshold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stock, err := sc.Service.AddStock(req.ItemName, req.Quantity, req.Unit, req.NotificationThreshold)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stock added", stock)
}

// StockIn -> tambah quantity dengan alasan
func (sc *StockController) StockIn(c *gin.Context) {
	sc.stockMovement(c, sc.Service.StockIn)
}

// StockOut -> kurangi quantity; ditolak bila stok tidak cukup
func (sc *StockController) StockOut(c *gin.Context) {
	sc.stockMovement(c, sc.Service.StockOut)
}

func (sc *StockController) stockMovement(c *gin.Context, op func(uint, int, string) (*models.StockLog, error)) {
	stockID, err := parseIDParam(c, "stock_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Quantity int    `json:"quantity" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stockLog, err := op(stockID, req.Quantity, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stock movement recorded", stockLog)
}

// UpdateStock -> partial edit; overwrite quantity mensintesis movement koreksi
func (sc *StockController) UpdateStock(c *gin.Context) {
	stockID, err := parseIDParam(c, "stock_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var input services.UpdateStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stock, err := sc.Service.UpdateStock(stockID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock updated", stock)
}

// BatchUpdateStocks -> overwrite quantity banyak item, all-or-nothing
func (sc *StockController) BatchUpdateStocks(c *gin.Context) {
	var req struct {
		Items []services.BatchUpdateItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stocks, err := sc.Service.BatchUpdateStocks(req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stocks updated", stocks)
}

// DeleteStock -> hapus item + riwayatnya; ditolak bila dipakai recipe
func (sc *StockController) DeleteStock(c *gin.Context) {
	stockID, err := parseIDParam(c, "stock_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := sc.Service.DeleteStock(stockID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock deleted", gin.H{"stock_id": stockID})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
