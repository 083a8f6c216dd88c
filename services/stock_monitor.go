package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/realtime"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

// StockMonitor menyapu tabel stok secara periodik dan menyiarkan ulang
// peringatan untuk item yang masih berada di bawah ambang notifikasi.
// Jaring pengaman bila broadcast saat mutasi terlewat (mis. server restart).
type StockMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewStockMonitor(db *gorm.DB) *StockMonitor {
	return &StockMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 5 * time.Minute,
	}
}

func (sm *StockMonitor) Start() {
	go func() {
		ticker := time.NewTicker(sm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sm.sweep()
			case <-sm.StopChan:
				return
			}
		}
	}()
}

func (sm *StockMonitor) Stop() {
	close(sm.StopChan)
}

func (sm *StockMonitor) sweep() {
	var lowStocks []models.Stock
	if err := sm.DB.Where("quantity <= notification_threshold").Find(&lowStocks).Error; err != nil {
		utils.ErrorLogger.Printf("Stock monitor sweep failed: %v", err)
		return
	}

	for _, stock := range lowStocks {
		utils.InfoLogger.Printf("Low stock: %s (qty %d %s, threshold %d)",
			stock.ItemName, stock.Quantity, stock.Unit, stock.NotificationThreshold)
		realtime.BroadcastLowStock(map[string]interface{}{
			"stock_id": stock.ID,
			"message": fmt.Sprintf("Stok %s tersisa %d %s (ambang %d)",
				stock.ItemName, stock.Quantity, stock.Unit, stock.NotificationThreshold),
		})
	}
}
