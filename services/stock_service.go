package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/realtime"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

// StockService adalah satu-satunya pintu mutasi quantity stok. Setiap
// perubahan quantity lewat StockIn/StockOut/Batch/koreksi menghasilkan satu
// baris StockLog, sehingga replay seluruh log dari 0 selalu menghasilkan
// quantity sekarang.
type StockService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{
		DB:           db,
		Availability: NewAvailabilityService(db),
	}
}

// UpdateStockInput -> partial update; field nil tidak diubah.
type UpdateStockInput struct {
	ItemName              *string `json:"item_name"`
	Quantity              *int    `json:"quantity"`
	Unit                  *string `json:"unit"`
	NotificationThreshold *int    `json:"notification_threshold"`
}

// BatchUpdateItem -> satu entri batch update: overwrite quantity.
type BatchUpdateItem struct {
	StockID  uint `json:"stock_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// AddStock membuat item stok baru plus satu movement "in" sintetis
// (before=0) supaya ledger konsisten dari baris pertama.
func (ss *StockService) AddStock(itemName string, quantity int, unit string, threshold int) (*models.Stock, error) {
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	stock := models.Stock{
		ItemName:              itemName,
		Quantity:              quantity,
		Unit:                  unit,
		NotificationThreshold: threshold,
	}

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&stock).Error; err != nil {
			return err
		}

		stockLog := models.StockLog{
			StockID:        stock.ID,
			Type:           models.StockLogTypeIn,
			Quantity:       quantity,
			BeforeQuantity: 0,
			AfterQuantity:  quantity,
			Reason:         "initial stock",
			Timestamp:      time.Now(),
		}
		if err := tx.Create(&stockLog).Error; err != nil {
			return err
		}

		return ss.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Stock added: %s (ID %d, qty %d %s)", stock.ItemName, stock.ID, stock.Quantity, stock.Unit)
	ss.afterMutation(&stock)
	return &stock, nil
}

// StockIn menambah quantity dan menulis movement "in".
func (ss *StockService) StockIn(stockID uint, quantity int, reason string) (*models.StockLog, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	var stock models.Stock
	var stockLog models.StockLog

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Stock{}).
			Where("id = ?", stockID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Entity: "Stock", ID: stockID}
		}

		if err := tx.First(&stock, stockID).Error; err != nil {
			return err
		}

		stockLog = models.StockLog{
			StockID:        stockID,
			Type:           models.StockLogTypeIn,
			Quantity:       quantity,
			BeforeQuantity: stock.Quantity - quantity,
			AfterQuantity:  stock.Quantity,
			Reason:         reason,
			Timestamp:      time.Now(),
		}
		if err := tx.Create(&stockLog).Error; err != nil {
			return err
		}

		return ss.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	ss.afterMutation(&stock)
	return &stockLog, nil
}

// StockOut mengurangi quantity lewat conditional decrement: update hanya
// terjadi bila quantity >= permintaan, sehingga stok tidak pernah negatif
// meskipun ada request paralel.
func (ss *StockService) StockOut(stockID uint, quantity int, reason string) (*models.StockLog, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	var stock models.Stock
	var stockLog models.StockLog

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Stock{}).
			Where("id = ? AND quantity >= ?", stockID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Bedakan stok tidak ada vs stok kurang.
			if err := tx.First(&stock, stockID).Error; err != nil {
				return &NotFoundError{Entity: "Stock", ID: stockID}
			}
			return &InsufficientStockError{StockID: stockID, Requested: quantity, Available: stock.Quantity}
		}

		if err := tx.First(&stock, stockID).Error; err != nil {
			return err
		}

		stockLog = models.StockLog{
			StockID:        stockID,
			Type:           models.StockLogTypeOut,
			Quantity:       quantity,
			BeforeQuantity: stock.Quantity + quantity,
			AfterQuantity:  stock.Quantity,
			Reason:         reason,
			Timestamp:      time.Now(),
		}
		if err := tx.Create(&stockLog).Error; err != nil {
			return err
		}

		return ss.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	ss.afterMutation(&stock)
	return &stockLog, nil
}

// UpdateStock mengedit field item. Overwrite quantity TIDAK melewati jalur
// in/out biasa, jadi service mensintesis satu movement koreksi supaya
// invariant ledger tetap berlaku.
func (ss *StockService) UpdateStock(stockID uint, input UpdateStockInput) (*models.Stock, error) {
	var stock models.Stock

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&stock, stockID).Error; err != nil {
			return &NotFoundError{Entity: "Stock", ID: stockID}
		}

		if input.ItemName != nil {
			stock.ItemName = *input.ItemName
		}
		if input.Unit != nil {
			stock.Unit = *input.Unit
		}
		if input.NotificationThreshold != nil {
			stock.NotificationThreshold = *input.NotificationThreshold
		}

		if input.Quantity != nil && *input.Quantity != stock.Quantity {
			if *input.Quantity < 0 {
				return &ValidationError{Field: "quantity", Reason: "must not be negative"}
			}
			before := stock.Quantity
			stock.Quantity = *input.Quantity

			logType := models.StockLogTypeIn
			delta := stock.Quantity - before
			if delta < 0 {
				logType = models.StockLogTypeOut
				delta = -delta
			}
			stockLog := models.StockLog{
				StockID:        stockID,
				Type:           logType,
				Quantity:       delta,
				BeforeQuantity: before,
				AfterQuantity:  stock.Quantity,
				Reason:         "stock correction",
				Timestamp:      time.Now(),
			}
			if err := tx.Create(&stockLog).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&stock).Error; err != nil {
			return err
		}

		return ss.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	ss.afterMutation(&stock)
	return &stock, nil
}

// BatchUpdateStocks meng-overwrite quantity banyak item sekaligus,
// all-or-nothing: satu stockId tidak dikenal membatalkan seluruh batch.
// Delta nol tetap dicatat (type "out", quantity 0) agar jejak audit utuh.
func (ss *StockService) BatchUpdateStocks(items []BatchUpdateItem) ([]models.Stock, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "must not be empty"}
	}

	updated := make([]models.Stock, 0, len(items))

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.Quantity < 0 {
				return &ValidationError{Field: "quantity", Reason: "must not be negative"}
			}

			var stock models.Stock
			if err := tx.First(&stock, item.StockID).Error; err != nil {
				return &NotFoundError{Entity: "Stock", ID: item.StockID}
			}

			before := stock.Quantity
			stock.Quantity = item.Quantity

			logType := models.StockLogTypeOut
			delta := item.Quantity - before
			if delta > 0 {
				logType = models.StockLogTypeIn
			} else {
				delta = -delta
			}

			stockLog := models.StockLog{
				StockID:        stock.ID,
				Type:           logType,
				Quantity:       delta,
				BeforeQuantity: before,
				AfterQuantity:  stock.Quantity,
				Reason:         "batch update",
				Timestamp:      time.Now(),
			}
			if err := tx.Create(&stockLog).Error; err != nil {
				return err
			}
			if err := tx.Save(&stock).Error; err != nil {
				return err
			}
			updated = append(updated, stock)
		}

		// Satu kali recompute setelah semua item diterapkan.
		return ss.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	for i := range updated {
		ss.afterMutation(&updated[i])
	}
	return updated, nil
}

// DeleteStock menghapus item beserta seluruh riwayat movement-nya.
// Ditolak selama masih ada recipe yang memakai stok ini.
func (ss *StockService) DeleteStock(stockID uint) error {
	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		var stock models.Stock
		if err := tx.First(&stock, stockID).Error; err != nil {
			return &NotFoundError{Entity: "Stock", ID: stockID}
		}

		var refCount int64
		if err := tx.Model(&models.RecipeIngredient{}).
			Where("stock_id = ?", stockID).
			Count(&refCount).Error; err != nil {
			return err
		}
		if refCount > 0 {
			return &StockInUseError{StockID: stockID}
		}

		if err := tx.Where("stock_id = ?", stockID).Delete(&models.StockLog{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Stock{}, stockID).Error; err != nil {
			return err
		}

		utils.InfoLogger.Printf("Stock deleted: %s (ID %d)", stock.ItemName, stock.ID)
		return ss.Availability.RecalculateAll(tx)
	})
	return err
}

// afterMutation: broadcast perubahan + cek ambang notifikasi. Berjalan
// setelah commit; kegagalan di sini tidak membatalkan mutasi ledger.
func (ss *StockService) afterMutation(stock *models.Stock) {
	realtime.BroadcastStockUpdate(stock)

	if stock.Quantity > stock.NotificationThreshold {
		return
	}

	title := "Stok menipis"
	notification := models.Notification{
		StockID: &stock.ID,
		Title:   &title,
		Message: fmt.Sprintf("Stok %s tersisa %d %s (ambang %d)",
			stock.ItemName, stock.Quantity, stock.Unit, stock.NotificationThreshold),
	}
	if err := ss.DB.Create(&notification).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to create low-stock notification for stock %d: %v", stock.ID, err)
		return
	}
	realtime.BroadcastLowStock(notification)
}
