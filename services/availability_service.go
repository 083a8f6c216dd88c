package services

import (
	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/realtime"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

// AvailabilityService menurunkan flag Menu.IsAvailable dari recipe + stok.
// Menu tanpa recipe dianggap available (tidak punya dependensi bahan).
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// ComputeAvailability -> true jika setiap bahan punya stok >= kebutuhan
// satu unit menu. Fungsi murni, tidak menyentuh database.
func ComputeAvailability(ingredients []models.RecipeIngredient, stockByID map[uint]models.Stock) bool {
	for _, ing := range ingredients {
		stock, ok := stockByID[ing.StockID]
		if !ok || float64(stock.Quantity) < ing.Quantity {
			return false
		}
	}
	return true
}

// RecalculateAll menghitung ulang availability SEMUA menu yang punya recipe.
// Dipanggil setiap kali ada mutasi stok; menu yang flagnya tidak berubah
// tidak di-update supaya UpdatedAt tidak bergeser tanpa alasan.
func (as *AvailabilityService) RecalculateAll(tx *gorm.DB) error {
	var recipes []models.Recipe
	if err := tx.Preload("Ingredients").Find(&recipes).Error; err != nil {
		return err
	}

	stockByID, err := loadStockMap(tx)
	if err != nil {
		return err
	}

	for _, recipe := range recipes {
		isAvailable := ComputeAvailability(recipe.Ingredients, stockByID)

		var menu models.Menu
		if err := tx.First(&menu, recipe.MenuID).Error; err != nil {
			// Menu sudah dihapus; recipe yatim dibiarkan untuk path delete.
			continue
		}
		if menu.IsAvailable == isAvailable {
			continue
		}

		if err := tx.Model(&models.Menu{}).Where("id = ?", menu.ID).
			Update("is_available", isAvailable).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Menu %s (ID %d) availability -> %v", menu.Name, menu.ID, isAvailable)
		realtime.BroadcastMenuAvailability(menu.ID, isAvailable)
	}

	return nil
}

// RecalculateMenu menghitung ulang satu menu saja (dipakai saat recipe
// dibuat/diubah/dihapus).
func (as *AvailabilityService) RecalculateMenu(tx *gorm.DB, menuID uint) error {
	var recipe models.Recipe
	err := tx.Preload("Ingredients").Where("menu_id = ?", menuID).First(&recipe).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		// Tanpa recipe: menu kembali available secara default.
		return as.setAvailability(tx, menuID, true)
	}

	stockByID, err := loadStockMap(tx)
	if err != nil {
		return err
	}
	return as.setAvailability(tx, menuID, ComputeAvailability(recipe.Ingredients, stockByID))
}

func (as *AvailabilityService) setAvailability(tx *gorm.DB, menuID uint, isAvailable bool) error {
	if err := tx.Model(&models.Menu{}).Where("id = ?", menuID).
		Update("is_available", isAvailable).Error; err != nil {
		return err
	}
	realtime.BroadcastMenuAvailability(menuID, isAvailable)
	return nil
}

func loadStockMap(tx *gorm.DB) (map[uint]models.Stock, error) {
	var stocks []models.Stock
	if err := tx.Find(&stocks).Error; err != nil {
		return nil, err
	}
	stockByID := make(map[uint]models.Stock, len(stocks))
	for _, s := range stocks {
		stockByID[s.ID] = s
	}
	return stockByID, nil
}
