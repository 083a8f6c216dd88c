package models

import "time"

// Recipe memetakan satu menu ke bahan-bahan stok yang dikonsumsinya.
// Maksimal satu recipe per menu (unique index pada MenuID).
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	MenuID      uint               `gorm:"not null;uniqueIndex" json:"menu_id"`
	Menu        Menu               `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

// RecipeIngredient: Quantity adalah jumlah stok yang dikonsumsi untuk
// memproduksi SATU unit menu.
type RecipeIngredient struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	RecipeID uint    `gorm:"not null;index" json:"recipe_id"`
	StockID  uint    `gorm:"not null;index" json:"stock_id"`
	Stock    Stock   `gorm:"foreignKey:StockID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity float64 `gorm:"type:decimal(10,2);not null" json:"quantity"`
}
