package models

import "time"

// Arah pergerakan stok pada ledger.
const (
	StockLogTypeIn  = "in"
	StockLogTypeOut = "out"
)

// StockLog adalah jurnal append-only: satu baris per perubahan quantity,
// tidak pernah diubah atau dihapus kecuali cascade saat stok induk dihapus.
type StockLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StockID        uint      `gorm:"not null;index" json:"stock_id"`
	Stock          Stock     `gorm:"foreignKey:StockID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type           string    `gorm:"type:varchar(10);not null" json:"type"` // "in" atau "out"
	Quantity       int       `gorm:"not null" json:"quantity"`
	BeforeQuantity int       `gorm:"not null" json:"before_quantity"`
	AfterQuantity  int       `gorm:"not null" json:"after_quantity"`
	Reason         string    `gorm:"type:text" json:"reason"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
}
