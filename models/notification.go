package models

import (
	"time"
)

// Notification dibuat otomatis saat quantity stok menyentuh atau melewati
// notification threshold, dan bisa dibuat manual oleh staff.
type Notification struct {
	ID        uint `gorm:"primaryKey"`
	StockID   *uint
	Stock     *Stock    `gorm:"foreignKey:StockID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title     *string   `gorm:"type:varchar(100)"`
	Message   string    `gorm:"type:text;not null"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
}
