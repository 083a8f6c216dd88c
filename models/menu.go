package models

import "time"

// Menu: IsAvailable adalah nilai turunan yang hanya boleh ditulis oleh
// availability recalculator, tidak pernah di-set langsung lewat edit katalog.
type Menu struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageUrl    string    `gorm:"type:varchar(255)" json:"image_url"`
	IsAvailable bool      `gorm:"not null;default:false" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
