package models

import "time"

type Stock struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	ItemName              string    `gorm:"type:varchar(255);not null" json:"item_name"`
	Quantity              int       `gorm:"not null;default:0" json:"quantity"`
	Unit                  string    `gorm:"type:varchar(50);not null" json:"unit"`
	NotificationThreshold int       `gorm:"not null;default:0" json:"notification_threshold"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}
