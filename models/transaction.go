package models

import "time"

// Status transaksi: himpunan tertutup dengan tabel transisi yang
// divalidasi di TransactionService.UpdateTransactionStatus.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusPaid      = "paid"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusRefunded  = "refunded"
)

type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;index" json:"user_id"`
	User            User              `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	MenuItems       []TransactionItem `gorm:"foreignKey:TransactionID" json:"menu_items"`
	TotalAmount     float64           `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          string            `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TransactionDate time.Time         `gorm:"not null;index" json:"transaction_date"`

	// Field rekonsiliasi QRIS; diisi oleh feed eksternal, bukan oleh core.
	QrisOrderID         *string    `gorm:"type:varchar(100);index" json:"qris_order_id,omitempty"`
	QrisTransactionTime *time.Time `json:"qris_transaction_time,omitempty"`
	NetAmount           *float64   `gorm:"type:decimal(10,2)" json:"net_amount,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type TransactionItem struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TransactionID uint        `gorm:"not null;index" json:"transaction_id"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID        uint        `gorm:"not null" json:"menu_id"`
	Menu          Menu        `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity      int         `gorm:"not null" json:"quantity"`
	// Harga satuan menu saat order dibuat; total tidak dihitung ulang
	// jika harga menu berubah kemudian.
	Price float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}
