package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/realtime"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

// transitionTable: transisi status transaksi yang diizinkan. Status yang
// tidak punya entri adalah status terminal.
var transitionTable = map[string][]string{
	models.TransactionStatusPending: {models.TransactionStatusPaid, models.TransactionStatusCancelled},
	models.TransactionStatusPaid:    {models.TransactionStatusCompleted, models.TransactionStatusRefunded},
}

// TransactionService memvalidasi dan meng-commit order pelanggan:
// cek availability, hitung total, konsumsi stok lewat ledger, lalu
// refresh flag availability semua menu.
type TransactionService struct {
	DB           *gorm.DB
	Stocks       *StockService
	Availability *AvailabilityService
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{
		DB:           db,
		Stocks:       NewStockService(db),
		Availability: NewAvailabilityService(db),
	}
}

// TransactionItemInput -> satu line item order.
type TransactionItemInput struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// ReconciliationItemInput -> satu baris feed rekonsiliasi QRIS dari
// gateway pembayaran; ditulis apa adanya ke record transaksi.
type ReconciliationItemInput struct {
	TransactionID       uint      `json:"transaction_id" binding:"required"`
	QrisOrderID         string    `json:"qris_order_id" binding:"required"`
	QrisTransactionTime time.Time `json:"qris_transaction_time"`
	NetAmount           float64   `json:"net_amount"`
	Status              string    `json:"status"`
}

// CreateTransaction menjalankan seluruh alur order dalam SATU transaksi
// database: validasi, pembuatan record, konsumsi stok, recompute.
// Kebutuhan bahan diakumulasi per stok untuk SELURUH order sebelum
// dikonsumsi, sehingga dua line item yang berbagi bahan yang sama tidak
// lolos validasi secara terpisah. Konsumsi memakai conditional decrement;
// kegagalan di bahan mana pun me-rollback seluruh order.
func (ts *TransactionService) CreateTransaction(userID uint, items []TransactionItemInput) (*models.Transaction, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "menu_items", Reason: "must not be empty"}
	}

	var transaction models.Transaction
	var touchedStocks []models.Stock

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		var totalAmount float64
		validatedItems := make([]models.TransactionItem, 0, len(items))
		required := make(map[uint]float64) // stockID -> total kebutuhan order ini
		menuNames := make(map[uint][]string)

		for _, item := range items {
			if item.Quantity <= 0 {
				return &ValidationError{Field: "quantity", Reason: "must be positive"}
			}

			var menu models.Menu
			if err := tx.First(&menu, item.MenuID).Error; err != nil {
				return &NotFoundError{Entity: "Menu", ID: item.MenuID}
			}
			if !menu.IsAvailable {
				return &MenuNotAvailableError{MenuID: menu.ID, Name: menu.Name}
			}

			var recipe models.Recipe
			err := tx.Preload("Ingredients").Where("menu_id = ?", item.MenuID).First(&recipe).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			if err == nil {
				for _, ing := range recipe.Ingredients {
					required[ing.StockID] += ing.Quantity * float64(item.Quantity)
					menuNames[ing.StockID] = append(menuNames[ing.StockID], menu.Name)
				}
			}

			totalAmount += menu.Price * float64(item.Quantity)
			validatedItems = append(validatedItems, models.TransactionItem{
				MenuID:   menu.ID,
				Quantity: item.Quantity,
				Price:    menu.Price,
			})
		}

		transaction = models.Transaction{
			UserID:          userID,
			MenuItems:       validatedItems,
			TotalAmount:     totalAmount,
			Status:          models.TransactionStatusPending,
			TransactionDate: time.Now(),
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		// Konsumsi stok dalam urutan stockId yang stabil supaya dua order
		// paralel tidak saling deadlock di level row lock.
		stockIDs := make([]uint, 0, len(required))
		for stockID := range required {
			stockIDs = append(stockIDs, stockID)
		}
		sort.Slice(stockIDs, func(i, j int) bool { return stockIDs[i] < stockIDs[j] })

		for _, stockID := range stockIDs {
			consumed := int(required[stockID])

			res := tx.Model(&models.Stock{}).
				Where("id = ? AND quantity >= ?", stockID, consumed).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", consumed))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var stock models.Stock
				if err := tx.First(&stock, stockID).Error; err != nil {
					return &NotFoundError{Entity: "Stock", ID: stockID}
				}
				return &InsufficientStockError{StockID: stockID, Requested: consumed, Available: stock.Quantity}
			}

			var stock models.Stock
			if err := tx.First(&stock, stockID).Error; err != nil {
				return err
			}

			stockLog := models.StockLog{
				StockID:        stockID,
				Type:           models.StockLogTypeOut,
				Quantity:       consumed,
				BeforeQuantity: stock.Quantity + consumed,
				AfterQuantity:  stock.Quantity,
				Reason:         fmt.Sprintf("Transaction %d - %s", transaction.ID, strings.Join(menuNames[stockID], ", ")),
				Timestamp:      time.Now(),
			}
			if err := tx.Create(&stockLog).Error; err != nil {
				return err
			}

			touchedStocks = append(touchedStocks, stock)
		}

		return ts.Availability.RecalculateAll(tx)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Transaction %d created by user %d, total %s",
		transaction.ID, userID, utils.FormatCurrency(transaction.TotalAmount))
	realtime.BroadcastTransactionNew(transaction)
	for i := range touchedStocks {
		ts.Stocks.afterMutation(&touchedStocks[i])
	}

	return &transaction, nil
}

// UpdateTransactionStatus memindahkan status sesuai tabel transisi.
// Status terminal (completed/cancelled/refunded) tidak bisa diubah lagi.
func (ts *TransactionService) UpdateTransactionStatus(transactionID uint, newStatus string) (*models.Transaction, error) {
	var transaction models.Transaction

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("MenuItems").First(&transaction, transactionID).Error; err != nil {
			return &NotFoundError{Entity: "Transaction", ID: transactionID}
		}

		if !transitionAllowed(transaction.Status, newStatus) {
			return &InvalidStatusError{From: transaction.Status, To: newStatus}
		}

		transaction.Status = newStatus
		return tx.Save(&transaction).Error
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

// DeleteTransaction adalah pembersihan administratif: record dihapus keras
// dan konsumsi stoknya TIDAK dikembalikan, jejaknya tetap ada di StockLog.
func (ts *TransactionService) DeleteTransaction(transactionID uint) error {
	return ts.DB.Transaction(func(tx *gorm.DB) error {
		var transaction models.Transaction
		if err := tx.First(&transaction, transactionID).Error; err != nil {
			return &NotFoundError{Entity: "Transaction", ID: transactionID}
		}

		if err := tx.Where("transaction_id = ?", transactionID).Delete(&models.TransactionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, transactionID).Error
	})
}

// SyncReconciliation menulis feed rekonsiliasi QRIS ke record transaksi.
// Feed bersifat best-effort: baris yang transaksinya tidak ditemukan atau
// transisi statusnya ilegal dilewati dengan warning, sisanya tetap ditulis.
func (ts *TransactionService) SyncReconciliation(items []ReconciliationItemInput) (int, error) {
	applied := 0

	for _, item := range items {
		err := ts.DB.Transaction(func(tx *gorm.DB) error {
			var transaction models.Transaction
			if err := tx.First(&transaction, item.TransactionID).Error; err != nil {
				return &NotFoundError{Entity: "Transaction", ID: item.TransactionID}
			}

			transaction.QrisOrderID = &item.QrisOrderID
			transaction.QrisTransactionTime = &item.QrisTransactionTime
			transaction.NetAmount = &item.NetAmount

			if item.Status != "" && item.Status != transaction.Status {
				if !transitionAllowed(transaction.Status, item.Status) {
					return &InvalidStatusError{From: transaction.Status, To: item.Status}
				}
				transaction.Status = item.Status
			}

			return tx.Save(&transaction).Error
		})
		if err != nil {
			utils.ErrorLogger.Printf("Reconciliation skipped for transaction %d: %v", item.TransactionID, err)
			continue
		}
		applied++
	}

	return applied, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
