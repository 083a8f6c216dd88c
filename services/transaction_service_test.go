package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

var txTestDBSeq int

func setupTransactionTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	// Named shared-cache database supaya pool connection (dipakai
	// test concurrency) melihat data yang sama.
	txTestDBSeq++
	dsn := fmt.Sprintf("file:txtest%d?mode=memory&cache=shared&_busy_timeout=10000", txTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Stock{},
		&models.StockLog{},
		&models.Menu{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Create(&models.User{Name: "Kasir", Email: "kasir@example.com", Password: "x", Role: "staff"})
	return db
}

// seedLatte: stok Milk + menu Latte dengan recipe Milk 2/unit.
func seedLatte(t *testing.T, db *gorm.DB, milkQty int) (milk models.Stock, latte models.Menu) {
	ss := NewStockService(db)
	rs := NewRecipeService(db)

	stock, err := ss.AddStock("Milk", milkQty, "unit", 0)
	assert.NoError(t, err)
	milk = *stock

	latte = models.Menu{Name: "Latte", Category: "Coffee", Price: 25000}
	db.Create(&latte)
	_, err = rs.CreateRecipe(latte.ID, []IngredientInput{{StockID: milk.ID, Quantity: 2}})
	assert.NoError(t, err)
	return milk, latte
}

// Scenario: order 3 Latte saat Milk=6 (butuh 6) -> sukses, Milk jadi 0,
// Latte langsung tidak available.
func TestCreateTransactionConsumesStock(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	milk, latte := seedLatte(t, db, 6)

	transaction, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 3}})
	assert.NoError(t, err)
	assert.Equal(t, float64(75000), transaction.TotalAmount)
	assert.Equal(t, models.TransactionStatusPending, transaction.Status)
	assert.Len(t, transaction.MenuItems, 1)
	assert.Equal(t, float64(25000), transaction.MenuItems[0].Price)

	var reloadedMilk models.Stock
	db.First(&reloadedMilk, milk.ID)
	assert.Equal(t, 0, reloadedMilk.Quantity)
	assert.False(t, menuAvailable(t, db, latte.ID))

	// Satu movement "out" dengan reason yang menunjuk transaksi + menu.
	var consumption models.StockLog
	err = db.Where("stock_id = ? AND type = ?", milk.ID, models.StockLogTypeOut).First(&consumption).Error
	assert.NoError(t, err)
	assert.Equal(t, 6, consumption.Quantity)
	assert.Contains(t, consumption.Reason, fmt.Sprintf("Transaction %d", transaction.ID))
	assert.Contains(t, consumption.Reason, "Latte")
}

func TestCreateTransactionUnknownMenu(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)

	_, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: 999, Quantity: 1}})
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCreateTransactionMenuNotAvailable(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	_, latte := seedLatte(t, db, 1) // Milk 1 < 2 -> Latte tidak available

	_, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 1}})
	var notAvailable *MenuNotAvailableError
	assert.True(t, errors.As(err, &notAvailable))
	assert.Equal(t, latte.ID, notAvailable.MenuID)

	var txCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	assert.Equal(t, int64(0), txCount)
}

func TestCreateTransactionMenuWithoutRecipe(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)

	water := models.Menu{Name: "Bottled Water", Category: "Drinks", Price: 5000, IsAvailable: true}
	db.Create(&water)

	transaction, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: water.ID, Quantity: 2}})
	assert.NoError(t, err)
	assert.Equal(t, float64(10000), transaction.TotalAmount)

	var logCount int64
	db.Model(&models.StockLog{}).Count(&logCount)
	assert.Equal(t, int64(0), logCount)
}

// Dua line item yang berbagi bahan yang sama harus divalidasi sebagai
// satu kebutuhan gabungan, bukan per item.
func TestCreateTransactionAggregatesSharedIngredient(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	rs := NewRecipeService(db)
	milk, latte := seedLatte(t, db, 6)

	cappuccino := models.Menu{Name: "Cappuccino", Category: "Coffee", Price: 28000}
	db.Create(&cappuccino)
	_, err := rs.CreateRecipe(cappuccino.ID, []IngredientInput{{StockID: milk.ID, Quantity: 2}})
	assert.NoError(t, err)

	// Masing-masing item butuh 4 Milk (lolos sendiri-sendiri), gabungan 8 > 6.
	_, err = ts.CreateTransaction(1, []TransactionItemInput{
		{MenuID: latte.ID, Quantity: 2},
		{MenuID: cappuccino.ID, Quantity: 2},
	})
	var insufficient *InsufficientStockError
	assert.True(t, errors.As(err, &insufficient))
	assert.Equal(t, milk.ID, insufficient.StockID)
	assert.Equal(t, 8, insufficient.Requested)
	assert.Equal(t, 6, insufficient.Available)

	// Seluruh order di-rollback: tidak ada transaksi, stok utuh.
	var txCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	assert.Equal(t, int64(0), txCount)
	var reloadedMilk models.Stock
	db.First(&reloadedMilk, milk.ID)
	assert.Equal(t, 6, reloadedMilk.Quantity)
}

// Property no-oversell: N order paralel @q unit terhadap stok Q -> maksimal
// floor(Q/q) yang sukses, stok akhir tidak pernah negatif.
func TestCreateTransactionNoOversell(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	milk, latte := seedLatte(t, db, 10) // tiap Latte butuh 2 -> maksimal 5 order

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 1}}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, successes, 5)

	var reloadedMilk models.Stock
	db.First(&reloadedMilk, milk.ID)
	assert.GreaterOrEqual(t, reloadedMilk.Quantity, 0)
	assert.Equal(t, 10-successes*2, reloadedMilk.Quantity)
	assert.Equal(t, reloadedMilk.Quantity, replayLogs(t, db, milk.ID))
}

func TestUpdateTransactionStatusTransitions(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	_, latte := seedLatte(t, db, 6)

	transaction, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 1}})
	assert.NoError(t, err)

	// pending -> completed dilarang.
	_, err = ts.UpdateTransactionStatus(transaction.ID, models.TransactionStatusCompleted)
	var invalidStatus *InvalidStatusError
	assert.True(t, errors.As(err, &invalidStatus))

	updated, err := ts.UpdateTransactionStatus(transaction.ID, models.TransactionStatusPaid)
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaid, updated.Status)

	updated, err = ts.UpdateTransactionStatus(transaction.ID, models.TransactionStatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)

	// Status terminal tidak bisa diubah lagi.
	_, err = ts.UpdateTransactionStatus(transaction.ID, models.TransactionStatusRefunded)
	assert.True(t, errors.As(err, &invalidStatus))

	_, err = ts.UpdateTransactionStatus(999, models.TransactionStatusPaid)
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// DeleteTransaction adalah purge administratif: stok yang sudah
// dikonsumsi tidak dikembalikan dan jejak ledger tetap ada.
func TestDeleteTransactionKeepsConsumption(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	milk, latte := seedLatte(t, db, 6)

	transaction, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 2}})
	assert.NoError(t, err)

	assert.NoError(t, ts.DeleteTransaction(transaction.ID))

	var txCount, itemCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	db.Model(&models.TransactionItem{}).Count(&itemCount)
	assert.Equal(t, int64(0), txCount)
	assert.Equal(t, int64(0), itemCount)

	var reloadedMilk models.Stock
	db.First(&reloadedMilk, milk.ID)
	assert.Equal(t, 2, reloadedMilk.Quantity)
	var logCount int64
	db.Model(&models.StockLog{}).Where("stock_id = ? AND type = ?", milk.ID, models.StockLogTypeOut).Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestSyncReconciliationWritesFields(t *testing.T) {
	db := setupTransactionTestDB(t)
	ts := NewTransactionService(db)
	_, latte := seedLatte(t, db, 6)

	transaction, err := ts.CreateTransaction(1, []TransactionItemInput{{MenuID: latte.ID, Quantity: 1}})
	assert.NoError(t, err)

	applied, err := ts.SyncReconciliation([]ReconciliationItemInput{
		{
			TransactionID: transaction.ID,
			QrisOrderID:   "QR-001",
			NetAmount:     24500,
			Status:        models.TransactionStatusPaid,
		},
		{TransactionID: 999, QrisOrderID: "QR-002"}, // tidak dikenal -> dilewati
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, applied)

	var reloaded models.Transaction
	db.First(&reloaded, transaction.ID)
	assert.NotNil(t, reloaded.QrisOrderID)
	assert.Equal(t, "QR-001", *reloaded.QrisOrderID)
	assert.NotNil(t, reloaded.NetAmount)
	assert.Equal(t, float64(24500), *reloaded.NetAmount)
	assert.Equal(t, models.TransactionStatusPaid, reloaded.Status)
}
