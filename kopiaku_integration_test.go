package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/router"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Register admin, login -> token
// 1. Buat stok Milk + menu Latte + recipe (2 Milk per gelas)
// 2. Recompute membuat Latte available
// 3. Order 3 Latte -> Milk habis, Latte tidak available
// 4. Order berikutnya ditolak
// 5. Status pending -> paid -> completed
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB()
	r := router.SetupRouter(db)

	token := registerAndLoginTest(t, r)

	stockID := createStockTest(t, r, token, "Milk", 6, "liter")
	menuID := createMenuTest(t, r, token, "Latte", 25000)
	createRecipeTest(t, r, token, menuID, stockID, 2)

	// Recipe baru langsung direcompute: Milk 6 >= 2 -> available
	assertMenuAvailability(t, r, menuID, true)

	transactionID := createTransactionTest(t, r, token, menuID, 3)

	// Stok habis -> menu off
	assertMenuAvailability(t, r, menuID, false)

	// Order kedua ditolak karena menu tidak available
	body, _ := json.Marshal(map[string]interface{}{
		"menu_items": []map[string]interface{}{
			{"menu_id": menuID, "quantity": 1},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("second order: expected 409, got %d, body=%s", w.Code, w.Body.String())
	}

	updateStatusTest(t, r, token, transactionID, models.TransactionStatusPaid)
	updateStatusTest(t, r, token, transactionID, models.TransactionStatusCompleted)

	// Ledger: "in" awal + konsumsi order = 2 movement untuk Milk
	req = httptest.NewRequest(http.MethodGet, "/admin/stock-logs?stock_id="+uintToString(stockID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stock-logs: expected 200, got %d", w.Code)
	}
	var logsResp struct {
		Status bool `json:"status"`
		Data   []struct {
			Type          string `json:"type"`
			Quantity      int    `json:"quantity"`
			AfterQuantity int    `json:"after_quantity"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &logsResp)
	if len(logsResp.Data) != 2 {
		t.Fatalf("expected 2 stock logs, got %d", len(logsResp.Data))
	}
	if logsResp.Data[1].Type != models.StockLogTypeOut || logsResp.Data[1].AfterQuantity != 0 {
		t.Fatalf("unexpected consumption log: %+v", logsResp.Data[1])
	}
}

// setupTestDB -> migrasi model di SQLite in-memory
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
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
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func registerAndLoginTest(t *testing.T, r *gin.Engine) string {
	regBody, _ := json.Marshal(map[string]string{
		"name":     "Test Admin",
		"email":    "admin@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(regBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Status || resp.Data.Token == "" {
		t.Fatalf("login: token empty, body=%s", w.Body.String())
	}
	return resp.Data.Token
}

func createStockTest(t *testing.T, r *gin.Engine, token, name string, qty int, unit string) uint {
	body, _ := json.Marshal(map[string]interface{}{
		"item_name":              name,
		"quantity":               qty,
		"unit":                   unit,
		"notification_threshold": 1,
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/stocks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("createStockTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Data.ID
}

func createMenuTest(t *testing.T, r *gin.Engine, token, name string, price float64) uint {
	body, _ := json.Marshal(map[string]interface{}{
		"name":     name,
		"category": "Coffee",
		"price":    price,
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/menus", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("createMenuTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			ID          uint `json:"id"`
			IsAvailable bool `json:"is_available"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.IsAvailable {
		t.Fatalf("createMenuTest: menu baru harus start tidak available")
	}
	return resp.Data.ID
}

func createRecipeTest(t *testing.T, r *gin.Engine, token string, menuID, stockID uint, qty float64) {
	body, _ := json.Marshal(map[string]interface{}{
		"menu_id": menuID,
		"ingredients": []map[string]interface{}{
			{"stock_id": stockID, "quantity": qty},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/recipes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("createRecipeTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
}

func createTransactionTest(t *testing.T, r *gin.Engine, token string, menuID uint, qty int) uint {
	body, _ := json.Marshal(map[string]interface{}{
		"menu_items": []map[string]interface{}{
			{"menu_id": menuID, "quantity": qty},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("createTransactionTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Status != models.TransactionStatusPending {
		t.Fatalf("createTransactionTest: expected status pending, got %s", resp.Data.Status)
	}
	return resp.Data.ID
}

func updateStatusTest(t *testing.T, r *gin.Engine, token string, transactionID uint, status string) {
	body, _ := json.Marshal(map[string]string{"status": status})
	req := httptest.NewRequest(http.MethodPatch,
		"/admin/transactions/"+uintToString(transactionID)+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("updateStatusTest(%s): code=%d, body=%s", status, w.Code, w.Body.String())
	}
}

// assertMenuAvailability lewat endpoint publik katalog
func assertMenuAvailability(t *testing.T, r *gin.Engine, menuID uint, want bool) {
	req := httptest.NewRequest(http.MethodGet, "/menus/"+uintToString(menuID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET menu: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			IsAvailable bool `json:"is_available"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.IsAvailable != want {
		t.Fatalf("menu availability: want %v, got %v", want, resp.Data.IsAvailable)
	}
}

func uintToString(num uint) string {
	return strconv.FormatUint(uint64(num), 10)
}
