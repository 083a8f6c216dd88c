package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

func setupAvailabilityTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Stock{},
		&models.StockLog{},
		&models.Menu{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func menuAvailable(t *testing.T, db *gorm.DB, menuID uint) bool {
	var menu models.Menu
	assert.NoError(t, db.First(&menu, menuID).Error)
	return menu.IsAvailable
}

func TestComputeAvailability(t *testing.T) {
	stockByID := map[uint]models.Stock{
		1: {ID: 1, Quantity: 5},
		2: {ID: 2, Quantity: 0},
	}

	assert.True(t, ComputeAvailability(nil, stockByID))
	assert.True(t, ComputeAvailability([]models.RecipeIngredient{
		{StockID: 1, Quantity: 5},
	}, stockByID))
	assert.False(t, ComputeAvailability([]models.RecipeIngredient{
		{StockID: 1, Quantity: 6},
	}, stockByID))
	assert.False(t, ComputeAvailability([]models.RecipeIngredient{
		{StockID: 1, Quantity: 1},
		{StockID: 2, Quantity: 1},
	}, stockByID))
	// Bahan yang stoknya tidak dikenal -> tidak available.
	assert.False(t, ComputeAvailability([]models.RecipeIngredient{
		{StockID: 99, Quantity: 1},
	}, stockByID))
}

// Scenario: recipe Latte butuh Milk 2, stok Milk 1 -> tidak available;
// setelah StockIn 5 (stok jadi 6) -> available.
func TestAvailabilityFollowsStockLevel(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	ss := NewStockService(db)
	rs := NewRecipeService(db)

	milk, _ := ss.AddStock("Milk", 1, "unit", 0)
	latte := models.Menu{Name: "Latte", Category: "Coffee", Price: 25000}
	db.Create(&latte)

	_, err := rs.CreateRecipe(latte.ID, []IngredientInput{{StockID: milk.ID, Quantity: 2}})
	assert.NoError(t, err)
	assert.False(t, menuAvailable(t, db, latte.ID))

	_, err = ss.StockIn(milk.ID, 5, "restock")
	assert.NoError(t, err)
	assert.True(t, menuAvailable(t, db, latte.ID))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	ss := NewStockService(db)
	rs := NewRecipeService(db)
	as := NewAvailabilityService(db)

	milk, _ := ss.AddStock("Milk", 6, "unit", 0)
	latte := models.Menu{Name: "Latte", Category: "Coffee", Price: 25000}
	db.Create(&latte)
	_, err := rs.CreateRecipe(latte.ID, []IngredientInput{{StockID: milk.ID, Quantity: 2}})
	assert.NoError(t, err)

	assert.NoError(t, as.RecalculateAll(db))
	first := menuAvailable(t, db, latte.ID)
	assert.NoError(t, as.RecalculateAll(db))
	assert.Equal(t, first, menuAvailable(t, db, latte.ID))
	assert.True(t, first)
}

func TestMenuWithoutRecipeStaysDefault(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	ss := NewStockService(db)
	as := NewAvailabilityService(db)

	// Menu tanpa recipe tidak pernah disentuh fan-out recompute.
	menu := models.Menu{Name: "Bottled Water", Category: "Drinks", Price: 5000, IsAvailable: true}
	db.Create(&menu)

	_, err := ss.AddStock("Milk", 3, "unit", 0)
	assert.NoError(t, err)
	assert.NoError(t, as.RecalculateAll(db))
	assert.True(t, menuAvailable(t, db, menu.ID))
}
