package services

import (
	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/utils"
	"gorm.io/gorm"
)

// RecipeService mengelola pemetaan menu -> bahan stok.
type RecipeService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		DB:           db,
		Availability: NewAvailabilityService(db),
	}
}

// IngredientInput -> satu bahan: stok mana dan berapa banyak per unit menu.
type IngredientInput struct {
	StockID  uint    `json:"stock_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

// CreateRecipe memvalidasi menu + semua bahan lalu membuat recipe baru.
// Satu menu maksimal satu recipe.
func (rs *RecipeService) CreateRecipe(menuID uint, ingredients []IngredientInput) (*models.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, &ValidationError{Field: "ingredients", Reason: "must not be empty"}
	}

	var recipe models.Recipe

	err := rs.DB.Transaction(func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, menuID).Error; err != nil {
			return &NotFoundError{Entity: "Menu", ID: menuID}
		}

		if err := validateIngredients(tx, ingredients); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Recipe{}).Where("menu_id = ?", menuID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &RecipeAlreadyExistsError{MenuID: menuID}
		}

		recipe = models.Recipe{MenuID: menuID}
		for _, ing := range ingredients {
			recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
				StockID:  ing.StockID,
				Quantity: ing.Quantity,
			})
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}

		// Menu baru saja mendapat dependensi bahan; hitung flagnya sekarang.
		return rs.Availability.RecalculateMenu(tx, menuID)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Recipe created for menu ID %d (%d ingredients)", menuID, len(ingredients))
	return &recipe, nil
}

// UpdateRecipe mengganti seluruh daftar bahan setelah memvalidasi ulang
// setiap stockId.
func (rs *RecipeService) UpdateRecipe(recipeID uint, ingredients []IngredientInput) (*models.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, &ValidationError{Field: "ingredients", Reason: "must not be empty"}
	}

	var recipe models.Recipe

	err := rs.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			return &NotFoundError{Entity: "Recipe", ID: recipeID}
		}

		if err := validateIngredients(tx, ingredients); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}

		recipe.Ingredients = nil
		for _, ing := range ingredients {
			recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
				RecipeID: recipeID,
				StockID:  ing.StockID,
				Quantity: ing.Quantity,
			})
		}
		if err := tx.Create(&recipe.Ingredients).Error; err != nil {
			return err
		}

		return rs.Availability.RecalculateMenu(tx, recipe.MenuID)
	})
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

// DeleteRecipe menghapus recipe beserta bahan-bahannya. Menu pemilik
// kembali available secara default karena tidak lagi punya dependensi.
func (rs *RecipeService) DeleteRecipe(recipeID uint) error {
	return rs.DB.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			return &NotFoundError{Entity: "Recipe", ID: recipeID}
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Recipe{}, recipeID).Error; err != nil {
			return err
		}

		return rs.Availability.RecalculateMenu(tx, recipe.MenuID)
	})
}

func validateIngredients(tx *gorm.DB, ingredients []IngredientInput) error {
	for _, ing := range ingredients {
		if ing.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		var count int64
		if err := tx.Model(&models.Stock{}).Where("id = ?", ing.StockID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Entity: "Stock", ID: ing.StockID}
		}
	}
	return nil
}
