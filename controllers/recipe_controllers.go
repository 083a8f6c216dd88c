package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/services"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

type RecipeController struct {
	DB      *gorm.DB
	Service *services.RecipeService
}

func NewRecipeController(db *gorm.DB) *RecipeController {
	return &RecipeController{
		DB:      db,
		Service: services.NewRecipeService(db),
	}
}

// GetAllRecipes -> list recipes beserta bahan
func (rc *RecipeController) GetAllRecipes(c *gin.Context) {
	var recipes []models.Recipe
	if err := rc.DB.Preload("Ingredients").Find(&recipes).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of recipes", recipes)
}

// CreateRecipe -> satu recipe per menu
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var req struct {
		MenuID      uint                       `json:"menu_id" binding:"required"`
		Ingredients []services.IngredientInput `json:"ingredients" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	recipe, err := rc.Service.CreateRecipe(req.MenuID, req.Ingredients)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Recipe created", recipe)
}

// UpdateRecipe -> ganti seluruh daftar bahan
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	recipeID, err := parseIDParam(c, "recipe_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Ingredients []services.IngredientInput `json:"ingredients" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	recipe, err := rc.Service.UpdateRecipe(recipeID, req.Ingredients)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipe updated", recipe)
}

// DeleteRecipe -> menu pemilik kembali available by default
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	recipeID, err := parseIDParam(c, "recipe_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := rc.Service.DeleteRecipe(recipeID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipe deleted", gin.H{"recipe_id": recipeID})
}
