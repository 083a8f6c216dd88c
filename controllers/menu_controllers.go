package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus
// Endpoint: GET /menus?category=<kategori>
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	query := mc.DB.Order("name asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var menus []models.Menu
	if err := query.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	menuID, err := parseIDParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, menuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// CreateMenu -> menu baru selalu mulai dengan is_available=false;
// flag baru terisi saat recipe pertama di-attach.
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Category    string  `json:"category" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		ImageUrl    string  `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageUrl:    req.ImageUrl,
		IsAvailable: false,
	}
	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// UpdateMenu -> partial edit katalog. IsAvailable sengaja tidak bisa
// di-set dari sini; nilainya milik availability recalculator.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	menuID, err := parseIDParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
		ImageUrl    *string  `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, menuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.Category != nil {
		menu.Category = *req.Category
	}
	if req.Price != nil {
		menu.Price = *req.Price
	}
	if req.ImageUrl != nil {
		menu.ImageUrl = *req.ImageUrl
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu -> recipe miliknya ikut terhapus
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	menuID, err := parseIDParam(c, "menu_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("menu_id = ?", menuID).First(&recipe).Error; err == nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Menu{}, menuID).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": menuID})
}
